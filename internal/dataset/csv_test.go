package dataset_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/liftreport/liftreport/internal/dataset"
	"github.com/liftreport/liftreport/internal/testutil"
)

func TestParse(t *testing.T) {
	input := "device,converted,page_views,num_sessions\n" +
		"desktop,1,12,3\n" +
		"mobile,0,4,\n" +
		"tablet,true,,1\n"

	observations, err := dataset.Parse(strings.NewReader(input), dataset.DefaultSchema())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(observations) != 3 {
		t.Fatalf("got %d observations, want 3", len(observations))
	}

	first := observations[0]
	if first.Group != "desktop" || !first.Converted || first.PageViews != 12 || first.Sessions != 3 {
		t.Errorf("unexpected first observation: %+v", first)
	}
	if !first.HasPageViews || !first.HasSessions {
		t.Errorf("expected auxiliary columns to be present: %+v", first)
	}

	if observations[1].Converted {
		t.Error("expected second observation not converted")
	}
	if observations[1].HasSessions {
		t.Error("expected empty sessions value to be absent")
	}
	if observations[2].HasPageViews {
		t.Error("expected empty page views value to be absent")
	}
}

func TestParse_CustomSchemaAndOrder(t *testing.T) {
	input := "\ufeffpurchased, platform\n0, ios\n1, android\n"
	schema := dataset.Schema{GroupColumn: "platform", ConvertedColumn: "purchased"}

	observations, err := dataset.Parse(strings.NewReader(input), schema)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(observations) != 2 {
		t.Fatalf("got %d observations, want 2", len(observations))
	}
	if observations[1].Group != "android" || !observations[1].Converted {
		t.Errorf("unexpected observation: %+v", observations[1])
	}
	if observations[0].HasPageViews || observations[0].HasSessions {
		t.Error("expected no auxiliary columns")
	}
}

func TestParse_SchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing converted column", "device,page_views\ndesktop,3\n"},
		{"missing group column", "converted\n1\n"},
		{"bad converted value", "device,converted\ndesktop,maybe\n"},
		{"bad page views", "device,converted,page_views\ndesktop,1,lots\n"},
		{"ragged row", "device,converted\ndesktop,1,extra\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dataset.Parse(strings.NewReader(tt.input), dataset.DefaultSchema())
			if !errors.Is(err, dataset.ErrSchema) {
				t.Errorf("expected ErrSchema, got %v", err)
			}
		})
	}
}

func TestParse_ErrorNamesLine(t *testing.T) {
	input := "device,converted\ndesktop,1\nmobile,nope\n"

	_, err := dataset.Parse(strings.NewReader(input), dataset.DefaultSchema())
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("expected error naming line 3, got %v", err)
	}
}

func TestParse_NonFiniteConverted(t *testing.T) {
	for _, value := range []string{"NaN", "Inf", "-inf", "+Infinity"} {
		input := "device,converted\ndesktop," + value + "\n"
		_, err := dataset.Parse(strings.NewReader(input), dataset.DefaultSchema())
		if !errors.Is(err, dataset.ErrSchema) {
			t.Errorf("converted=%q: expected ErrSchema, got %v", value, err)
		}
		if _, err := dataset.ParseConverted(value); err == nil {
			t.Errorf("ParseConverted(%q) accepted a non-finite value", value)
		}
	}
}

func TestParseConverted(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"0", false},
		{"TRUE", true},
		{"false", false},
		{" yes ", true},
		{"n", false},
		{"1.0", true},
		{"0.0", false},
		{"3", true},
	}

	for _, tt := range tests {
		got, err := dataset.ParseConverted(tt.input)
		if err != nil {
			t.Errorf("ParseConverted(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseConverted(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	if _, err := dataset.ParseConverted(""); err == nil {
		t.Error("expected error for empty value")
	}
}

func TestCSVFile_Load(t *testing.T) {
	path := testutil.WriteCSV(t, testutil.Groups("desktop", 20, 4, "mobile", 30, 3))

	observations, err := dataset.CSVFile{Path: path, Schema: dataset.DefaultSchema()}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(observations) != 50 {
		t.Errorf("got %d observations, want 50", len(observations))
	}
}

func TestCSVFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")

	_, err := dataset.CSVFile{Path: path, Schema: dataset.DefaultSchema()}.Load(context.Background())
	if !errors.Is(err, dataset.ErrDatasetMissing) {
		t.Errorf("expected ErrDatasetMissing, got %v", err)
	}
}

func TestCSVFile_CancelledContext(t *testing.T) {
	path := testutil.WriteCSV(t, testutil.Observations("desktop", 3, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dataset.CSVFile{Path: path, Schema: dataset.DefaultSchema()}.Load(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
