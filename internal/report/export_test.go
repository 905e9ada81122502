package report_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/liftreport/liftreport/internal/report"
	"github.com/liftreport/liftreport/internal/stats"
)

func TestWriteExport_CreatesAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "test_results.json")

	first := stats.ExportRecord{GroupAN: 1, GroupBN: 2, LiftPct: 10}
	if err := report.WriteExport(path, first); err != nil {
		t.Fatalf("first WriteExport failed: %v", err)
	}

	second := stats.ExportRecord{GroupAN: 1000, GroupBN: 2000, PValue: 0.03, AnnualOpportunity: 6000}
	if err := report.WriteExport(path, second); err != nil {
		t.Fatalf("second WriteExport failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}

	var got stats.ExportRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if got != second {
		t.Errorf("got %+v, want %+v", got, second)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the export file, found %d entries", len(entries))
	}
}

func TestEncodeExport_Indented(t *testing.T) {
	var buf bytes.Buffer
	if err := report.EncodeExport(&buf, stats.ExportRecord{GroupAN: 5}); err != nil {
		t.Fatalf("EncodeExport failed: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n  \"groupA_n\": 5")) {
		t.Errorf("expected indented output, got %s", buf.String())
	}
}
