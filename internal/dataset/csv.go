package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// CSVFile reads observations from a CSV file with a header row.
type CSVFile struct {
	Path   string
	Schema Schema
}

func (f CSVFile) Load(ctx context.Context) ([]Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatasetMissing, err)
	}
	defer file.Close()

	observations, err := Parse(file, f.Schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return observations, nil
}

// Parse reads CSV records from r. The first record must be the header.
func Parse(r io.Reader, schema Schema) ([]Observation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: no header row", ErrSchema)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		columns[strings.TrimSpace(name)] = i
	}

	var missing []string
	groupIdx, ok := columns[schema.GroupColumn]
	if !ok {
		missing = append(missing, schema.GroupColumn)
	}
	convertedIdx, ok := columns[schema.ConvertedColumn]
	if !ok {
		missing = append(missing, schema.ConvertedColumn)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required column(s) %s", ErrSchema, strings.Join(missing, ", "))
	}

	pageViewsIdx := optionalColumn(columns, schema.PageViewsColumn)
	sessionsIdx := optionalColumn(columns, schema.SessionsColumn)

	var observations []Observation
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSchema, err)
		}
		line, _ := reader.FieldPos(0)

		converted, err := ParseConverted(record[convertedIdx])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrSchema, line, err)
		}

		o := Observation{
			Group:     strings.TrimSpace(record[groupIdx]),
			Converted: converted,
		}
		if o.PageViews, o.HasPageViews, err = parseOptional(record, pageViewsIdx); err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: %w", ErrSchema, line, schema.PageViewsColumn, err)
		}
		if o.Sessions, o.HasSessions, err = parseOptional(record, sessionsIdx); err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: %w", ErrSchema, line, schema.SessionsColumn, err)
		}

		observations = append(observations, o)
	}

	return observations, nil
}

// ParseConverted accepts 0/1, true/false, yes/no and any finite number
// (positive means converted).
func ParseConverted(value string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "1", "true", "t", "yes", "y":
		return true, nil
	case "0", "false", "f", "no", "n":
		return false, nil
	}

	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return false, fmt.Errorf("invalid converted value %q", value)
	}
	return n > 0, nil
}

func optionalColumn(columns map[string]int, name string) int {
	if name == "" {
		return -1
	}
	if idx, ok := columns[name]; ok {
		return idx
	}
	return -1
}

func parseOptional(record []string, idx int) (float64, bool, error) {
	if idx < 0 {
		return 0, false, nil
	}
	v := strings.TrimSpace(record[idx])
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid number %q", v)
	}
	return n, true, nil
}
