package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CSVOptions holds options for loading a pre-aggregated monthly series.
type CSVOptions struct {
	DateColumn  string // Column name for months (default: "ds")
	ValueColumn string // Column name for values (default: "y")
	IDColumn    string // Column name for series ID (optional, for filtering)
	IDFilter    string // Value to filter by ID column
	Delimiter   rune   // Field delimiter (default: ',')
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateColumn:  "ds",
		ValueColumn: "y",
		Delimiter:   ',',
	}
}

// LoadCSV loads a monthly series from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads a monthly series from r. Rows whose value is empty
// or NA are skipped, which surfaces as a gap error unless the month is also
// absent from the rest of the file.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	dateIdx, valueIdx, idIdx := -1, -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.Trim(h, "\""))
		switch {
		case strings.EqualFold(h, opts.DateColumn):
			dateIdx = i
		case strings.EqualFold(h, opts.ValueColumn):
			valueIdx = i
		case opts.IDColumn != "" && strings.EqualFold(h, opts.IDColumn):
			idIdx = i
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("date column %q not found", opts.DateColumn)
	}
	if valueIdx < 0 {
		return nil, fmt.Errorf("value column %q not found", opts.ValueColumn)
	}

	var points []MonthlyPoint
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if opts.IDFilter != "" && idIdx >= 0 && idIdx < len(record) {
			if strings.TrimSpace(record[idIdx]) != opts.IDFilter {
				continue
			}
		}
		if valueIdx >= len(record) || dateIdx >= len(record) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, len(header), len(record))
		}

		valStr := strings.TrimSpace(record[valueIdx])
		if valStr == "" || valStr == "NA" || valStr == "NaN" || valStr == "null" {
			continue
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid value %q: %w", line, valStr, err)
		}

		period, err := ParseMonthLayout(record[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		points = append(points, MonthlyPoint{Period: period, Value: val})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("no valid data found in CSV: %w", ErrEmpty)
	}
	return FromMonthly(points)
}

// WriteCSV writes s as ds,y rows with ds formatted as YYYY-MM.
func WriteCSV(w io.Writer, s *Series) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"ds", "y"}); err != nil {
		return err
	}
	for i, v := range s.Values {
		row := []string{s.PeriodAt(i).String(), strconv.FormatFloat(v, 'f', -1, 64)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveCSV writes s to filename.
func SaveCSV(s *Series, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := WriteCSV(file, s); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
