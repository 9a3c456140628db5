package passenger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sartorproj/paxcast/timeseries"
)

// Canonical column names.
const (
	ColActivityPeriod       = "Activity Period"
	ColOperatingAirline     = "Operating Airline"
	ColOperatingAirlineCode = "Operating Airline IATA Code"
	ColPublishedAirline     = "Published Airline"
	ColPublishedAirlineCode = "Published Airline IATA Code"
	ColGeoSummary           = "GEO Summary"
	ColGeoRegion            = "GEO Region"
	ColActivityType         = "Activity Type Code"
	ColPriceCategory        = "Price Category Code"
	ColTerminal             = "Terminal"
	ColBoardingArea         = "Boarding Area"
	ColPassengerCount       = "Passenger Count"
)

var columns = []string{
	ColActivityPeriod,
	ColOperatingAirline,
	ColOperatingAirlineCode,
	ColPublishedAirline,
	ColPublishedAirlineCode,
	ColGeoSummary,
	ColGeoRegion,
	ColActivityType,
	ColPriceCategory,
	ColTerminal,
	ColBoardingArea,
	ColPassengerCount,
}

// LoadOptions holds options for reading passenger records.
type LoadOptions struct {
	Delimiter rune   // Field delimiter (default: ',')
	Filter    Filter // Records not matching are dropped after normalisation
}

// LoadFile loads passenger records from a delimited text file.
func LoadFile(path string, opts *LoadOptions) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Load(file, opts)
}

// Load reads passenger records from r. The first row is the header.
func Load(r io.Reader, opts *LoadOptions) ([]Record, error) {
	if opts == nil {
		opts = &LoadOptions{}
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColActivityPeriod)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := columnIndex(header)
	for _, required := range []string{ColActivityPeriod, ColPassengerCount} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var records []Record
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrDataIntegrity, line, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}

		rec, err := parseRecord(row, idx, line)
		if err != nil {
			return nil, err
		}
		if opts.Filter.Match(rec) {
			records = append(records, rec)
		}
	}
	return records, nil
}

// columnIndex maps canonical column names to positions in header.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(columns))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		for _, c := range columns {
			if strings.EqualFold(h, c) {
				if _, dup := idx[c]; !dup {
					idx[c] = i
				}
			}
		}
	}
	return idx
}

func parseRecord(row []string, idx map[string]int, line int) (Record, error) {
	field := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	period, err := timeseries.ParseMonth(field(ColActivityPeriod))
	if err != nil {
		return Record{}, fmt.Errorf("%w: line %d: %w", ErrMalformedPeriod, line, err)
	}

	raw := field(ColPassengerCount)
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || count < 0 {
		return Record{}, fmt.Errorf("%w: line %d: %q", ErrInvalidCount, line, raw)
	}

	rec := Record{
		Period:               period,
		OperatingAirline:     field(ColOperatingAirline),
		OperatingAirlineCode: field(ColOperatingAirlineCode),
		PublishedAirline:     field(ColPublishedAirline),
		PublishedAirlineCode: field(ColPublishedAirlineCode),
		GeoSummary:           field(ColGeoSummary),
		GeoRegion:            field(ColGeoRegion),
		ActivityType:         field(ColActivityType),
		PriceCategory:        field(ColPriceCategory),
		Terminal:             field(ColTerminal),
		BoardingArea:         field(ColBoardingArea),
		PassengerCount:       count,
	}
	if err := rec.Validate(); err != nil {
		return Record{}, fmt.Errorf("line %d: %w", line, err)
	}
	return rec, nil
}
