package passenger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/paxcast/timeseries"
)

const sample = ` activity period ,Operating Airline,Operating Airline IATA Code,Published Airline,Published Airline IATA Code,GEO Summary,GEO Region,Activity Type Code,Price Category Code,Terminal,Boarding Area,Passenger Count,data_as_of
201507,ATA Airlines,TZ,ATA Airlines,TZ,Domestic,US,Deplaned,Low Fare,Terminal 1,B,27271,2023/01/01
201507,ATA Airlines,TZ,ATA Airlines,TZ,Domestic,US,Enplaned,Low Fare,Terminal 1,B,29131,2023/01/01
201507,Air Canada,AC,Air Canada,AC,International,Canada,Deplaned,Other,Terminal 1,B,35156,2023/01/01
201508,ATA Airlines,TZ,ATA Airlines,TZ,Domestic,US,Deplaned,Low Fare,Terminal 1,B,26000,2023/01/01
201508,Air Canada,AC,Air Canada,AC,International,Canada,Deplaned,Other,Terminal 1,B,34000,2023/01/01
201509,Air Canada,AC,Air Canada,AC,International,Canada,Enplaned,Other,Terminal 1,B,30000,2023/01/01
`

var jul2015 = timeseries.NewMonth(2015, time.July)

func loadSample(t *testing.T, opts *LoadOptions) []Record {
	t.Helper()
	records, err := Load(strings.NewReader(sample), opts)
	require.NoError(t, err)
	return records
}

func TestLoad(t *testing.T) {
	records := loadSample(t, nil)
	require.Len(t, records, 6)

	r := records[2]
	assert.Equal(t, jul2015, r.Period)
	assert.Equal(t, "Air Canada", r.OperatingAirline)
	assert.Equal(t, "AC", r.OperatingAirlineCode)
	assert.Equal(t, "International", r.GeoSummary)
	assert.Equal(t, "Canada", r.GeoRegion)
	assert.Equal(t, "Deplaned", r.ActivityType)
	assert.Equal(t, "Other", r.PriceCategory)
	assert.Equal(t, "Terminal 1", r.Terminal)
	assert.Equal(t, "B", r.BoardingArea)
	assert.Equal(t, int64(35156), r.PassengerCount)

	again := loadSample(t, nil)
	assert.Equal(t, records, again)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traffic.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	records, err := LoadFile(path, nil)
	require.NoError(t, err)
	assert.Len(t, records, 6)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"), nil)
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	header := "Activity Period,Operating Airline IATA Code,Passenger Count\n"

	tests := []struct {
		name    string
		input   string
		wantErr error
		line    string
	}{
		{"empty input", "", ErrMissingColumn, ""},
		{"missing count column", "Activity Period,Terminal\n201507,T1\n", ErrMissingColumn, ""},
		{"missing period column", "Passenger Count\n10\n", ErrMissingColumn, ""},
		{"malformed period", header + "201507,TZ,10\n2015-7,TZ,10\n", ErrMalformedPeriod, "line 3"},
		{"month out of range", header + "201513,TZ,10\n", ErrMalformedPeriod, "line 2"},
		{"negative count", header + "201507,TZ,-5\n", ErrInvalidCount, "line 2"},
		{"fractional count", header + "201507,TZ,12.5\n", ErrInvalidCount, "line 2"},
		{"empty count", header + "201507,TZ,\n", ErrInvalidCount, "line 2"},
		{"bad airline code", header + "201507,TZ-1,10\n", ErrInvalidRecord, "line 2"},
		{"year out of range", header + "180001,TZ,10\n", ErrInvalidRecord, "line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrDataIntegrity)
			if tt.line != "" {
				assert.Contains(t, err.Error(), tt.line)
			}
		})
	}
}

func TestLoadMalformedPeriodWrapsParseError(t *testing.T) {
	_, err := Load(strings.NewReader("Activity Period,Passenger Count\n20157,1\n"), nil)
	assert.True(t, errors.Is(err, timeseries.ErrMalformedPeriod))
}

func TestLoadFilter(t *testing.T) {
	records := loadSample(t, &LoadOptions{Filter: Filter{ActivityType: {"deplaned"}}})
	require.Len(t, records, 4)
	for _, r := range records {
		assert.Equal(t, "Deplaned", r.ActivityType)
	}

	records = loadSample(t, &LoadOptions{Filter: Filter{
		ActivityType: {"Deplaned"},
		GeoSummary:   {"International"},
	}})
	assert.Len(t, records, 2)
}

func TestLoadSemicolonDelimiter(t *testing.T) {
	input := "Activity Period;Passenger Count\n201507;10\n201508;20\n"
	records, err := Load(strings.NewReader(input), &LoadOptions{Delimiter: ';'})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestParseDimension(t *testing.T) {
	d, err := ParseDimension(" Airline ")
	require.NoError(t, err)
	assert.Equal(t, Airline, d)

	d, err = ParseDimension("none")
	require.NoError(t, err)
	assert.Equal(t, None, d)

	_, err = ParseDimension("runway")
	assert.Error(t, err)
}

func TestAggregate(t *testing.T) {
	records := loadSample(t, nil)

	total := Aggregate(records, None, Range{})
	assert.Equal(t, []Group{
		{Period: jul2015, Count: 27271 + 29131 + 35156},
		{Period: jul2015.Add(1), Count: 26000 + 34000},
		{Period: jul2015.Add(2), Count: 30000},
	}, total)

	byAirline := Aggregate(records, Airline, Range{})
	require.Len(t, byAirline, 5)
	assert.Equal(t, Group{Period: jul2015, Key: "ATA Airlines", Count: 27271 + 29131}, byAirline[0])
	assert.Equal(t, Group{Period: jul2015, Key: "Air Canada", Count: 35156}, byAirline[1])
	assert.Equal(t, jul2015.Add(2), byAirline[4].Period)

	ranged := Aggregate(records, None, Range{From: jul2015.Add(1), To: jul2015.Add(1)})
	require.Len(t, ranged, 1)
	assert.Equal(t, int64(60000), ranged[0].Count)

	assert.Empty(t, Aggregate(records, None, Range{From: jul2015.Add(12)}))
}

func TestShare(t *testing.T) {
	groups := []Group{
		{Period: jul2015, Key: "b", Count: 30},
		{Period: jul2015, Key: "a", Count: 30},
		{Period: jul2015, Key: "c", Count: 20},
		{Period: jul2015.Add(1), Key: "c", Count: 20},
	}

	rows := Share(groups, 2)
	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0].Key)
	assert.Equal(t, int64(40), rows[0].Count)
	assert.InDelta(t, 0.4, rows[0].Share, 1e-12)
	assert.Equal(t, "a", rows[1].Key)

	assert.Len(t, Share(groups, 0), 3)
	assert.Empty(t, Share(nil, 10))
}

func TestTotalSeries(t *testing.T) {
	s, err := TotalSeries(loadSample(t, nil), Range{})
	require.NoError(t, err)

	assert.Equal(t, jul2015, s.Start)
	assert.Equal(t, []float64{91558, 60000, 30000}, s.Values)
	assert.Equal(t, "passengers", s.Name)

	// Dropping August leaves a gap.
	var gapped []Record
	for _, r := range loadSample(t, nil) {
		if r.Period != jul2015.Add(1) {
			gapped = append(gapped, r)
		}
	}
	_, err = TotalSeries(gapped, Range{})
	assert.ErrorIs(t, err, ErrDataIntegrity)
	assert.ErrorIs(t, err, timeseries.ErrGap)

	_, err = TotalSeries(nil, Range{})
	assert.ErrorIs(t, err, timeseries.ErrEmpty)
}
