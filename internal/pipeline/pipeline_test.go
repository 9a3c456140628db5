package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/paxcast/internal/config"
	"github.com/sartorproj/paxcast/model"
	"github.com/sartorproj/paxcast/passenger"
	"github.com/sartorproj/paxcast/timeseries"
)

const header = "Activity Period,Operating Airline,Operating Airline IATA Code,Published Airline," +
	"Published Airline IATA Code,GEO Summary,GEO Region,Activity Type Code,Price Category Code," +
	"Terminal,Boarding Area,Passenger Count"

// writeTraffic writes months of synthetic airport traffic starting January
// 2010, four rows per month, skipping the month at index skip when skip >= 0.
func writeTraffic(t *testing.T, months, skip int) string {
	t.Helper()
	rng := rand.New(rand.NewPCG(8, 21))

	var b strings.Builder
	b.WriteString(header + "\n")
	start := timeseries.NewMonth(2010, time.January)
	for i := 0; i < months; i++ {
		if i == skip {
			continue
		}
		code := start.Add(i).Code()
		base := (60_000 + 400*float64(i)) * (1 + 0.2*math.Sin(2*math.Pi*float64(i)/12))
		rows := []struct {
			airline, iata, geo, region, activity string
			share                                float64
		}{
			{"United Airlines", "UA", "Domestic", "US", "Deplaned", 0.35},
			{"United Airlines", "UA", "Domestic", "US", "Enplaned", 0.35},
			{"Alaska Airlines", "AS", "International", "Canada", "Deplaned", 0.15},
			{"Alaska Airlines", "AS", "International", "Canada", "Enplaned", 0.15},
		}
		for _, r := range rows {
			count := int64(base*r.share + 800*rng.NormFloat64())
			fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%s,%s,%s,Other,Terminal 3,F,%d\n",
				code, r.airline, r.iata, r.airline, r.iata, r.geo, r.region, r.activity, count)
		}
	}

	path := filepath.Join(t.TempDir(), "air_traffic.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func testConfig(path string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Input.Path = path
	cfg.Forecast.Horizon = 24
	cfg.Fit.Workers = 2
	cfg.Fit.Timeout = time.Minute
	cfg.Fit.Models = []string{"ets_aan", "arima_011_011"}
	return cfg
}

func TestRun(t *testing.T) {
	cfg := testConfig(writeTraffic(t, 96, -1))

	r, err := Run(context.Background(), cfg, "run-42")
	require.NoError(t, err)

	assert.Equal(t, "run-42", r.RunID)
	assert.Equal(t, 96*4, r.Series.Records)
	assert.Equal(t, 96, r.Series.Span.Len)
	assert.Equal(t, timeseries.NewMonth(2010, time.January), r.Series.Span.Start)
	assert.Equal(t, 84, r.Series.Train.Len)
	assert.Equal(t, 12, r.Series.Test.Len)

	require.Len(t, r.TopAirlines, 2)
	assert.Equal(t, "United Airlines", r.TopAirlines[0].Key)
	assert.InDelta(t, 0.7, r.TopAirlines[0].Share, 0.02)

	require.NotNil(t, r.Stationarity)
	assert.NotEmpty(t, r.Stationarity.Tests)

	require.Len(t, r.Models, 2)
	assert.Empty(t, r.Failures)
	require.Len(t, r.Forecasts, 2)
	assert.Len(t, r.Forecasts[0].Points, 24)
	assert.Len(t, r.Ranking.ByRMSE, 2)
	assert.NotEmpty(t, r.Best)
	assert.Len(t, r.Diagnostics, 2)
	assert.Equal(t, []string{"ets_aan", "arima_011_011"}, r.Settings.Models)
}

func TestRunFiltersAndRange(t *testing.T) {
	cfg := testConfig(writeTraffic(t, 96, -1))
	cfg.Input.ActivityTypes = []string{"deplaned"}
	cfg.Input.From = "201101"
	cfg.Fit.Models = []string{"ets_aan"}

	r, err := Run(context.Background(), cfg, "run")
	require.NoError(t, err)

	assert.Equal(t, 96*2, r.Series.Records)
	assert.Equal(t, 84, r.Series.Span.Len)
	assert.Equal(t, timeseries.NewMonth(2011, time.January), r.Series.Span.Start)
	assert.Equal(t, 72, r.Series.Train.Len)
}

func TestRunGapAborts(t *testing.T) {
	cfg := testConfig(writeTraffic(t, 96, 40))

	_, err := Run(context.Background(), cfg, "run")
	require.Error(t, err)
	assert.ErrorIs(t, err, passenger.ErrDataIntegrity)
	assert.ErrorIs(t, err, timeseries.ErrGap)
}

func TestRunErrors(t *testing.T) {
	path := writeTraffic(t, 48, -1)

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"unknown model", func(c *config.Config) { c.Fit.Models = []string{"prophet"} }, model.ErrUnknownSpec},
		{"holdout too large", func(c *config.Config) { c.Forecast.Holdout, c.Forecast.Horizon = 48, 48 }, timeseries.ErrHoldoutTooLarge},
		{"malformed range", func(c *config.Config) { c.Input.To = "201313" }, timeseries.ErrMalformedPeriod},
		{"signed range", func(c *config.Config) { c.Input.From = "+01507" }, timeseries.ErrMalformedPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(path)
			tt.mutate(cfg)
			_, err := Run(context.Background(), cfg, "run")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("missing input", func(t *testing.T) {
		cfg := testConfig(filepath.Join(t.TempDir(), "missing.csv"))
		_, err := Run(context.Background(), cfg, "run")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestRunCancelled(t *testing.T) {
	cfg := testConfig(writeTraffic(t, 60, -1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg, "run")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunLogsStages(t *testing.T) {
	cfg := testConfig(writeTraffic(t, 60, -1))
	cfg.Fit.Models = []string{"arima_011_011"}

	var buf bytes.Buffer
	ctx := zerolog.New(&buf).With().Str("run_id", "abc").Logger().WithContext(context.Background())

	_, err := Run(ctx, cfg, "abc")
	require.NoError(t, err)

	out := buf.String()
	for _, stage := range []string{"load", "aggregate", "stationarity", "fit", "evaluate"} {
		assert.Contains(t, out, `"stage":"`+stage+`"`)
	}
	assert.Contains(t, out, "model scored")
	assert.Contains(t, out, `"run_id":"abc"`)
}
