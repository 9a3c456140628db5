package report

import (
	"bytes"
	"context"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sartorproj/paxcast/arima"
	"github.com/sartorproj/paxcast/diagnostics"
	"github.com/sartorproj/paxcast/evaluate"
	"github.com/sartorproj/paxcast/model"
	"github.com/sartorproj/paxcast/passenger"
	"github.com/sartorproj/paxcast/timeseries"
)

func passengers(n int) *timeseries.Series {
	rng := rand.New(rand.NewPCG(3, 17))
	values := make([]float64, n)
	for t := range values {
		cycle := 1 + 0.15*math.Sin(2*math.Pi*float64(t)/12)
		values[t] = (2_000_000+9_000*float64(t))*cycle + 15_000*rng.NormFloat64()
	}
	s := timeseries.NewMonthly(timeseries.NewMonth(2015, time.January), values)
	s.Name = "passengers"
	return s
}

// build runs a small catalog through the pipeline stages and assembles a
// report.
func build(t *testing.T) (*Report, *timeseries.Series) {
	t.Helper()

	series := passengers(96)
	train, test, err := timeseries.Split(series, 12)
	require.NoError(t, err)

	catalog, err := model.DefaultCatalog(12).Select("ets_aan", "arima_011_011")
	require.NoError(t, err)
	require.NoError(t, catalog.Add("broken", model.ARIMASpec{Order: arima.Order{P: -1, D: 1}}))

	levels := []float64{80, 95}
	results := model.FitAll(context.Background(), train, catalog, model.Options{Workers: 2, Timeout: time.Minute})

	in := Input{
		RunID: "run-1",
		Settings: Settings{
			Input:       "air_traffic.csv",
			Period:      12,
			Holdout:     12,
			Horizon:     24,
			Levels:      levels,
			LjungBoxLag: 24,
			Models:      catalog.Names(),
		},
		Records:          480,
		Series:           series,
		Train:            train,
		Test:             test,
		Stationarity:     AnalyzeStationarity(series, 12),
		TopAirlines:      []passenger.ShareRow{{Key: "United Airlines", Count: 600, Share: 0.6}, {Key: "Alaska Airlines", Count: 400, Share: 0.4}},
		Results:          results,
		Forecasts:        map[string]*model.Forecast{},
		TestAccuracy:     map[string]evaluate.Accuracy{},
		TrainingAccuracy: map[string]evaluate.Accuracy{},
		Diagnostics:      map[string]*diagnostics.Report{},
	}
	for _, f := range model.Successful(results) {
		fc, err := f.Forecast(24, levels)
		require.NoError(t, err)
		in.Forecasts[f.Name()] = fc

		acc, err := evaluate.Score(fc, test, train, 12)
		require.NoError(t, err)
		in.TestAccuracy[f.Name()] = acc

		acc, err = evaluate.TrainingAccuracy(f, train, 12)
		require.NoError(t, err)
		in.TrainingAccuracy[f.Name()] = acc

		d, err := diagnostics.Check(f, 24)
		require.NoError(t, err)
		in.Diagnostics[f.Name()] = d
	}
	in.Board, err = evaluate.Rank(results, in.TestAccuracy, nil)
	require.NoError(t, err)

	return Build(in), series
}

func TestBuild(t *testing.T) {
	r, series := build(t)

	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, 480, r.Series.Records)
	assert.Equal(t, 96, r.Series.Span.Len)
	assert.Equal(t, 84, r.Series.Train.Len)
	assert.Equal(t, 12, r.Series.Test.Len)
	require.Len(t, r.Series.Points, 96)
	assert.Equal(t, "train", r.Series.Points[83].Set)
	assert.Equal(t, "test", r.Series.Points[84].Set)
	assert.Equal(t, series.End(), r.Series.Span.End)

	require.Len(t, r.Models, 2)
	assert.Equal(t, "ets_aan", r.Models[0].Model)
	assert.Equal(t, model.FamilyETS, r.Models[0].Family)
	assert.Equal(t, "arima_011_011", r.Models[1].Model)
	assert.NotEmpty(t, r.Models[1].Coefficients)

	require.Len(t, r.Failures, 1)
	assert.Equal(t, "broken", r.Failures[0].Model)
	assert.NotEmpty(t, r.Failures[0].Error)

	require.Len(t, r.Forecasts, 2)
	for _, fc := range r.Forecasts {
		require.Len(t, fc.Points, 24)
		assert.Equal(t, r.Series.Test.Start, fc.Start)
		assert.Len(t, fc.Points[0].Intervals, 2)
	}

	assert.Len(t, r.Accuracy, 4)
	assert.Equal(t, "test", r.Accuracy[0].Window)
	assert.Equal(t, "training", r.Accuracy[1].Window)

	require.Len(t, r.Ranking.ByRMSE, 2)
	require.Len(t, r.Ranking.ByAICc, 2)
	assert.Equal(t, r.Ranking.ByRMSE[0].Model, r.Best)
	assert.Equal(t, 1, r.Ranking.ByRMSE[0].Rank)
	assert.LessOrEqual(t, float64(r.Ranking.ByRMSE[0].RMSE), float64(r.Ranking.ByRMSE[1].RMSE))

	require.Len(t, r.Diagnostics, 2)
	assert.Equal(t, 0, r.Diagnostics[0].FitDF)
	assert.Equal(t, 2, r.Diagnostics[1].FitDF)
	assert.NotNil(t, r.Diagnostics[1].LjungBox)
	assert.NotEmpty(t, r.Diagnostics[1].Residuals)
}

func TestBuildWithoutBoard(t *testing.T) {
	results := []model.Result{{Name: "broken", Err: assert.AnError}}
	r := Build(Input{Series: passengers(24), Results: results})

	assert.Empty(t, r.Models)
	require.Len(t, r.Failures, 1)
	assert.Equal(t, assert.AnError.Error(), r.Failures[0].Error)
	assert.Equal(t, "train", r.Series.Points[0].Set)
}

func TestFloatJSON(t *testing.T) {
	values := []Float{1.5, Float(math.NaN()), Float(math.Inf(1)), Float(math.Inf(-1)), 0}
	b, err := json.Marshal(values)
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null, null, null, 0]`, string(b))

	var back []Float
	require.NoError(t, json.Unmarshal(b, &back))
	require.Len(t, back, 5)
	assert.Equal(t, Float(1.5), back[0])
	assert.True(t, math.IsNaN(float64(back[1])))
	assert.False(t, back[1].Valid())
	assert.True(t, back[4].Valid())
}

func TestWriteJSON(t *testing.T) {
	r, _ := build(t)
	r.Accuracy[0].MASE = Float(math.NaN())

	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	accuracy := doc["accuracy"].([]any)
	assert.Nil(t, accuracy[0].(map[string]any)["mase"])
	assert.Equal(t, "2015-01", doc["series"].(map[string]any)["span"].(map[string]any)["start"])

	back, err := ReadJSON(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, r.RunID, back.RunID)
	assert.Equal(t, r.Best, back.Best)
	require.Len(t, back.Forecasts, 2)
	assert.Equal(t, r.Forecasts[1].Points[5].Period, back.Forecasts[1].Points[5].Period)
	assert.False(t, back.Accuracy[0].MASE.Valid())
}

func TestWorkbook(t *testing.T) {
	r, _ := build(t)

	f, err := r.Workbook()
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		SheetSummary, SheetSeries, SheetStationarity, SheetTopAirlines, SheetModels, SheetCoefficients,
		SheetAccuracy, SheetRanking, SheetForecasts, SheetDiagnostics, SheetFailures,
	}, f.GetSheetList())

	rows, err := f.GetRows(SheetSeries)
	require.NoError(t, err)
	require.Len(t, rows, 97)
	assert.Equal(t, []string{"Period", "Passengers", "Set", "Trend", "Seasonal", "Residual"}, rows[0])
	assert.Equal(t, "2015-01", rows[1][0])
	assert.Equal(t, "test", rows[96][2])

	rows, err = f.GetRows(SheetForecasts)
	require.NoError(t, err)
	require.Len(t, rows, 1+2*24)
	assert.Equal(t, []string{"Model", "Period", "Mean", "Lo 80", "Hi 80", "Lo 95", "Hi 95"}, rows[0])

	rows, err = f.GetRows(SheetRanking)
	require.NoError(t, err)
	require.Len(t, rows, 1+4)
	assert.Equal(t, "RMSE", rows[1][0])
	assert.Equal(t, r.Best, rows[1][2])

	rows, err = f.GetRows(SheetFailures)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "broken", rows[1][0])

	rows, err = f.GetRows(SheetTopAirlines)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "United Airlines", rows[1][1])
}

func TestWriteFiles(t *testing.T) {
	r, series := build(t)
	dir := filepath.Join(t.TempDir(), "out")

	written, err := r.WriteFiles(dir, Outputs{JSON: true, XLSX: true, CSV: true})
	require.NoError(t, err)

	want := []string{JSONFile, XLSXFile, SeriesFile, ForecastFile("ets_aan"), ForecastFile("arima_011_011")}
	require.Len(t, written, len(want))
	for i, name := range want {
		assert.Equal(t, filepath.Join(dir, name), written[i])
		_, err := os.Stat(written[i])
		assert.NoError(t, err, name)
	}

	back, err := timeseries.LoadCSV(filepath.Join(dir, SeriesFile), nil)
	require.NoError(t, err)
	assert.Equal(t, series.Start, back.Start)
	assert.InDeltaSlice(t, series.Values, back.Values, 1e-6)

	fc, err := timeseries.LoadCSV(filepath.Join(dir, ForecastFile("arima_011_011")), nil)
	require.NoError(t, err)
	assert.Equal(t, 24, fc.Len())
	assert.Equal(t, r.Series.Test.Start, fc.Start)

	f, err := excelize.OpenFile(filepath.Join(dir, XLSXFile))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), SheetDiagnostics)
}

func TestWriteFilesSelectsOutputs(t *testing.T) {
	r, _ := build(t)
	dir := t.TempDir()

	written, err := r.WriteFiles(dir, Outputs{JSON: true})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, JSONFile)}, written)

	_, err = os.Stat(filepath.Join(dir, XLSXFile))
	assert.True(t, os.IsNotExist(err))
}

func TestForecastFile(t *testing.T) {
	assert.Equal(t, "forecast_arima_011_011.csv", ForecastFile("arima_011_011"))
	assert.Equal(t, "forecast_arima_auto_.csv", ForecastFile("arima (auto)"))
	assert.Equal(t, "forecast_a_b.csv", ForecastFile("a/b"))
}

func TestAnalyzeStationarity(t *testing.T) {
	st := AnalyzeStationarity(passengers(120), 12)

	transforms := map[string]int{}
	for _, row := range st.Tests {
		transforms[row.Transform]++
		assert.GreaterOrEqual(t, float64(row.PValue), 0.0, row.Test)
		assert.LessOrEqual(t, float64(row.PValue), 1.0, row.Test)
		if row.Test == "kpss" {
			assert.Contains(t, []string{"c", "ct"}, row.Regression)
		} else {
			assert.Empty(t, row.Regression)
		}
	}
	assert.Equal(t, map[string]int{"level": 4, "diff": 4, "seasonal diff": 4}, transforms)

	require.NotNil(t, st.Lambda)
	assert.Empty(t, st.LambdaError)
	assert.GreaterOrEqual(t, float64(*st.Lambda), LambdaLower)
	assert.LessOrEqual(t, float64(*st.Lambda), LambdaUpper)

	assert.GreaterOrEqual(t, st.NDiffs, 1)
	assert.Greater(t, float64(st.SeasonalStrength), 0.5)

	require.NotNil(t, st.ACF)
	assert.Len(t, st.ACF.Values, 25)
	require.NotNil(t, st.Decomposition)
	assert.Equal(t, "multiplicative", st.Decomposition.Type)
	assert.Len(t, st.Decomposition.Trend, 120)
}

func TestAnalyzeStationarityNonPositive(t *testing.T) {
	s := passengers(60)
	s.Values[10] = -1

	st := AnalyzeStationarity(s, 12)
	assert.Nil(t, st.Lambda)
	assert.NotEmpty(t, st.LambdaError)
	require.NotNil(t, st.Decomposition)
	assert.Equal(t, "additive", st.Decomposition.Type)
}

func TestAnalyzeStationarityShortSeries(t *testing.T) {
	s := timeseries.NewMonthly(timeseries.NewMonth(2020, time.January), []float64{5, 6, 7, 8, 9})

	st := AnalyzeStationarity(s, 12)
	assert.Empty(t, st.Tests)
	assert.Nil(t, st.Decomposition)
	assert.NotEmpty(t, st.LambdaError)
	require.NotNil(t, st.ACF)
	assert.Len(t, st.ACF.Values, 5)
}
