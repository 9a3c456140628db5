package report

import (
	"time"

	"github.com/sartorproj/paxcast/diagnostics"
	"github.com/sartorproj/paxcast/evaluate"
	"github.com/sartorproj/paxcast/model"
	"github.com/sartorproj/paxcast/passenger"
	"github.com/sartorproj/paxcast/timeseries"
)

// Settings echoes the configuration the run used.
type Settings struct {
	Input       string    `json:"input"`
	From        string    `json:"from,omitempty"`
	To          string    `json:"to,omitempty"`
	Period      int       `json:"period"`
	Holdout     int       `json:"holdout"`
	Horizon     int       `json:"horizon"`
	Levels      []float64 `json:"levels"`
	LjungBoxLag int       `json:"ljung_box_lag"`
	Models      []string  `json:"models"`
}

// Window is a contiguous span of months.
type Window struct {
	Start timeseries.Month `json:"start"`
	End   timeseries.Month `json:"end"`
	Len   int              `json:"len"`
}

func window(s *timeseries.Series) Window {
	return Window{Start: s.Start, End: s.End(), Len: s.Len()}
}

// SeriesPoint is one observation of the passenger series.
type SeriesPoint struct {
	Period timeseries.Month `json:"period"`
	Value  Float            `json:"value"`
	// Set is "train" or "test".
	Set string `json:"set"`
}

// SeriesSection describes the modelled series and its split.
type SeriesSection struct {
	Name    string        `json:"name"`
	Records int           `json:"records"`
	Span    Window        `json:"span"`
	Train   Window        `json:"train"`
	Test    Window        `json:"test"`
	Mean    Float         `json:"mean"`
	StdDev  Float         `json:"std_dev"`
	Min     Float         `json:"min"`
	Max     Float         `json:"max"`
	Points  []SeriesPoint `json:"points"`
}

// AccuracyRow holds one model's error metrics on one window.
type AccuracyRow struct {
	Model string `json:"model"`
	// Window is "test" or "training".
	Window string `json:"window"`
	ME     Float  `json:"me"`
	RMSE   Float  `json:"rmse"`
	MAE    Float  `json:"mae"`
	MPE    Float  `json:"mpe"`
	MAPE   Float  `json:"mape"`
	MASE   Float  `json:"mase"`
	ACF1   Float  `json:"acf1"`
	N      int    `json:"n"`
}

func accuracyRow(name, win string, a evaluate.Accuracy) AccuracyRow {
	return AccuracyRow{
		Model:  name,
		Window: win,
		ME:     Float(a.ME),
		RMSE:   Float(a.RMSE),
		MAE:    Float(a.MAE),
		MPE:    Float(a.MPE),
		MAPE:   Float(a.MAPE),
		MASE:   Float(a.MASE),
		ACF1:   Float(a.ACF1),
		N:      a.N,
	}
}

// ModelRow describes one successfully fitted model.
type ModelRow struct {
	Model     string       `json:"model"`
	Describe  string       `json:"describe"`
	Family    model.Family `json:"family"`
	Spec      string       `json:"spec"`
	Duration  Float        `json:"duration_ms"`
	LogLik    Float        `json:"log_lik"`
	AIC       Float        `json:"aic"`
	AICc      Float        `json:"aicc"`
	BIC       Float        `json:"bic"`
	NumParams int          `json:"num_params"`
	NObs      int          `json:"n_obs"`

	Coefficients []CoefficientRow `json:"coefficients"`
}

// CoefficientRow is one estimated parameter.
type CoefficientRow struct {
	Model string `json:"model"`
	Name  string `json:"name"`
	Value Float  `json:"value"`
}

// RankRow is one position on a leaderboard.
type RankRow struct {
	Rank     int    `json:"rank"`
	Model    string `json:"model"`
	Describe string `json:"describe"`
	RMSE     Float  `json:"rmse"`
	MAE      Float  `json:"mae"`
	MAPE     Float  `json:"mape"`
	AICc     Float  `json:"aicc"`
}

// Ranking holds both orderings of the scored models.
type Ranking struct {
	ByRMSE []RankRow `json:"by_rmse"`
	ByAICc []RankRow `json:"by_aicc"`
}

func rankRows(entries []evaluate.Entry) []RankRow {
	rows := make([]RankRow, len(entries))
	for i, e := range entries {
		rows[i] = RankRow{
			Rank:     i + 1,
			Model:    e.Model,
			Describe: e.Describe,
			RMSE:     Float(e.Test.RMSE),
			MAE:      Float(e.Test.MAE),
			MAPE:     Float(e.Test.MAPE),
			AICc:     Float(e.Criteria.AICc),
		}
	}
	return rows
}

// IntervalValue is a prediction interval at Level percent.
type IntervalValue struct {
	Level Float `json:"level"`
	Lower Float `json:"lower"`
	Upper Float `json:"upper"`
}

// ForecastPoint is one forecast month.
type ForecastPoint struct {
	Period    timeseries.Month `json:"period"`
	Mean      Float            `json:"mean"`
	Intervals []IntervalValue  `json:"intervals,omitempty"`
}

// ForecastSection is one model's forecast over the full horizon.
type ForecastSection struct {
	Model    string           `json:"model"`
	Describe string           `json:"describe"`
	Start    timeseries.Month `json:"start"`
	Points   []ForecastPoint  `json:"points"`
}

// DiagnosticSection summarises one model's residuals.
type DiagnosticSection struct {
	Model           string        `json:"model"`
	Describe        string        `json:"describe"`
	Lag             int           `json:"lag"`
	FitDF           int           `json:"fitdf"`
	Mean            Float         `json:"mean"`
	StdDev          Float         `json:"std_dev"`
	LjungBox        *TestValue    `json:"ljung_box,omitempty"`
	BoxPierce       *TestValue    `json:"box_pierce,omitempty"`
	DurbinWatson    *Float        `json:"durbin_watson,omitempty"`
	JarqueBera      *TestValue    `json:"jarque_bera,omitempty"`
	Skewness        *Float        `json:"skewness,omitempty"`
	ExKurtosis      *Float        `json:"excess_kurtosis,omitempty"`
	White           bool          `json:"white"`
	ACF             *Correlogram  `json:"acf,omitempty"`
	SignificantLags []int         `json:"significant_lags"`
	HistogramEdges  []Float       `json:"histogram_edges"`
	HistogramCounts []Float       `json:"histogram_counts"`
	Residuals       []SeriesPoint `json:"residuals"`
}

// TestValue is a test statistic with its p-value.
type TestValue struct {
	Statistic Float `json:"statistic"`
	PValue    Float `json:"p_value"`
	DOF       int   `json:"dof,omitempty"`
}

// Report is the complete output of one run.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Settings    Settings  `json:"settings"`

	Series       SeriesSection        `json:"series"`
	Stationarity *Stationarity        `json:"stationarity,omitempty"`
	TopAirlines  []passenger.ShareRow `json:"top_airlines"`

	Models      []ModelRow          `json:"models"`
	Accuracy    []AccuracyRow       `json:"accuracy"`
	Ranking     Ranking             `json:"ranking"`
	Best        string              `json:"best,omitempty"`
	Forecasts   []ForecastSection   `json:"forecasts"`
	Diagnostics []DiagnosticSection `json:"diagnostics"`
	Failures    []evaluate.Failure  `json:"failures"`

	series    *timeseries.Series
	forecasts []*model.Forecast
}

// Input is everything a run produced. Maps are keyed by catalog name.
type Input struct {
	RunID    string
	Settings Settings
	Records  int

	Series      *timeseries.Series
	Train, Test *timeseries.Series

	Stationarity *Stationarity
	TopAirlines  []passenger.ShareRow

	Results          []model.Result
	Forecasts        map[string]*model.Forecast
	TestAccuracy     map[string]evaluate.Accuracy
	TrainingAccuracy map[string]evaluate.Accuracy
	Board            *evaluate.Board
	Diagnostics      map[string]*diagnostics.Report
}

// Build assembles the report. Models appear in catalog order.
func Build(in Input) *Report {
	r := &Report{
		RunID:        in.RunID,
		GeneratedAt:  time.Now().UTC(),
		Settings:     in.Settings,
		Stationarity: in.Stationarity,
		TopAirlines:  in.TopAirlines,
		series:       in.Series,
	}
	if r.TopAirlines == nil {
		r.TopAirlines = []passenger.ShareRow{}
	}

	r.Series = seriesSection(in)

	for _, res := range in.Results {
		if !res.OK() {
			continue
		}
		f := res.Fitted
		r.Models = append(r.Models, modelRow(res))

		if a, ok := in.TestAccuracy[res.Name]; ok {
			r.Accuracy = append(r.Accuracy, accuracyRow(res.Name, "test", a))
		}
		if a, ok := in.TrainingAccuracy[res.Name]; ok {
			r.Accuracy = append(r.Accuracy, accuracyRow(res.Name, "training", a))
		}
		if fc, ok := in.Forecasts[res.Name]; ok {
			r.forecasts = append(r.forecasts, fc)
			r.Forecasts = append(r.Forecasts, forecastSection(f.Describe(), fc))
		}
		if d, ok := in.Diagnostics[res.Name]; ok && d != nil {
			r.Diagnostics = append(r.Diagnostics, diagnosticSection(d))
		}
	}

	if in.Board != nil {
		r.Ranking = Ranking{ByRMSE: rankRows(in.Board.ByRMSE), ByAICc: rankRows(in.Board.ByAICc)}
		r.Failures = append(r.Failures, in.Board.Failed...)
		if best, ok := in.Board.Best(); ok {
			r.Best = best.Model
		}
	} else {
		for _, res := range model.Failed(in.Results) {
			r.Failures = append(r.Failures, evaluate.Failure{Model: res.Name, Error: res.Err.Error()})
		}
	}
	if r.Failures == nil {
		r.Failures = []evaluate.Failure{}
	}
	return r
}

func seriesSection(in Input) SeriesSection {
	s := in.Series
	sec := SeriesSection{
		Name:    s.Name,
		Records: in.Records,
		Span:    window(s),
		Mean:    Float(s.Mean()),
		StdDev:  Float(s.Std()),
		Min:     Float(s.Min()),
		Max:     Float(s.Max()),
		Points:  make([]SeriesPoint, s.Len()),
	}
	if in.Train != nil {
		sec.Train = window(in.Train)
	}
	if in.Test != nil {
		sec.Test = window(in.Test)
	}
	for i, v := range s.Values {
		p := s.PeriodAt(i)
		set := "train"
		if in.Test != nil && in.Test.Len() > 0 && !p.Before(in.Test.Start) {
			set = "test"
		}
		sec.Points[i] = SeriesPoint{Period: p, Value: Float(v), Set: set}
	}
	return sec
}

func modelRow(res model.Result) ModelRow {
	f := res.Fitted
	c := f.Criteria()
	row := ModelRow{
		Model:     res.Name,
		Describe:  f.Describe(),
		Family:    f.Family(),
		Duration:  Float(float64(res.Duration) / float64(time.Millisecond)),
		LogLik:    Float(c.LogLik),
		AIC:       Float(c.AIC),
		AICc:      Float(c.AICc),
		BIC:       Float(c.BIC),
		NumParams: c.NumParams,
		NObs:      c.NObs,
	}
	if res.Spec != nil {
		row.Spec = res.Spec.String()
	}
	for _, coef := range f.Coefficients() {
		row.Coefficients = append(row.Coefficients, CoefficientRow{Model: res.Name, Name: coef.Name, Value: Float(coef.Value)})
	}
	return row
}

func forecastSection(describe string, fc *model.Forecast) ForecastSection {
	sec := ForecastSection{
		Model:    fc.Model,
		Describe: describe,
		Start:    fc.Start,
		Points:   make([]ForecastPoint, len(fc.Points)),
	}
	for i, p := range fc.Points {
		fp := ForecastPoint{Period: p.Period, Mean: Float(p.Mean)}
		for _, iv := range p.Intervals {
			fp.Intervals = append(fp.Intervals, IntervalValue{
				Level: Float(iv.Level),
				Lower: Float(iv.Lower),
				Upper: Float(iv.Upper),
			})
		}
		sec.Points[i] = fp
	}
	return sec
}

func diagnosticSection(d *diagnostics.Report) DiagnosticSection {
	sec := DiagnosticSection{
		Model:           d.Model,
		Describe:        d.Describe,
		Lag:             d.Lag,
		FitDF:           d.FitDF,
		Mean:            Float(d.Mean),
		StdDev:          Float(d.StdDev),
		White:           d.White,
		SignificantLags: d.SignificantLags,
		HistogramEdges:  floats(d.Histogram.Edges),
		HistogramCounts: floats(d.Histogram.Counts),
	}
	if sec.SignificantLags == nil {
		sec.SignificantLags = []int{}
	}
	if lb := d.LjungBox; lb != nil {
		sec.LjungBox = &TestValue{Statistic: Float(lb.Statistic), PValue: Float(lb.PValue), DOF: lb.DOF}
	}
	if bp := d.BoxPierce; bp != nil {
		sec.BoxPierce = &TestValue{Statistic: Float(bp.Statistic), PValue: Float(bp.PValue), DOF: bp.DOF}
	}
	if dw := d.DurbinWatson; dw != nil {
		sec.DurbinWatson = optional(dw.Statistic)
	}
	if jb := d.Normality; jb != nil {
		sec.JarqueBera = &TestValue{Statistic: Float(jb.Statistic), PValue: Float(jb.PValue), DOF: 2}
		sec.Skewness = optional(jb.Skewness)
		sec.ExKurtosis = optional(jb.ExKurtosis)
	}
	if d.ACF != nil {
		sec.ACF = &Correlogram{Values: floats(d.ACF.Values), Bound: Float(d.ACF.ConfBounds)}
	}
	if res := d.Residuals; res != nil {
		sec.Residuals = make([]SeriesPoint, res.Len())
		for i, v := range res.Values {
			sec.Residuals[i] = SeriesPoint{Period: res.PeriodAt(i), Value: Float(v), Set: "train"}
		}
	}
	return sec
}
