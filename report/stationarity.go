package report

import (
	"github.com/sartorproj/paxcast/stats"
	"github.com/sartorproj/paxcast/timeseries"
)

// Default bounds of the Guerrero lambda search.
const (
	LambdaLower = -1.0
	LambdaUpper = 2.0
)

// TestRow is one stationarity or unit-root test on one transform of the
// series.
type TestRow struct {
	Test       string `json:"test"`
	Regression string `json:"regression,omitempty"`
	// Transform is "level", "diff" or "seasonal diff".
	Transform  string           `json:"transform"`
	Statistic  Float            `json:"statistic"`
	PValue     Float            `json:"p_value"`
	Lags       int              `json:"lags"`
	NObs       int              `json:"n_obs"`
	Critical   map[string]Float `json:"critical_values,omitempty"`
	Stationary bool             `json:"stationary"`
}

// Decomposition is a classical decomposition of the series.
type Decomposition struct {
	Type     string  `json:"type"`
	Period   int     `json:"period"`
	Trend    []Float `json:"trend"`
	Seasonal []Float `json:"seasonal"`
	Residual []Float `json:"residual"`
}

// Correlogram is an ACF or PACF with its 95% bound.
type Correlogram struct {
	Values []Float `json:"values"`
	Bound  Float   `json:"bound"`
}

// Stationarity collects the tests and transforms used to choose the
// differencing orders. KPSS and ADF are reported side by side and may
// disagree.
type Stationarity struct {
	Tests []TestRow `json:"tests"`

	Lambda      *Float `json:"lambda,omitempty"`
	LambdaError string `json:"lambda_error,omitempty"`

	NDiffs           int   `json:"ndiffs"`
	NSDiffs          int   `json:"nsdiffs"`
	SeasonalStrength Float `json:"seasonal_strength"`
	TrendStrength    Float `json:"trend_strength"`

	ACF           *Correlogram   `json:"acf,omitempty"`
	PACF          *Correlogram   `json:"pacf,omitempty"`
	Decomposition *Decomposition `json:"decomposition,omitempty"`
}

// AnalyzeStationarity runs KPSS (level and trend), ADF and Phillips-Perron
// on the series, its first difference and its seasonally differenced first
// difference, and adds the Guerrero lambda, differencing orders, strengths,
// correlograms up to two seasons and a classical decomposition.
// Tests the data are too short for are omitted.
func AnalyzeStationarity(series *timeseries.Series, period int) *Stationarity {
	st := &Stationarity{
		NDiffs:           stats.NDiffs(series, 2, "kpss"),
		NSDiffs:          stats.NSDiffs(series, period, 1),
		SeasonalStrength: Float(stats.SeasonalStrength(series, period)),
		TrendStrength:    Float(stats.TrendStrength(series, period)),
	}

	transforms := []transform{
		{"level", series},
		{"diff", series.Diff()},
	}
	if period >= 2 && series.Len() > period+1 {
		transforms = append(transforms, transform{"seasonal diff", series.Diff().SeasonalDiff(period)})
	}

	for _, tr := range transforms {
		st.add(tr.name, "c", stats.KPSS(tr.series, "c", 0))
		st.add(tr.name, "ct", stats.KPSS(tr.series, "ct", 0))
		st.add(tr.name, "c", stats.ADF(tr.series, 0))
		st.add(tr.name, "c", stats.PhillipsPerron(tr.series, 0))
	}

	if lambda, err := stats.GuerreroLambda(series, period, LambdaLower, LambdaUpper); err != nil {
		st.LambdaError = err.Error()
	} else {
		st.Lambda = optional(lambda)
	}

	maxLag := 2 * period
	if maxLag >= series.Len() {
		maxLag = series.Len() - 1
	}
	if c := stats.ACFWithConfidence(series, maxLag); c != nil {
		st.ACF = &Correlogram{Values: floats(c.Values), Bound: Float(c.ConfBounds)}
	}
	if c := stats.PACFWithConfidence(series, maxLag); c != nil {
		st.PACF = &Correlogram{Values: floats(c.Values), Bound: Float(c.ConfBounds)}
	}

	kind := "additive"
	if series.AllPositive() {
		kind = "multiplicative"
	}
	if d := stats.Decompose(series, period, kind); d != nil {
		st.Decomposition = &Decomposition{
			Type:     d.Type,
			Period:   d.Period,
			Trend:    floats(d.Trend.Values),
			Seasonal: floats(d.Seasonal.Values),
			Residual: floats(d.Residual.Values),
		}
	}
	return st
}

type transform struct {
	name   string
	series *timeseries.Series
}

func (st *Stationarity) add(transform, regression string, r *stats.TestResult) {
	if r == nil {
		return
	}
	row := TestRow{
		Test:       r.Test,
		Transform:  transform,
		Statistic:  Float(r.Statistic),
		PValue:     Float(r.PValue),
		Lags:       r.Lags,
		NObs:       r.NObs,
		Stationary: r.IsStationary,
	}
	if r.Test == "kpss" {
		row.Regression = regression
	}
	if len(r.CriticalVals) > 0 {
		row.Critical = make(map[string]Float, len(r.CriticalVals))
		for k, v := range r.CriticalVals {
			row.Critical[k] = Float(v)
		}
	}
	st.Tests = append(st.Tests, row)
}
