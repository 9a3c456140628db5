// Package diagnostics checks the residuals of fitted models.
package diagnostics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/paxcast/model"
	"github.com/sartorproj/paxcast/stats"
	"github.com/sartorproj/paxcast/timeseries"
)

var (
	// ErrNoResiduals is returned for a model with fewer than three residuals.
	ErrNoResiduals = errors.New("diagnostics: not enough residuals")
	// ErrInvalidLag is returned for a lag below one.
	ErrInvalidLag = errors.New("diagnostics: lag must be at least 1")
)

// Significance is the level at which the residual tests reject.
const Significance = 0.05

// Histogram is a binned residual distribution. Bin i covers
// [Edges[i], Edges[i+1]).
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []float64 `json:"counts"`
}

// NormalityResult is a Jarque-Bera test of the residuals.
type NormalityResult struct {
	Statistic  float64 `json:"statistic"`
	PValue     float64 `json:"p_value"`
	Skewness   float64 `json:"skewness"`
	ExKurtosis float64 `json:"excess_kurtosis"`
}

// Report summarises the residuals of one fitted model.
type Report struct {
	Model    string `json:"model"`
	Describe string `json:"describe"`
	Lag      int    `json:"lag"`
	FitDF    int    `json:"fitdf"`

	Residuals *timeseries.Series `json:"-"`
	Mean      float64            `json:"mean"`
	StdDev    float64            `json:"std_dev"`

	LjungBox     *stats.PortmanteauResult  `json:"ljung_box,omitempty"`
	BoxPierce    *stats.PortmanteauResult  `json:"box_pierce,omitempty"`
	DurbinWatson *stats.DurbinWatsonResult `json:"durbin_watson,omitempty"`
	Normality    *NormalityResult          `json:"normality,omitempty"`

	ACF             *stats.CorrelogramResult `json:"acf,omitempty"`
	SignificantLags []int                    `json:"significant_lags"`
	Histogram       Histogram                `json:"histogram"`

	// White is true when Ljung-Box does not reject uncorrelated residuals.
	White bool `json:"white"`
}

// Check tests the residuals of f up to lag. The Ljung-Box and Box-Pierce
// degrees of freedom are reduced by f.NumARMAParams().
func Check(f model.Fitted, lag int) (*Report, error) {
	if lag < 1 {
		return nil, ErrInvalidLag
	}
	res := f.Residuals()
	if res == nil || res.Len() < 3 {
		return nil, fmt.Errorf("%w: %s", ErrNoResiduals, f.Name())
	}

	fitdf := f.NumARMAParams()
	r := &Report{
		Model:     f.Name(),
		Describe:  f.Describe(),
		Lag:       lag,
		FitDF:     fitdf,
		Residuals: res,
	}
	r.Mean, r.StdDev = stat.MeanStdDev(res.Values, nil)

	r.LjungBox = stats.LjungBox(res, lag, fitdf)
	r.BoxPierce = stats.BoxPierce(res, lag, fitdf)
	r.DurbinWatson = stats.DurbinWatson(res.Values)
	r.Normality = JarqueBera(res.Values)

	r.ACF = stats.ACFWithConfidence(res, lag)
	if r.ACF != nil {
		r.SignificantLags = stats.SignificantLags(r.ACF.Values, r.ACF.ConfBounds)
	}
	r.Histogram = NewHistogram(res.Values, 0)
	r.White = r.LjungBox != nil && r.LjungBox.PValue > Significance
	return r, nil
}

// JarqueBera tests the residuals for normality. It returns nil for fewer
// than three values or zero variance.
func JarqueBera(values []float64) *NormalityResult {
	n := float64(len(values))
	if n < 3 || stat.Variance(values, nil) == 0 {
		return nil
	}
	skew := stat.Skew(values, nil)
	kurt := stat.ExKurtosis(values, nil)
	jb := n / 6 * (skew*skew + kurt*kurt/4)
	return &NormalityResult{
		Statistic:  jb,
		PValue:     distuv.ChiSquared{K: 2}.Survival(jb),
		Skewness:   skew,
		ExKurtosis: kurt,
	}
}

// NewHistogram bins values into equal-width bins spanning their range.
// bins < 1 selects Sturges' rule.
func NewHistogram(values []float64, bins int) Histogram {
	if len(values) == 0 {
		return Histogram{}
	}
	if bins < 1 {
		bins = int(math.Ceil(math.Log2(float64(len(values))))) + 1
	}

	x := append([]float64(nil), values...)
	sort.Float64s(x)
	lo, hi := x[0], x[len(x)-1]
	if hi == lo {
		hi = lo + 1
		bins = 1
	}

	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)
	// stat.Histogram bins are half-open, so the maximum needs room.
	edges[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, edges, x, nil)
	return Histogram{Edges: edges, Counts: counts}
}
