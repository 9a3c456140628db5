package model

import (
	"errors"
	"fmt"

	"github.com/sartorproj/paxcast/arima"
	"github.com/sartorproj/paxcast/ets"
	"github.com/sartorproj/paxcast/timeseries"
)

// ErrInvalidHorizon is returned for a forecast horizon below one.
var ErrInvalidHorizon = errors.New("model: forecast horizon must be at least 1")

// Criteria holds the likelihood-based fit statistics of a model.
type Criteria struct {
	LogLik    float64 `json:"log_lik"`
	AIC       float64 `json:"aic"`
	AICc      float64 `json:"aicc"`
	BIC       float64 `json:"bic"`
	NumParams int     `json:"num_params"`
	NObs      int     `json:"n_obs"`
}

// Coefficient is one named estimated parameter.
type Coefficient struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Fitted is a model fitted to a training series.
type Fitted interface {
	// Name is the catalog name the model was fitted under.
	Name() string
	// Describe names the concrete model, e.g. "ARIMA(0,1,1)(0,1,1)[12]".
	Describe() string
	Family() Family
	Criteria() Criteria
	Coefficients() []Coefficient
	// FittedValues and Residuals are aligned to the training periods they
	// cover.
	FittedValues() *timeseries.Series
	Residuals() *timeseries.Series
	// NumARMAParams is p+q+P+Q, the degrees of freedom a residual
	// portmanteau test loses.
	NumARMAParams() int
	// Forecast returns h points starting the month after training ends.
	Forecast(h int, levels []float64) (*Forecast, error)
}

type etsFitted struct {
	name  string
	model *ets.Model
	auto  bool
}

func (f *etsFitted) Name() string   { return f.name }
func (f *etsFitted) Family() Family { return FamilyETS }

func (f *etsFitted) Describe() string {
	if f.auto {
		return f.model.Spec.String() + " (auto)"
	}
	return f.model.Spec.String()
}

func (f *etsFitted) Criteria() Criteria {
	m := f.model
	return Criteria{LogLik: m.LogLik, AIC: m.AIC, AICc: m.AICc, BIC: m.BIC, NumParams: m.NumParams(), NObs: m.NObs}
}

func (f *etsFitted) Coefficients() []Coefficient {
	m := f.model
	out := []Coefficient{{"alpha", m.Alpha}}
	if m.Spec.Trend != ets.None {
		out = append(out, Coefficient{"beta", m.Beta})
	}
	if m.Spec.Season != ets.None {
		out = append(out, Coefficient{"gamma", m.Gamma})
	}
	if m.Spec.Damped {
		out = append(out, Coefficient{"phi", m.Phi})
	}
	out = append(out, Coefficient{"l", m.Level0})
	if m.Spec.Trend != ets.None {
		out = append(out, Coefficient{"b", m.Trend0})
	}
	for i, s := range m.Season0 {
		out = append(out, Coefficient{fmt.Sprintf("s%d", i+1), s})
	}
	out = append(out, Coefficient{"sigma2", m.Variance})
	return out
}

func (f *etsFitted) FittedValues() *timeseries.Series { return f.model.FittedValues() }
func (f *etsFitted) Residuals() *timeseries.Series    { return f.model.Residuals() }
func (f *etsFitted) NumARMAParams() int               { return 0 }

func (f *etsFitted) Forecast(h int, levels []float64) (*Forecast, error) {
	if h < 1 {
		return nil, ErrInvalidHorizon
	}
	fc, err := f.model.Forecast(h, levels)
	if err != nil {
		return nil, err
	}
	bands := make([]band, len(fc.Intervals))
	for i, iv := range fc.Intervals {
		bands[i] = band{iv.Level, iv.Lower, iv.Upper}
	}
	return newForecast(f.name, fc.Start, fc.Mean, bands), nil
}

type arimaFitted struct {
	name  string
	model *arima.Model
	auto  bool
}

func (f *arimaFitted) Name() string   { return f.name }
func (f *arimaFitted) Family() Family { return FamilyARIMA }

func (f *arimaFitted) Describe() string {
	d := f.model.Order.String()
	if f.model.IncludeConstant {
		d += " with constant"
	}
	if f.auto {
		d += " (auto)"
	}
	return d
}

func (f *arimaFitted) Criteria() Criteria {
	m := f.model
	return Criteria{LogLik: m.LogLik, AIC: m.AIC, AICc: m.AICc, BIC: m.BIC, NumParams: m.NumParams(), NObs: m.NObs}
}

func (f *arimaFitted) Coefficients() []Coefficient {
	m := f.model
	var out []Coefficient
	add := func(prefix string, coeffs []float64) {
		for i, c := range coeffs {
			out = append(out, Coefficient{fmt.Sprintf("%s%d", prefix, i+1), c})
		}
	}
	add("ar", m.ARCoeffs)
	add("ma", m.MACoeffs)
	add("sar", m.SARCoeffs)
	add("sma", m.SMACoeffs)
	if m.IncludeConstant {
		out = append(out, Coefficient{"mean", m.Constant})
	}
	return append(out, Coefficient{"sigma2", m.Variance})
}

func (f *arimaFitted) FittedValues() *timeseries.Series { return f.model.FittedValues() }
func (f *arimaFitted) Residuals() *timeseries.Series    { return f.model.Residuals() }
func (f *arimaFitted) NumARMAParams() int               { return f.model.Order.NumARMA() }

func (f *arimaFitted) Forecast(h int, levels []float64) (*Forecast, error) {
	if h < 1 {
		return nil, ErrInvalidHorizon
	}
	fc, err := f.model.Forecast(h, levels)
	if err != nil {
		return nil, err
	}
	bands := make([]band, len(fc.Intervals))
	for i, iv := range fc.Intervals {
		bands[i] = band{iv.Level, iv.Lower, iv.Upper}
	}
	return newForecast(f.name, fc.Start, fc.Mean, bands), nil
}
