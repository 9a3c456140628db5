package ets

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sartorproj/paxcast/timeseries"
)

// ErrNoModel is returned when no candidate model could be fitted.
var ErrNoModel = errors.New("ets: no candidate model could be fitted")

// AutoConfig restricts the automatic search.
type AutoConfig struct {
	Period    int    // Seasonal period; < 2 disables seasonal models
	Criterion string // "aic", "aicc" (default) or "bic"
	// AllowMultiplicative permits multiplicative error and season when the
	// data are strictly positive.
	AllowMultiplicative bool
	AllowDamped         bool

	// Trace, when set, is called after every candidate fit.
	Trace func(Candidate)
}

// DefaultAutoConfig returns the default configuration for period.
func DefaultAutoConfig(period int) *AutoConfig {
	return &AutoConfig{
		Period:              period,
		Criterion:           "aicc",
		AllowMultiplicative: true,
		AllowDamped:         true,
	}
}

// Candidate is one evaluated specification.
type Candidate struct {
	Spec      Spec
	Criterion float64
	Err       error
}

// AutoResult holds the selected model and every evaluated candidate.
type AutoResult struct {
	Model      *Model
	Criterion  float64
	Candidates []Candidate
}

// Candidates enumerates error A/M, trend N/A/Ad and season N/A/M, skipping
// additive error with multiplicative season and anything the data or
// config rule out.
func Candidates(series *timeseries.Series, config *AutoConfig) []Spec {
	positive := series.AllPositive() && config.AllowMultiplicative

	errorTypes := []Component{Additive}
	if positive {
		errorTypes = append(errorTypes, Multiplicative)
	}

	type trendOpt struct {
		trend  Component
		damped bool
	}
	trends := []trendOpt{{None, false}, {Additive, false}}
	if config.AllowDamped {
		trends = append(trends, trendOpt{Additive, true})
	}

	seasons := []Component{None}
	if config.Period >= 2 && series.Len() >= 2*config.Period {
		seasons = append(seasons, Additive)
		if positive {
			seasons = append(seasons, Multiplicative)
		}
	}

	var specs []Spec
	for _, e := range errorTypes {
		for _, tr := range trends {
			for _, s := range seasons {
				if e == Additive && s == Multiplicative {
					continue
				}
				spec := Spec{Error: e, Trend: tr.trend, Damped: tr.damped, Season: s}
				if s != None {
					spec.Period = config.Period
				}
				specs = append(specs, spec)
			}
		}
	}
	return specs
}

// Auto fits every candidate and returns the one minimising the criterion.
// Ties keep the earlier candidate.
func Auto(ctx context.Context, series *timeseries.Series, config *AutoConfig) (*AutoResult, error) {
	if config == nil {
		config = DefaultAutoConfig(12)
	}

	result := &AutoResult{Criterion: math.Inf(1)}
	var lastErr error
	for _, spec := range Candidates(series, config) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		model := New(spec)
		cand := Candidate{Spec: spec, Criterion: math.Inf(1)}
		if err := model.FitContext(ctx, series); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			cand.Err = err
			lastErr = err
		} else {
			cand.Criterion = criterion(model, config.Criterion)
		}

		result.Candidates = append(result.Candidates, cand)
		if config.Trace != nil {
			config.Trace(cand)
		}
		if cand.Err == nil && cand.Criterion < result.Criterion {
			result.Model, result.Criterion = model, cand.Criterion
		}
	}

	if result.Model == nil {
		return nil, fmt.Errorf("%w: last error: %v", ErrNoModel, lastErr)
	}
	return result, nil
}

func criterion(m *Model, name string) float64 {
	switch name {
	case "aic":
		return m.AIC
	case "bic":
		return m.BIC
	default:
		return m.AICc
	}
}
