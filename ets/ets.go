package ets

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/paxcast/stats"
	"github.com/sartorproj/paxcast/timeseries"
)

var (
	// ErrInvalidSpec is returned for unknown components or a seasonal
	// component without a period.
	ErrInvalidSpec = errors.New("ets: invalid model specification")
	// ErrNonPositive is returned when a multiplicative component meets
	// zero or negative data.
	ErrNonPositive = errors.New("ets: multiplicative components require strictly positive data")
	// ErrInsufficientData is returned when there are too few observations
	// for the number of parameters or for seasonal initialisation.
	ErrInsufficientData = errors.New("ets: insufficient data points for the specified model")
	// ErrEstimation is returned when no admissible parameters were found.
	ErrEstimation = errors.New("ets: estimation failed")
	// ErrNotFitted is returned by prediction methods before Fit.
	ErrNotFitted = errors.New("ets: model must be fitted before prediction")
)

// Component is the form of an error, trend or seasonal component.
type Component string

const (
	None           Component = "N"
	Additive       Component = "A"
	Multiplicative Component = "M"
)

// Spec identifies an ETS model. Trend may be None or Additive; Damped
// applies to an additive trend.
type Spec struct {
	Error  Component `json:"error"`
	Trend  Component `json:"trend"`
	Damped bool      `json:"damped"`
	Season Component `json:"season"`
	Period int       `json:"period"`
}

func (s Spec) String() string {
	trend := string(s.Trend)
	if s.Damped && s.Trend == Additive {
		trend += "d"
	}
	return fmt.Sprintf("ETS(%s,%s,%s)", s.Error, trend, s.Season)
}

func (s Spec) validate() error {
	if s.Error != Additive && s.Error != Multiplicative {
		return fmt.Errorf("%w: error component %q", ErrInvalidSpec, s.Error)
	}
	if s.Trend != None && s.Trend != Additive {
		return fmt.Errorf("%w: trend component %q", ErrInvalidSpec, s.Trend)
	}
	if s.Damped && s.Trend == None {
		return fmt.Errorf("%w: damping without a trend", ErrInvalidSpec)
	}
	switch s.Season {
	case None:
	case Additive, Multiplicative:
		if s.Period < 2 {
			return fmt.Errorf("%w: seasonal component needs a period >= 2", ErrInvalidSpec)
		}
	default:
		return fmt.Errorf("%w: season component %q", ErrInvalidSpec, s.Season)
	}
	return nil
}

// multiplicative reports whether any component is multiplicative.
func (s Spec) multiplicative() bool {
	return s.Error == Multiplicative || s.Season == Multiplicative
}

// linear reports whether the model has analytic prediction variances
// (additive error and no multiplicative component).
func (s Spec) linear() bool {
	return s.Error == Additive && s.Season != Multiplicative
}

// numParams counts the free smoothing parameters and initial states.
func (s Spec) numParams() int {
	k := 2 // alpha, l0
	if s.Trend != None {
		k += 2 // beta, b0
	}
	if s.Damped {
		k++
	}
	if s.Season != None {
		k += s.Period // gamma plus m-1 free seasonal states
	}
	return k
}

// Model is an ETS model fitted by maximum likelihood.
type Model struct {
	Spec  Spec
	Alpha float64
	Beta  float64 // error-correction form, 0 < Beta < Alpha
	Gamma float64 // 0 < Gamma < 1 - Alpha
	Phi   float64 // damping, 1 for undamped trends

	Level0  float64
	Trend0  float64
	Season0 []float64 // seasonal state used by the i-th observation of the first cycle

	Variance float64 // sigma^2 = SSE/(n - np) of the innovations
	LogLik   float64
	AIC      float64
	AICc     float64
	BIC      float64
	NObs     int

	// MaxEvaluations bounds the objective evaluations per optimiser pass.
	MaxEvaluations int

	fitted bool
	data   *timeseries.Series
	final  state
	yhat   []float64
	innov  []float64
}

// New creates an unfitted model for spec.
func New(spec Spec) *Model {
	return &Model{Spec: spec, MaxEvaluations: 20000}
}

// NumParams is the number of estimated parameters including sigma.
func (m *Model) NumParams() int {
	return m.Spec.numParams() + 1
}

// Fit fits the model to the given time series data.
func (m *Model) Fit(series *timeseries.Series) error {
	return m.FitContext(context.Background(), series)
}

// FitContext estimates the smoothing parameters and initial states by
// minimising n*log(SSE) (+ 2*sum(log|yhat|) for multiplicative errors) on a
// rescaled copy of the data, aborting when ctx is done.
func (m *Model) FitContext(ctx context.Context, series *timeseries.Series) error {
	spec := m.Spec
	if err := spec.validate(); err != nil {
		return err
	}
	if spec.multiplicative() && !series.AllPositive() {
		return ErrNonPositive
	}

	n := series.Len()
	np := m.NumParams()
	if n <= np+1 {
		return fmt.Errorf("%w: %d observations for %d parameters", ErrInsufficientData, n, np)
	}
	if spec.Season != None && n < 2*spec.Period {
		return fmt.Errorf("%w: seasonal initialisation needs two full periods", ErrInsufficientData)
	}

	scale := stat.Mean(series.Values, nil)
	if spec.Error == Additive && !spec.multiplicative() {
		scale = floats.Norm(series.Values, 1) / float64(n)
	}
	if !(scale > 0) {
		scale = 1
	}
	y := make([]float64, n)
	for i, v := range series.Values {
		y[i] = v / scale
	}

	x0 := m.initialParams(y)
	objective := func(x []float64) float64 {
		sm, init, ok := m.unpack(x)
		if !ok {
			return infeasible
		}
		lik, ok := sm.likelihood(y, init, nil, nil)
		if !ok || math.IsNaN(lik) || math.IsInf(lik, 0) {
			return infeasible
		}
		return lik
	}
	if objective(x0) >= infeasible {
		return fmt.Errorf("%w: no admissible starting point", ErrEstimation)
	}

	problem := optimize.Problem{
		Func: objective,
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}

	best, bestF := x0, objective(x0)
	for pass := 0; pass < 2; pass++ {
		settings := &optimize.Settings{
			FuncEvaluations: m.MaxEvaluations,
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-8,
				Iterations: 200,
			},
		}
		result, err := optimize.Minimize(problem, best, settings, &optimize.NelderMead{SimplexSize: 0.2})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if result == nil || math.IsNaN(result.F) || math.IsInf(result.F, 0) {
			if err != nil && pass == 0 {
				return fmt.Errorf("%w: %v", ErrEstimation, err)
			}
			break
		}
		if result.F < bestF {
			best, bestF = result.X, result.F
		}
	}

	sm, init, _ := m.unpack(best)
	init.level *= scale
	init.trend *= scale
	if spec.Season == Additive {
		for i := range init.season {
			init.season[i] *= scale
		}
	}

	m.Alpha, m.Beta, m.Gamma, m.Phi = sm.alpha, sm.beta, sm.gamma, sm.phi
	m.Level0, m.Trend0 = init.level, init.trend
	m.Season0 = append([]float64(nil), init.season...)

	m.yhat = make([]float64, n)
	m.innov = make([]float64, n)
	lik, ok := sm.likelihood(series.Values, init, m.yhat, m.innov)
	if !ok {
		return fmt.Errorf("%w: fitted states left the admissible region", ErrEstimation)
	}

	m.final = sm.run(series.Values, init)
	m.data = series
	m.NObs = n
	m.calculateIC(lik, np)
	m.fitted = true
	return nil
}

// calculateIC follows Hyndman et al. (2008): AIC = lik + 2np with
// lik = n*log(SSE) (+ 2*sum(log|yhat|)).
func (m *Model) calculateIC(lik float64, np int) {
	n := float64(m.NObs)
	k := float64(np)

	sse := floats.Dot(m.innov, m.innov)
	m.Variance = sse / (n - k)
	m.LogLik = -0.5 * lik
	m.AIC = lik + 2*k
	m.BIC = lik + math.Log(n)*k
	m.AICc = stats.AICc(m.AIC, m.NObs, np)
}

// infeasible is the objective value outside the admissible region.
const infeasible = 1e12

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

// initialParams starts from alpha 0.3, beta 0.1*alpha, gamma
// 0.1*(1-alpha), phi 0.9 and heuristic initial states.
func (m *Model) initialParams(y []float64) []float64 {
	spec := m.Spec
	x := []float64{logit(0.3)}
	if spec.Trend != None {
		x = append(x, logit(0.1))
	}
	if spec.Season != None {
		x = append(x, logit(0.1))
	}
	if spec.Damped {
		x = append(x, logit(0.1/0.18))
	}

	init := heuristicState(spec, y)
	x = append(x, init.level)
	if spec.Trend != None {
		x = append(x, init.trend)
	}
	if spec.Season != None {
		x = append(x, init.season[:spec.Period-1]...)
	}
	return x
}

// unpack maps the unconstrained optimiser vector to smoothing parameters
// and initial states. ok is false for an inadmissible seasonal state.
func (m *Model) unpack(x []float64) (smoothing, state, bool) {
	spec := m.Spec
	sm := smoothing{spec: spec, phi: 1}

	i := 0
	next := func() float64 {
		v := x[i]
		i++
		return v
	}

	sm.alpha = 1e-4 + (1-2e-4)*sigmoid(next())
	if spec.Trend != None {
		sm.beta = sm.alpha * sigmoid(next())
	}
	if spec.Season != None {
		sm.gamma = (1 - sm.alpha) * sigmoid(next())
	}
	if spec.Damped {
		sm.phi = 0.8 + 0.18*sigmoid(next())
	}

	st := state{level: next()}
	if spec.Trend != None {
		st.trend = next()
	}
	if spec.Season != None {
		period := spec.Period
		st.season = make([]float64, period)
		sum := 0.0
		for j := 0; j < period-1; j++ {
			st.season[j] = next()
			sum += st.season[j]
		}
		if spec.Season == Additive {
			st.season[period-1] = -sum
		} else {
			st.season[period-1] = float64(period) - sum
			for _, s := range st.season {
				if s <= 0 {
					return sm, st, false
				}
			}
		}
	}
	return sm, st, true
}

// heuristicState derives starting states from a classical decomposition
// of the first years and a regression line through the deseasonalised head.
func heuristicState(spec Spec, y []float64) state {
	n := len(y)
	st := state{}
	deseason := append([]float64(nil), y...)

	if spec.Season != None {
		period := spec.Period
		head := min(n, 4*period)
		kind := "additive"
		if spec.Season == Multiplicative {
			kind = "multiplicative"
		}
		st.season = make([]float64, period)
		if dec := stats.Decompose(timeseries.New(y[:head]), period, kind); dec != nil {
			copy(st.season, dec.Seasonal.Values[:period])
		} else if spec.Season == Multiplicative {
			for i := range st.season {
				st.season[i] = 1
			}
		}
		for i := range deseason {
			if spec.Season == Multiplicative {
				deseason[i] /= st.season[i%period]
			} else {
				deseason[i] -= st.season[i%period]
			}
		}
	}

	k := min(n, 10)
	if spec.Season != None {
		k = min(n, 2*spec.Period)
	}

	if spec.Trend == None {
		st.level = stat.Mean(deseason[:k], nil)
		return st
	}

	xs := make([]float64, k)
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	st.level, st.trend = stat.LinearRegression(xs, deseason[:k], nil, false)
	if spec.multiplicative() && st.level <= 0 {
		st.level = deseason[0]
	}
	return st
}

// Residuals returns the innovation residuals: y - yhat for additive errors
// and (y - yhat)/yhat for multiplicative errors.
func (m *Model) Residuals() *timeseries.Series {
	if !m.fitted {
		return nil
	}
	return &timeseries.Series{Start: m.data.Start, Values: append([]float64(nil), m.innov...), Name: "residuals"}
}

// FittedValues returns the one-step in-sample predictions.
func (m *Model) FittedValues() *timeseries.Series {
	if !m.fitted {
		return nil
	}
	return &timeseries.Series{Start: m.data.Start, Values: append([]float64(nil), m.yhat...), Name: "fitted"}
}

// Summary holds the estimated parameters and fit statistics.
type Summary struct {
	Spec     Spec      `json:"spec"`
	Alpha    float64   `json:"alpha"`
	Beta     float64   `json:"beta,omitempty"`
	Gamma    float64   `json:"gamma,omitempty"`
	Phi      float64   `json:"phi,omitempty"`
	Level0   float64   `json:"l0"`
	Trend0   float64   `json:"b0,omitempty"`
	Season0  []float64 `json:"s0,omitempty"`
	Variance float64   `json:"sigma2"`
	AIC      float64   `json:"aic"`
	AICc     float64   `json:"aicc"`
	BIC      float64   `json:"bic"`
	LogLik   float64   `json:"log_lik"`
	NObs     int       `json:"n_obs"`
}

// Summary returns a summary of the fitted model.
func (m *Model) Summary() *Summary {
	if !m.fitted {
		return nil
	}
	s := &Summary{
		Spec:     m.Spec,
		Alpha:    m.Alpha,
		Beta:     m.Beta,
		Gamma:    m.Gamma,
		Level0:   m.Level0,
		Trend0:   m.Trend0,
		Season0:  m.Season0,
		Variance: m.Variance,
		AIC:      m.AIC,
		AICc:     m.AICc,
		BIC:      m.BIC,
		LogLik:   m.LogLik,
		NObs:     m.NObs,
	}
	if m.Spec.Damped {
		s.Phi = m.Phi
	}
	return s
}
