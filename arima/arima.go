// Package arima implements seasonal ARIMA (AutoRegressive Integrated Moving Average) models.
package arima

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/paxcast/stats"
	"github.com/sartorproj/paxcast/timeseries"
)

var (
	// ErrInvalidOrder is returned for negative orders, a seasonal part
	// without a period, or a constant combined with d+D > 1.
	ErrInvalidOrder = errors.New("arima: invalid model order")
	// ErrInsufficientData is returned when the differenced series leaves
	// too few observations for the number of parameters.
	ErrInsufficientData = errors.New("arima: insufficient data points for the specified order")
	// ErrDegenerate is returned when the differenced series has zero variance.
	ErrDegenerate = errors.New("arima: differenced series has zero variance")
	// ErrNotFitted is returned by prediction methods before Fit.
	ErrNotFitted = errors.New("arima: model must be fitted before prediction")
	// ErrEstimation is returned when the optimiser finds no admissible point.
	ErrEstimation = errors.New("arima: estimation failed")
)

// Order represents the model order (p, d, q) x (P, D, Q)[m].
type Order struct {
	P int `json:"p"` // Non-seasonal AR order
	D int `json:"d"` // Non-seasonal differencing order
	Q int `json:"q"` // Non-seasonal MA order
	// Seasonal components
	SP int `json:"sp"` // Seasonal AR order
	SD int `json:"sd"` // Seasonal differencing order
	SQ int `json:"sq"` // Seasonal MA order
	M  int `json:"m"`  // Seasonal period (e.g., 12 for monthly data with yearly seasonality)
}

// Seasonal reports whether the order has any seasonal component.
func (o Order) Seasonal() bool {
	return o.SP+o.SD+o.SQ > 0
}

// NumARMA is the number of estimated AR and MA coefficients.
func (o Order) NumARMA() int {
	return o.P + o.Q + o.SP + o.SQ
}

func (o Order) String() string {
	if !o.Seasonal() {
		return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
	}
	return fmt.Sprintf("ARIMA(%d,%d,%d)(%d,%d,%d)[%d]", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.M)
}

func (o Order) validate(includeConstant bool) error {
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.SP < 0 || o.SD < 0 || o.SQ < 0 {
		return fmt.Errorf("%w: negative order %s", ErrInvalidOrder, o)
	}
	if o.Seasonal() && o.M < 2 {
		return fmt.Errorf("%w: seasonal order needs a period >= 2", ErrInvalidOrder)
	}
	if includeConstant && o.D+o.SD > 1 {
		return fmt.Errorf("%w: constant not allowed with d+D=%d", ErrInvalidOrder, o.D+o.SD)
	}
	return nil
}

// Model represents a seasonal ARIMA model estimated by conditional sum of
// squares. With MA sign convention theta(B) = 1 + theta_1 B + ..., the model is
//
//	phi(B) Phi(B^m) (w_t - mu) = theta(B) Theta(B^m) e_t,  w_t = (1-B)^d (1-B^m)^D y_t
type Model struct {
	Order           Order
	IncludeConstant bool
	ARCoeffs        []float64 // Non-seasonal AR coefficients
	MACoeffs        []float64 // Non-seasonal MA coefficients
	SARCoeffs       []float64 // Seasonal AR coefficients
	SMACoeffs       []float64 // Seasonal MA coefficients
	Constant        float64   // Mean of the differenced series (drift when d+D == 1)
	Variance        float64   // Residual variance SSE/n_eff
	AIC             float64
	AICc            float64 // Corrected AIC for small sample sizes
	BIC             float64
	LogLik          float64
	NObs            int // Differenced observations entering the likelihood

	// MaxEvaluations bounds the objective evaluations per optimiser pass.
	MaxEvaluations int

	fitted    bool
	data      *timeseries.Series
	diffData  []float64
	residuals []float64 // aligned with diffData, zero before ncond
	ncond     int
	phi       []float64 // expanded AR recursion coefficients
	theta     []float64 // expanded MA recursion coefficients
}

// New creates a non-seasonal ARIMA(p,d,q) model.
func New(p, d, q int) *Model {
	return NewSeasonal(p, d, q, 0, 0, 0, 0)
}

// NewSeasonal creates a SARIMA(p,d,q)(sp,sd,sq)[m] model.
func NewSeasonal(p, d, q, sp, sd, sq, m int) *Model {
	return NewFromOrder(Order{P: p, D: d, Q: q, SP: sp, SD: sd, SQ: sq, M: m}, false)
}

// NewFromOrder creates a model from an Order, optionally with a constant.
func NewFromOrder(order Order, includeConstant bool) *Model {
	return &Model{
		Order:           order,
		IncludeConstant: includeConstant,
		MaxEvaluations:  4000,
	}
}

// Fit fits the model to the given time series data.
func (m *Model) Fit(series *timeseries.Series) error {
	return m.FitContext(context.Background(), series)
}

// FitContext fits the model, aborting the optimiser when ctx is done.
func (m *Model) FitContext(ctx context.Context, series *timeseries.Series) error {
	o := m.Order
	if err := o.validate(m.IncludeConstant); err != nil {
		return err
	}

	diffs := o.D + o.SD*o.M
	if series.Len() <= diffs {
		return fmt.Errorf("%w: %d observations, %d lost to differencing", ErrInsufficientData, series.Len(), diffs)
	}

	w := applyDifferencing(series.Values, o)
	ncond := o.P + o.SP*o.M
	nParams := o.NumARMA() + 1
	if m.IncludeConstant {
		nParams++
	}
	if len(w)-ncond <= nParams+1 {
		return fmt.Errorf("%w: %d usable observations for %d parameters", ErrInsufficientData, len(w)-ncond, nParams)
	}

	scale := stat.StdDev(w, nil)
	if !(scale > 1e-12*math.Max(1, math.Abs(stat.Mean(w, nil)))) {
		return ErrDegenerate
	}

	x := make([]float64, len(w))
	for i, v := range w {
		x[i] = v / scale
	}

	params, err := m.estimate(ctx, x, ncond)
	if err != nil {
		return err
	}

	m.ARCoeffs, m.MACoeffs, m.SARCoeffs, m.SMACoeffs, m.Constant = m.unpack(params)
	m.Constant *= scale
	m.phi, m.theta = expandPolynomials(m.ARCoeffs, m.MACoeffs, m.SARCoeffs, m.SMACoeffs, o.M)

	m.data = series
	m.diffData = w
	m.ncond = ncond

	var sse float64
	m.residuals, sse = cssResiduals(w, m.Constant, m.phi, m.theta, ncond)
	m.NObs = len(w)
	m.Variance = sse / float64(len(w)-ncond)
	if !(m.Variance > 0) || math.IsInf(m.Variance, 0) {
		return ErrDegenerate
	}

	m.calculateIC(nParams)
	m.fitted = true
	return nil
}

// estimate minimises the CSS objective with Nelder-Mead, restarting once
// from the first solution.
func (m *Model) estimate(ctx context.Context, x []float64, ncond int) ([]float64, error) {
	x0 := m.initialParams(x)
	if len(x0) == 0 {
		return x0, nil
	}

	objective := m.objective(x, ncond)
	if objective(x0) >= infeasible {
		for i := range x0 {
			x0[i] = 0
		}
		if m.IncludeConstant {
			x0[len(x0)-1] = stat.Mean(x, nil)
		}
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

	best := x0
	bestF := objective(x0)
	for pass := 0; pass < 2; pass++ {
		settings := &optimize.Settings{
			FuncEvaluations: m.MaxEvaluations,
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-10,
				Iterations: 100,
			},
		}
		result, err := optimize.Minimize(problem, best, settings, &optimize.NelderMead{SimplexSize: 0.1})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if result == nil || math.IsNaN(result.F) || math.IsInf(result.F, 0) {
			if err != nil && pass == 0 {
				return nil, fmt.Errorf("%w: %v", ErrEstimation, err)
			}
			break
		}
		if result.F < bestF {
			best, bestF = result.X, result.F
		}
	}

	if bestF >= infeasible {
		return nil, fmt.Errorf("%w: no stationary and invertible starting point", ErrEstimation)
	}
	return best, nil
}

// infeasible is the objective value outside the stationary and invertible
// region.
const infeasible = 1e10

// objective returns 0.5*log(SSE/n_eff), or infeasible outside the stationary
// and invertible region.
func (m *Model) objective(x []float64, ncond int) func([]float64) float64 {
	neff := float64(len(x) - ncond)
	return func(params []float64) float64 {
		ar, ma, sar, sma, mu := m.unpack(params)
		if !isStationary(ar) || !isStationary(sar) || !isInvertible(ma) || !isInvertible(sma) {
			return infeasible
		}
		phi, theta := expandPolynomials(ar, ma, sar, sma, m.Order.M)
		_, sse := cssResiduals(x, mu, phi, theta, ncond)
		if !(sse > 0) || math.IsInf(sse, 0) {
			return infeasible
		}
		return 0.5 * math.Log(sse/neff)
	}
}

// initialParams starts AR terms from Yule-Walker and everything else at zero.
func (m *Model) initialParams(x []float64) []float64 {
	o := m.Order
	params := make([]float64, 0, o.NumARMA()+1)

	ar := make([]float64, o.P)
	if o.P > 0 {
		if acf := stats.ACF(timeseries.New(x), o.P); acf != nil {
			if yw := yuleWalker(acf, o.P); yw != nil && isStationary(yw) {
				ar = yw
			}
		}
	}
	params = append(params, ar...)
	params = append(params, make([]float64, o.Q+o.SP+o.SQ)...)
	if m.IncludeConstant {
		params = append(params, stat.Mean(x, nil))
	}
	return params
}

func (m *Model) unpack(params []float64) (ar, ma, sar, sma []float64, mu float64) {
	o := m.Order
	i := 0
	take := func(k int) []float64 {
		out := make([]float64, k)
		copy(out, params[i:i+k])
		i += k
		return out
	}
	ar = take(o.P)
	ma = take(o.Q)
	sar = take(o.SP)
	sma = take(o.SQ)
	if m.IncludeConstant {
		mu = params[i]
	}
	return ar, ma, sar, sma, mu
}

// cssResiduals runs the ARMA recursion on w - mu. Residuals before ncond are
// zero and excluded from the sum of squares.
func cssResiduals(w []float64, mu float64, phi, theta []float64, ncond int) ([]float64, float64) {
	n := len(w)
	resid := make([]float64, n)
	sse := 0.0
	for t := ncond; t < n; t++ {
		e := w[t] - mu
		for i, c := range phi {
			if t-i-1 < 0 {
				break
			}
			e -= c * (w[t-i-1] - mu)
		}
		for j, c := range theta {
			if t-j-1 < 0 {
				break
			}
			e -= c * resid[t-j-1]
		}
		resid[t] = e
		sse += e * e
	}
	return resid, sse
}

// calculateIC calculates the Gaussian log-likelihood, AIC, AICc, and BIC.
// The likelihood counts every differenced observation, so candidates with
// the same differencing share n whatever their AR orders.
func (m *Model) calculateIC(nParams int) {
	n := float64(m.NObs)
	m.LogLik = -n / 2 * (math.Log(2*math.Pi*m.Variance) + 1)

	ic := stats.CalculateIC(m.LogLik, m.NObs, nParams)
	m.AIC = ic.AIC
	m.AICc = ic.AICc
	m.BIC = ic.BIC
}

// NumParams is the number of estimated parameters including the variance.
func (m *Model) NumParams() int {
	k := m.Order.NumARMA() + 1
	if m.IncludeConstant {
		k++
	}
	return k
}

// Residuals returns the one-step residuals aligned to the training periods,
// excluding the conditioning observations.
func (m *Model) Residuals() *timeseries.Series {
	if !m.fitted {
		return nil
	}
	offset := m.Order.D + m.Order.SD*m.Order.M + m.ncond
	values := make([]float64, len(m.residuals)-m.ncond)
	copy(values, m.residuals[m.ncond:])
	return &timeseries.Series{Start: m.data.Start.Add(offset), Values: values, Name: "residuals"}
}

// FittedValues returns the one-step in-sample predictions on the original
// scale, over the same periods as Residuals.
func (m *Model) FittedValues() *timeseries.Series {
	resid := m.Residuals()
	if resid == nil {
		return nil
	}
	offset := m.data.IndexOf(resid.Start)
	values := make([]float64, resid.Len())
	for i, e := range resid.Values {
		values[i] = m.data.Values[offset+i] - e
	}
	return &timeseries.Series{Start: resid.Start, Values: values, Name: "fitted"}
}

// Summary holds the estimated coefficients and fit statistics.
type Summary struct {
	Order     Order     `json:"order"`
	Constant  bool      `json:"constant"`
	ARCoeffs  []float64 `json:"ar"`
	MACoeffs  []float64 `json:"ma"`
	SARCoeffs []float64 `json:"sar"`
	SMACoeffs []float64 `json:"sma"`
	Mean      float64   `json:"mean"`
	Variance  float64   `json:"sigma2"`
	AIC       float64   `json:"aic"`
	AICc      float64   `json:"aicc"` // Corrected AIC
	BIC       float64   `json:"bic"`
	LogLik    float64   `json:"log_lik"`
	NObs      int       `json:"n_obs"`
}

// Summary returns a summary of the fitted model.
func (m *Model) Summary() *Summary {
	if !m.fitted {
		return nil
	}

	return &Summary{
		Order:     m.Order,
		Constant:  m.IncludeConstant,
		ARCoeffs:  m.ARCoeffs,
		MACoeffs:  m.MACoeffs,
		SARCoeffs: m.SARCoeffs,
		SMACoeffs: m.SMACoeffs,
		Mean:      m.Constant,
		Variance:  m.Variance,
		AIC:       m.AIC,
		AICc:      m.AICc,
		BIC:       m.BIC,
		LogLik:    m.LogLik,
		NObs:      m.NObs,
	}
}

// yuleWalker estimates AR coefficients using Yule-Walker equations solved
// by the Levinson-Durbin recursion.
func yuleWalker(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}

	phi := make([]float64, order)
	phi[0] = acf[1]
	if order == 1 {
		return phi
	}

	v := 1 - phi[0]*phi[0]
	for i := 1; i < order; i++ {
		if v <= 0 {
			break
		}
		lambda := acf[i+1]
		for j := 0; j < i; j++ {
			lambda -= phi[j] * acf[i-j]
		}
		lambda /= v

		next := make([]float64, i+1)
		for j := 0; j < i; j++ {
			next[j] = phi[j] - lambda*phi[i-1-j]
		}
		next[i] = lambda
		copy(phi, next)

		v *= 1 - lambda*lambda
	}

	return phi
}
