package arima

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/paxcast/timeseries"
)

// Interval is a symmetric prediction interval at Level percent.
type Interval struct {
	Level float64
	Lower []float64
	Upper []float64
}

// Forecast holds point forecasts, their standard errors and intervals for
// the periods following the training data.
type Forecast struct {
	Start     timeseries.Month
	Mean      []float64
	StdErr    []float64
	Intervals []Interval
}

// Predict generates point forecasts for the specified number of steps ahead.
func (m *Model) Predict(steps int) ([]float64, error) {
	fc, err := m.Forecast(steps, nil)
	if err != nil {
		return nil, err
	}
	return fc.Mean, nil
}

// Forecast runs the ARMA recursion on the differenced scale, integrates the
// result back through the differencing polynomial and derives intervals
// from the psi-weights of the integrated model. levels are percentages.
func (m *Model) Forecast(steps int, levels []float64) (*Forecast, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, errors.New("arima: steps must be at least 1")
	}

	n := len(m.diffData)

	// Differenced scale.
	x := make([]float64, n+steps)
	for i, v := range m.diffData {
		x[i] = v - m.Constant
	}
	e := make([]float64, n+steps)
	copy(e, m.residuals)

	for t := n; t < n+steps; t++ {
		pred := 0.0
		for i, c := range m.phi {
			if t-i-1 < 0 {
				break
			}
			pred += c * x[t-i-1]
		}
		for j, c := range m.theta {
			if t-j-1 < 0 {
				break
			}
			pred += c * e[t-j-1]
		}
		x[t] = pred
	}

	// Integrate: y_t = w_t - sum_{i>=1} delta_i y_{t-i}.
	delta := differencingPolynomial(m.Order)
	history := m.data.Values
	y := make([]float64, len(history)+steps)
	copy(y, history)
	for h := 0; h < steps; h++ {
		t := len(history) + h
		v := x[n+h] + m.Constant
		for i := 1; i < len(delta); i++ {
			v -= delta[i] * y[t-i]
		}
		y[t] = v
	}

	fc := &Forecast{
		Start:  m.data.End().Add(1),
		Mean:   append([]float64(nil), y[len(history):]...),
		StdErr: make([]float64, steps),
	}

	psi := psiWeights(m.phi, m.theta, delta, steps)
	cum := 0.0
	for h := 0; h < steps; h++ {
		cum += psi[h] * psi[h]
		fc.StdErr[h] = math.Sqrt(m.Variance * cum)
	}

	for _, level := range levels {
		z := distuv.UnitNormal.Quantile(0.5 + level/200)
		iv := Interval{Level: level, Lower: make([]float64, steps), Upper: make([]float64, steps)}
		for h := 0; h < steps; h++ {
			iv.Lower[h] = fc.Mean[h] - z*fc.StdErr[h]
			iv.Upper[h] = fc.Mean[h] + z*fc.StdErr[h]
		}
		fc.Intervals = append(fc.Intervals, iv)
	}

	return fc, nil
}
