package ets

import (
	"errors"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/paxcast/timeseries"
)

const (
	// SimulationSeed seeds the PCG generator used for simulated prediction
	// intervals, so repeated runs produce identical intervals.
	SimulationSeed uint64 = 0x5eed_e75

	// SimulationPaths is the number of sample paths for simulated intervals.
	SimulationPaths = 5000
)

// Interval is a prediction interval at Level percent.
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
	Simulated bool
}

// Predict generates point forecasts for the specified number of steps ahead.
func (m *Model) Predict(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, errors.New("ets: steps must be at least 1")
	}
	return m.pointForecast(steps), nil
}

// Forecast returns point forecasts and intervals at the given levels
// (percentages). Linear models use the analytic variance; the others use
// SimulationPaths simulated sample paths and empirical quantiles.
func (m *Model) Forecast(steps int, levels []float64) (*Forecast, error) {
	mean, err := m.Predict(steps)
	if err != nil {
		return nil, err
	}

	fc := &Forecast{
		Start: m.data.End().Add(1),
		Mean:  mean,
	}

	if m.Spec.linear() {
		fc.StdErr = m.analyticStdErr(steps)
		for _, level := range levels {
			z := distuv.UnitNormal.Quantile(0.5 + level/200)
			iv := Interval{Level: level, Lower: make([]float64, steps), Upper: make([]float64, steps)}
			for h := range mean {
				iv.Lower[h] = mean[h] - z*fc.StdErr[h]
				iv.Upper[h] = mean[h] + z*fc.StdErr[h]
			}
			fc.Intervals = append(fc.Intervals, iv)
		}
		return fc, nil
	}

	paths := m.simulate(steps)
	fc.Simulated = true
	fc.StdErr = make([]float64, steps)
	for h, col := range paths {
		fc.StdErr[h] = stat.StdDev(col, nil)
		sort.Float64s(col)
	}
	for _, level := range levels {
		lo := 0.5 - level/200
		hi := 0.5 + level/200
		iv := Interval{Level: level, Lower: make([]float64, steps), Upper: make([]float64, steps)}
		for h, col := range paths {
			iv.Lower[h] = stat.Quantile(lo, stat.Empirical, col, nil)
			iv.Upper[h] = stat.Quantile(hi, stat.Empirical, col, nil)
		}
		fc.Intervals = append(fc.Intervals, iv)
	}
	return fc, nil
}

// pointForecast iterates the recursions with zero innovations.
func (m *Model) pointForecast(steps int) []float64 {
	sm := m.smoothing()
	st := m.final.clone()
	n := m.NObs
	out := make([]float64, steps)
	for h := range out {
		pred, lb, s := sm.predict(&st, n+h)
		out[h] = pred
		sm.update(&st, n+h, pred, lb, s)
	}
	return out
}

// analyticStdErr uses v_h = sigma^2 (1 + sum_{j<h} c_j^2) with
// c_j = alpha + beta*(phi + ... + phi^j) + gamma*[j mod m == 0].
func (m *Model) analyticStdErr(steps int) []float64 {
	out := make([]float64, steps)
	sum := 1.0
	phiSum := 0.0
	phiPow := 1.0
	for h := 0; h < steps; h++ {
		out[h] = math.Sqrt(m.Variance * sum)

		j := h + 1
		c := m.Alpha
		if m.Spec.Trend != None {
			phiPow *= m.Phi
			phiSum += phiPow
			c += m.Beta * phiSum
		}
		if m.Spec.Season != None && j%m.Spec.Period == 0 {
			c += m.Gamma
		}
		sum += c * c
	}
	return out
}

// simulate draws SimulationPaths future sample paths; paths[h] holds the
// draws for step h+1.
func (m *Model) simulate(steps int) [][]float64 {
	sm := m.smoothing()
	sd := math.Sqrt(m.Variance)
	rng := rand.New(rand.NewPCG(SimulationSeed, SimulationSeed^0x9e3779b97f4a7c15))

	paths := make([][]float64, steps)
	for h := range paths {
		paths[h] = make([]float64, SimulationPaths)
	}

	n := m.NObs
	for p := 0; p < SimulationPaths; p++ {
		st := m.final.clone()
		for h := 0; h < steps; h++ {
			pred, lb, s := sm.predict(&st, n+h)
			e := sd * rng.NormFloat64()
			y := pred + e
			if m.Spec.Error == Multiplicative {
				y = pred * (1 + e)
			}
			if math.IsNaN(y) || math.IsInf(y, 0) {
				y = pred
			}
			paths[h][p] = y
			if sm.spec.Season == Multiplicative && (lb <= 0 || s <= 0) {
				continue
			}
			sm.update(&st, n+h, y, lb, s)
		}
	}
	return paths
}

func (m *Model) smoothing() smoothing {
	return smoothing{spec: m.Spec, alpha: m.Alpha, beta: m.Beta, gamma: m.Gamma, phi: m.Phi}
}
