package autoarima

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/paxcast/arima"
	"github.com/sartorproj/paxcast/timeseries"
)

func noise(seed uint64, n int, sd float64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed+7))
	out := make([]float64, n)
	for i := range out {
		out[i] = sd * rng.NormFloat64()
	}
	return out
}

func ar1Series(n int, phi float64) *timeseries.Series {
	e := noise(1, n, 1)
	values := make([]float64, n)
	values[0] = 100
	for i := 1; i < n; i++ {
		values[i] = 100 + phi*(values[i-1]-100) + e[i]
	}
	return timeseries.New(values)
}

// seasonalSeries has a trend, a fixed monthly pattern and airline-model noise.
func seasonalSeries(n int) *timeseries.Series {
	e := noise(42, n, 1000)
	z := make([]float64, n)
	for t := 0; t < n; t++ {
		w := e[t]
		if t >= 1 {
			w += -0.4 * e[t-1]
		}
		if t >= 12 {
			w += -0.6 * e[t-12]
		}
		if t >= 13 {
			w += 0.24 * e[t-13]
		}
		z[t] = w
		if t >= 1 {
			z[t] += z[t-1]
		}
		if t >= 12 {
			z[t] += z[t-12]
		}
		if t >= 13 {
			z[t] -= z[t-13]
		}
	}

	values := make([]float64, n)
	for t := range values {
		season := 200_000 * math.Sin(2*math.Pi*float64(t)/12)
		values[t] = 3_000_000 + 10_000*float64(t) + season + z[t]
	}
	return timeseries.NewMonthly(timeseries.NewMonth(2005, time.July), values)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 5, config.MaxP)
	assert.Equal(t, 2, config.MaxD)
	assert.Equal(t, 5, config.MaxQ)
	assert.Equal(t, 6, config.MaxOrder)
	assert.Equal(t, 94, config.MaxModels)
	assert.Equal(t, "aicc", config.Criterion)
	assert.True(t, config.Stepwise)
}

func TestAutoARIMAStationary(t *testing.T) {
	config := DefaultConfig()
	config.MaxP = 3
	config.MaxQ = 3

	result, err := AutoARIMA(context.Background(), ar1Series(200, 0.6), config)
	require.NoError(t, err)
	require.NotNil(t, result.Model)

	t.Logf("Selected model: %s constant=%v", result.Order, result.IncludeConstant)
	t.Logf("AICc: %f, Models evaluated: %d", result.AICc, result.ModelsEvaluated)

	assert.Equal(t, result.AICc, result.Criterion)
	assert.Len(t, result.Candidates, result.ModelsEvaluated)
	assert.LessOrEqual(t, result.ModelsEvaluated, config.MaxModels)
	assert.False(t, result.Order.Seasonal())

	for _, c := range result.Candidates {
		if c.Err == nil {
			assert.GreaterOrEqual(t, c.Criterion, result.Criterion, c.String())
		}
	}
}

func TestAutoARIMASeasonal(t *testing.T) {
	series := seasonalSeries(180)

	config := DefaultConfig()
	config.Seasonal = true
	config.SeasonalM = 12

	var mu sync.Mutex
	traced := 0
	config.Trace = func(Candidate) {
		mu.Lock()
		traced++
		mu.Unlock()
	}

	result, err := AutoARIMA(context.Background(), series, config)
	require.NoError(t, err)

	t.Logf("Selected model: %s, AICc %.2f, %d models", result.Order, result.AICc, result.ModelsEvaluated)

	assert.Equal(t, 1, result.Order.SD)
	assert.Equal(t, 1, result.Order.D)
	assert.Equal(t, 12, result.Order.M)
	assert.False(t, result.IncludeConstant, "no constant with d+D = 2")
	assert.Equal(t, result.ModelsEvaluated, traced)

	// Airline noise: seasonal AR terms must not win by conditioning away
	// observations.
	assert.LessOrEqual(t, result.Order.P+result.Order.SP, 2, result.Order.String())
	assert.Positive(t, result.Order.Q+result.Order.SQ, result.Order.String())
	assert.Equal(t, 180-13, result.Model.NObs)

	ncond := result.Order.P + result.Order.SP*12
	resid := result.Residuals()
	require.NotNil(t, resid)
	assert.Equal(t, 167-ncond, resid.Len())
	assert.Equal(t, series.End(), resid.End())

	first := result.Candidates[0]
	assert.Equal(t, arima.Order{P: 2, D: 1, Q: 2, SP: 1, SD: 1, SQ: 1, M: 12}, first.Order)

	forecasts, err := result.Predict(24)
	require.NoError(t, err)
	assert.Len(t, forecasts, 24)
	for i, f := range forecasts {
		assert.False(t, math.IsNaN(f) || math.IsInf(f, 0), "forecast %d", i)
	}
}

func TestAutoARIMAExhaustive(t *testing.T) {
	series := ar1Series(150, 0.6)

	config := DefaultConfig()
	config.MaxP = 2
	config.MaxQ = 2
	config.Stepwise = false
	config.Workers = 4

	result, err := AutoARIMA(context.Background(), series, config)
	require.NoError(t, err)

	first := result.Candidates[0]
	assert.Equal(t, 0, first.Order.P)
	assert.Equal(t, 0, first.Order.Q)
	assert.False(t, first.Constant)

	for _, c := range result.Candidates {
		assert.LessOrEqual(t, c.Order.P+c.Order.Q, 4)
		if c.Err == nil {
			assert.GreaterOrEqual(t, c.Criterion, result.Criterion)
		}
	}

	again, err := AutoARIMA(context.Background(), series, config)
	require.NoError(t, err)
	assert.Equal(t, result.Order, again.Order)
	assert.Equal(t, result.IncludeConstant, again.IncludeConstant)
	assert.Equal(t, result.Criterion, again.Criterion)
}

func TestAutoARIMACriterion(t *testing.T) {
	config := DefaultConfig()
	config.MaxP = 2
	config.MaxQ = 2
	config.Criterion = "bic"

	result, err := AutoARIMA(context.Background(), ar1Series(150, 0.5), config)
	require.NoError(t, err)
	assert.Equal(t, result.BIC, result.Criterion)
}

func TestAutoARIMAConstantSeries(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 42
	}

	_, err := AutoARIMA(context.Background(), timeseries.New(values), nil)
	assert.ErrorIs(t, err, ErrNoModel)
	assert.ErrorContains(t, err, "zero variance")
}

func TestAutoARIMACancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AutoARIMA(ctx, ar1Series(100, 0.5), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNeighbours(t *testing.T) {
	s := &searcher{seasonal: true}
	n := s.neighbours(key{p: 1, q: 1, sp: 1, sq: 1})
	assert.Len(t, n, 17)
	assert.Equal(t, key{p: 1, q: 1, sp: 1, sq: 1, constant: true}, n[len(n)-1])

	s.seasonal = false
	assert.Len(t, s.neighbours(key{p: 1, q: 1}), 9)
}
