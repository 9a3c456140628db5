package stats

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/paxcast/timeseries"
)

func gaussianNoise(seed uint64, n int) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}

func ar1(seed uint64, n int, phi float64) []float64 {
	eps := gaussianNoise(seed, n)
	values := make([]float64, n)
	for i := 1; i < n; i++ {
		values[i] = phi*values[i-1] + eps[i]
	}
	return values
}

func TestACF(t *testing.T) {
	series := timeseries.New(ar1(1, 200, 0.8))
	acf := ACF(series, 10)
	require.Len(t, acf, 11)

	assert.InDelta(t, 1.0, acf[0], 1e-12)
	assert.Greater(t, acf[1], 0.5, "AR(1) with phi=0.8 should have strong lag-1 correlation")
	assert.Greater(t, acf[1], acf[5])
}

func TestACFConstantSeries(t *testing.T) {
	series := timeseries.New([]float64{5, 5, 5, 5, 5})
	assert.Nil(t, ACF(series, 3))
	assert.Nil(t, PACF(series, 3))
}

func TestPACF(t *testing.T) {
	series := timeseries.New(ar1(2, 300, 0.7))
	pacf := PACF(series, 10)
	require.Len(t, pacf, 11)

	assert.InDelta(t, 1.0, pacf[0], 1e-12)
	assert.InDelta(t, 0.7, pacf[1], 0.15)

	acf := ACF(series, 1)
	assert.InDelta(t, acf[1], pacf[1], 1e-12, "PACF at lag 1 equals ACF at lag 1")
}

func TestACFWithConfidence(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i) + math.Sin(float64(i)/10)
	}

	result := ACFWithConfidence(timeseries.New(values), 20)
	require.NotNil(t, result)

	assert.InDelta(t, 1.96/math.Sqrt(100), result.ConfBounds, 1e-12)
	assert.Len(t, result.Lags, 21)
	assert.Equal(t, 20, result.Lags[20])
}

func TestSignificantLags(t *testing.T) {
	values := []float64{1.0, 0.5, 0.3, 0.1, 0.05, -0.2, -0.5}
	assert.Equal(t, []int{1, 2, 5, 6}, SignificantLags(values, 0.15))
}

func TestADF(t *testing.T) {
	t.Run("white noise is stationary", func(t *testing.T) {
		result := ADF(timeseries.New(gaussianNoise(3, 200)), 0)
		require.NotNil(t, result)
		t.Logf("ADF Statistic: %f, P-Value: %f", result.Statistic, result.PValue)

		assert.True(t, result.IsStationary)
		assert.Less(t, result.PValue, 0.01)
		assert.Equal(t, 5, result.Lags)
	})

	t.Run("random walk", func(t *testing.T) {
		eps := gaussianNoise(4, 200)
		walk := make([]float64, len(eps))
		for i := 1; i < len(eps); i++ {
			walk[i] = walk[i-1] + eps[i]
		}
		result := ADF(timeseries.New(walk), 0)
		require.NotNil(t, result)
		t.Logf("ADF Random walk - Statistic: %f, P-Value: %f", result.Statistic, result.PValue)

		assert.GreaterOrEqual(t, result.PValue, 0.0)
		assert.LessOrEqual(t, result.PValue, 1.0)
	})

	t.Run("too short", func(t *testing.T) {
		assert.Nil(t, ADF(timeseries.New([]float64{1, 2, 3}), 0))
	})
}

func TestMacKinnonPValue(t *testing.T) {
	assert.InDelta(t, 0.05, mackinnonPValue(-2.86), 0.005)
	assert.Equal(t, 1.0, mackinnonPValue(3))
	assert.Equal(t, 0.0, mackinnonPValue(-20))

	prev := 0.0
	for stat := -6.0; stat <= 2.5; stat += 0.25 {
		p := mackinnonPValue(stat)
		assert.GreaterOrEqual(t, p, prev, "p-value should increase with the statistic (stat=%.2f)", stat)
		prev = p
	}
}

func TestKPSS(t *testing.T) {
	t.Run("short cycle is stationary", func(t *testing.T) {
		values := make([]float64, 200)
		for i := range values {
			values[i] = float64(i%7 - 3)
		}
		result := KPSS(timeseries.New(values), "c", 0)
		require.NotNil(t, result)
		t.Logf("KPSS Stationary - Statistic: %f, P-Value: %f", result.Statistic, result.PValue)

		assert.True(t, result.IsStationary)
		assert.Equal(t, 0.10, result.PValue)
	})

	t.Run("trend is not level stationary", func(t *testing.T) {
		values := make([]float64, 100)
		for i := range values {
			values[i] = float64(i) * 0.5
		}
		result := KPSS(timeseries.New(values), "c", 0)
		require.NotNil(t, result)
		t.Logf("KPSS Non-Stationary - Statistic: %f, P-Value: %f", result.Statistic, result.PValue)

		assert.False(t, result.IsStationary)
		assert.Equal(t, 0.01, result.PValue)
	})

	t.Run("trend regression", func(t *testing.T) {
		values := make([]float64, 100)
		for i := range values {
			values[i] = float64(i)*0.5 + float64(i%7-3)
		}
		result := KPSS(timeseries.New(values), "ct", 0)
		require.NotNil(t, result)
		assert.True(t, result.IsStationary)
		assert.Contains(t, result.CriticalVals, "5%")
		assert.Equal(t, 0.146, result.CriticalVals["5%"])
	})
}

func TestKPSSPValueInterpolation(t *testing.T) {
	tests := []struct {
		stat     float64
		expected float64
	}{
		{0.1, 0.10},
		{0.347, 0.10},
		{0.405, 0.075},
		{0.463, 0.05},
		{0.739, 0.01},
		{5, 0.01},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.expected, kpssPValue(tt.stat, "c"), 1e-9, "stat=%v", tt.stat)
	}
}

func TestPhillipsPerron(t *testing.T) {
	result := PhillipsPerron(timeseries.New(gaussianNoise(5, 200)), 0)
	require.NotNil(t, result)
	t.Logf("PP Stationary - Statistic: %f, P-Value: %f", result.Statistic, result.PValue)

	assert.True(t, result.IsStationary)
	assert.Equal(t, "pp", result.Test)
}

func TestLjungBox(t *testing.T) {
	noise := LjungBox(timeseries.New(gaussianNoise(6, 200)), 10, 0)
	require.NotNil(t, noise)
	t.Logf("Ljung-Box - Q: %f, P-Value: %f, DOF: %d", noise.Statistic, noise.PValue, noise.DOF)

	autocorrelated := LjungBox(timeseries.New(ar1(6, 200, 0.9)), 10, 0)
	require.NotNil(t, autocorrelated)
	t.Logf("Ljung-Box Autocorrelated - Q: %f, P-Value: %f", autocorrelated.Statistic, autocorrelated.PValue)

	assert.Less(t, autocorrelated.PValue, 1e-6)
	assert.Greater(t, autocorrelated.Statistic, noise.Statistic)
	assert.GreaterOrEqual(t, noise.PValue, 0.0)
	assert.LessOrEqual(t, noise.PValue, 1.0)
}

func TestLjungBoxDegreesOfFreedom(t *testing.T) {
	series := timeseries.New(gaussianNoise(7, 100))

	tests := []struct {
		name  string
		lags  int
		fitdf int
		dof   int
	}{
		{"no fitted params", 10, 0, 10},
		{"airline model", 24, 2, 22},
		{"floored at one", 10, 12, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LjungBox(series, tt.lags, tt.fitdf)
			require.NotNil(t, result)
			assert.Equal(t, tt.dof, result.DOF)
			assert.Equal(t, tt.lags, result.Lags)
		})
	}

	assert.Nil(t, LjungBox(timeseries.New([]float64{1, 2, 3}), 5, 0))
}

func TestBoxPierce(t *testing.T) {
	series := timeseries.New(gaussianNoise(8, 100))
	bp := BoxPierce(series, 10, 0)
	lb := LjungBox(series, 10, 0)
	require.NotNil(t, bp)
	require.NotNil(t, lb)

	assert.Less(t, bp.Statistic, lb.Statistic, "Ljung-Box weights inflate the Box-Pierce statistic")
}

func TestDurbinWatson(t *testing.T) {
	tests := []struct {
		name      string
		residuals []float64
		expected  float64
	}{
		{"alternating", []float64{1, -1, 1, -1, 1, -1, 1, -1}, 3.5},
		{"positive autocorrelation", []float64{1, 1, 1, 1, -1, -1, -1, -1}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DurbinWatson(tt.residuals)
			require.NotNil(t, result)
			assert.InDelta(t, tt.expected, result.Statistic, 1e-12)
		})
	}

	assert.Nil(t, DurbinWatson([]float64{0, 0, 0}))
}

func TestDecompose(t *testing.T) {
	n := 120
	period := 12
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		trend := float64(i) * 0.5
		seasonal := 10 * math.Sin(2*math.Pi*float64(i%period)/float64(period))
		noise := float64(i%5-2) / 5
		values[i] = trend + seasonal + noise
	}

	series := timeseries.New(values)
	result := Decompose(series, period, "additive")
	require.NotNil(t, result)

	assert.Equal(t, n, result.Trend.Len())
	assert.Equal(t, n, result.Seasonal.Len())
	assert.Equal(t, n, result.Residual.Len())
	assert.True(t, math.IsNaN(result.Trend.Values[0]))

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += result.Seasonal.Values[i]
	}
	assert.InDelta(t, 0, sum, 1e-9, "additive seasonal pattern sums to zero")

	for i := period; i < n-period; i++ {
		reconstructed := result.Trend.Values[i] + result.Seasonal.Values[i] + result.Residual.Values[i]
		assert.InDelta(t, series.Values[i], reconstructed, 1e-9)
	}

	assert.InDelta(t, 10*math.Sin(2*math.Pi*3/12), result.Seasonal.Values[3], 0.5)
}

func TestDecomposeMultiplicative(t *testing.T) {
	values := make([]float64, 96)
	for i := range values {
		values[i] = (100 + float64(i)) * (1 + 0.2*math.Sin(2*math.Pi*float64(i)/12))
	}

	result := Decompose(timeseries.New(values), 12, "multiplicative")
	require.NotNil(t, result)
	assert.Equal(t, "multiplicative", result.Type)

	sum := 0.0
	for i := 0; i < 12; i++ {
		sum += result.Seasonal.Values[i]
	}
	assert.InDelta(t, 12, sum, 1e-9, "multiplicative indices average one")

	assert.Nil(t, Decompose(timeseries.New(values[:20]), 12, "additive"))
}
