package diagnostics

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/sartorproj/paxcast/model"
	"github.com/sartorproj/paxcast/timeseries"
)

type residualModel struct {
	residuals *timeseries.Series
	armaDF    int
}

func (r *residualModel) Name() string                      { return "stub" }
func (r *residualModel) Describe() string                  { return "ARIMA(1,0,1)" }
func (r *residualModel) Family() model.Family              { return model.FamilyARIMA }
func (r *residualModel) Criteria() model.Criteria          { return model.Criteria{} }
func (r *residualModel) Coefficients() []model.Coefficient { return nil }
func (r *residualModel) FittedValues() *timeseries.Series  { return nil }
func (r *residualModel) Residuals() *timeseries.Series     { return r.residuals }
func (r *residualModel) NumARMAParams() int                { return r.armaDF }
func (r *residualModel) Forecast(int, []float64) (*model.Forecast, error) {
	return nil, errors.New("not implemented")
}

func normal(seed uint64, n int) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed+17))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}

func series(values []float64) *timeseries.Series {
	return timeseries.NewMonthly(timeseries.NewMonth(2010, time.January), values)
}

func TestCheckWhiteNoise(t *testing.T) {
	f := &residualModel{residuals: series(normal(1, 200)), armaDF: 2}

	r, err := Check(f, 10)
	require.NoError(t, err)

	require.NotNil(t, r.LjungBox)
	t.Logf("Q=%.3f p=%.3f DW=%.3f", r.LjungBox.Statistic, r.LjungBox.PValue, r.DurbinWatson.Statistic)

	assert.Equal(t, 10, r.LjungBox.Lags)
	assert.Equal(t, 8, r.LjungBox.DOF)
	assert.Equal(t, 8, r.BoxPierce.DOF)
	assert.Greater(t, r.LjungBox.PValue, 0.001)
	assert.Equal(t, r.LjungBox.PValue > Significance, r.White)
	assert.LessOrEqual(t, r.BoxPierce.Statistic, r.LjungBox.Statistic)

	assert.InDelta(t, 2, r.DurbinWatson.Statistic, 0.5)
	require.NotNil(t, r.ACF)
	assert.Len(t, r.ACF.Values, 11)
	assert.InDelta(t, 1.96/14.142, r.ACF.ConfBounds, 1e-3)

	assert.Equal(t, 200.0, floats.Sum(r.Histogram.Counts))
	assert.Len(t, r.Histogram.Edges, len(r.Histogram.Counts)+1)
	assert.Equal(t, "stub", r.Model)
	assert.Equal(t, 2, r.FitDF)
}

func TestCheckAutocorrelatedResiduals(t *testing.T) {
	e := normal(2, 200)
	values := make([]float64, len(e))
	for i := range values {
		values[i] = e[i]
		if i > 0 {
			values[i] += 0.8 * values[i-1]
		}
	}

	r, err := Check(&residualModel{residuals: series(values)}, 24)
	require.NoError(t, err)

	assert.False(t, r.White)
	assert.Less(t, r.LjungBox.PValue, 0.001)
	assert.Less(t, r.DurbinWatson.Statistic, 1.0)
	assert.Contains(t, r.SignificantLags, 1)
}

func TestCheckErrors(t *testing.T) {
	_, err := Check(&residualModel{residuals: series(normal(1, 50))}, 0)
	assert.ErrorIs(t, err, ErrInvalidLag)

	_, err = Check(&residualModel{residuals: series([]float64{1, 2})}, 10)
	assert.ErrorIs(t, err, ErrNoResiduals)

	_, err = Check(&residualModel{}, 10)
	assert.ErrorIs(t, err, ErrNoResiduals)
}

func TestCheckConstantResiduals(t *testing.T) {
	values := make([]float64, 30)
	r, err := Check(&residualModel{residuals: series(values)}, 10)
	require.NoError(t, err)

	assert.Nil(t, r.LjungBox)
	assert.Nil(t, r.DurbinWatson)
	assert.Nil(t, r.Normality)
	assert.False(t, r.White)
	assert.Equal(t, []float64{30}, r.Histogram.Counts)
}

func TestNewHistogram(t *testing.T) {
	values := []float64{9, 0, 1, 2, 3, 4, 5, 6, 7, 8}

	h := NewHistogram(values, 5)
	assert.Equal(t, []float64{2, 2, 2, 2, 2}, h.Counts)
	assert.InDelta(t, 1.8, h.Edges[1], 1e-12)
	assert.Greater(t, h.Edges[5], 9.0)

	sturges := NewHistogram(values, 0)
	assert.Len(t, sturges.Counts, 5)

	assert.Empty(t, NewHistogram(nil, 3).Counts)
}

func TestJarqueBera(t *testing.T) {
	skewed := normal(3, 500)
	for i, v := range skewed {
		skewed[i] = v * v
	}
	jb := JarqueBera(skewed)
	require.NotNil(t, jb)
	assert.Greater(t, jb.Skewness, 1.0)
	assert.Less(t, jb.PValue, 0.01)

	assert.Nil(t, JarqueBera([]float64{1, 1, 1, 1}))
}
