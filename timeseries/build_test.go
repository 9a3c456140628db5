package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlyPoints(start Month, values ...float64) []MonthlyPoint {
	points := make([]MonthlyPoint, len(values))
	for i, v := range values {
		points[i] = MonthlyPoint{Period: start.Add(i), Value: v}
	}
	return points
}

func TestFromMonthly(t *testing.T) {
	start := NewMonth(2005, time.July)
	points := monthlyPoints(start, 10, 20, 30, 40)

	// Shuffle order; the builder sorts.
	points[0], points[3] = points[3], points[0]

	s, err := FromMonthly(points)
	require.NoError(t, err)

	assert.Equal(t, start, s.Start)
	assert.Equal(t, []float64{10, 20, 30, 40}, s.Values)
}

func TestFromMonthlyGap(t *testing.T) {
	start := NewMonth(2005, time.July)
	points := monthlyPoints(start, 10, 20, 30, 40)
	points = append(points[:2], points[3:]...)

	_, err := FromMonthly(points)
	assert.ErrorIs(t, err, ErrGap)
	assert.ErrorIs(t, err, ErrNotContiguous)
}

func TestFromMonthlyDuplicate(t *testing.T) {
	start := NewMonth(2005, time.July)
	points := monthlyPoints(start, 10, 20, 30)
	points = append(points, MonthlyPoint{Period: start.Add(1), Value: 25})

	_, err := FromMonthly(points)
	assert.ErrorIs(t, err, ErrDuplicatePeriod)
	assert.ErrorIs(t, err, ErrNotContiguous)
}

func TestFromMonthlyEmpty(t *testing.T) {
	_, err := FromMonthly(nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestFromMonthlyIdempotent(t *testing.T) {
	start := NewMonth(2010, time.January)
	points := monthlyPoints(start, 3, 1, 4, 1, 5, 9, 2, 6)

	a, err := FromMonthly(points)
	require.NoError(t, err)
	b, err := FromMonthly(points)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSplit(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	s := NewMonthly(NewMonth(2005, time.July), values)

	train, test, err := Split(s, 12)
	require.NoError(t, err)

	assert.Equal(t, 88, train.Len())
	assert.Equal(t, 12, test.Len())
	assert.Equal(t, s.Len(), train.Len()+test.Len())
	assert.Equal(t, train.End().Add(1), test.Start, "train must immediately precede test")
	assert.Equal(t, s.End(), test.End())
	assert.Equal(t, 88.0, test.Values[0])
}

func TestSplitHoldoutTooLarge(t *testing.T) {
	s := New(make([]float64, 12))

	_, _, err := Split(s, 12)
	assert.ErrorIs(t, err, ErrHoldoutTooLarge)

	_, _, err = Split(s, 0)
	assert.ErrorIs(t, err, ErrHoldoutTooLarge)
}
