// Package timeseries provides the monthly series type and its builders.
package timeseries

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Series is a regular monthly time series. The i-th value belongs to
// Start.Add(i), so periods are strictly increasing and gap-free.
type Series struct {
	Start  Month
	Values []float64
	Name   string
}

// New creates a series from values with a zero start month. It is mostly
// useful for statistics that do not care about calendar alignment.
func New(values []float64) *Series {
	return &Series{Values: values}
}

// NewMonthly creates a series starting at start.
func NewMonthly(start Month, values []float64) *Series {
	return &Series{Start: start, Values: values}
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// End returns the last period of the series. For an empty series it is the
// month before Start.
func (s *Series) End() Month {
	return s.Start.Add(len(s.Values) - 1)
}

// PeriodAt returns the period of the i-th observation.
func (s *Series) PeriodAt(i int) Month {
	return s.Start.Add(i)
}

// Periods returns all periods of the series in order.
func (s *Series) Periods() []Month {
	out := make([]Month, len(s.Values))
	for i := range out {
		out[i] = s.Start.Add(i)
	}
	return out
}

// IndexOf returns the position of period m, or -1 if m is outside the series.
func (s *Series) IndexOf(m Month) int {
	idx := m.Sub(s.Start)
	if idx < 0 || idx >= len(s.Values) {
		return -1
	}
	return idx
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance calculates the sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.Variance(s.Values, nil)
}

// Std calculates the sample standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the minimum value in the series.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Min(s.Values)
}

// Max returns the maximum value in the series.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Max(s.Values)
}

// Median returns the median value of the series.
func (s *Series) Median() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Diff calculates the first difference of the series.
func (s *Series) Diff() *Series {
	return s.lagDiff(1, "_diff")
}

// DiffOrder applies the first difference d times.
func (s *Series) DiffOrder(d int) *Series {
	out := s
	for i := 0; i < d; i++ {
		out = out.Diff()
	}
	return out
}

// SeasonalDiff calculates the seasonal difference with period m.
func (s *Series) SeasonalDiff(m int) *Series {
	return s.lagDiff(m, "_seasonal_diff")
}

func (s *Series) lagDiff(lag int, suffix string) *Series {
	if lag <= 0 || len(s.Values) <= lag {
		return &Series{Start: s.Start.Add(lag), Values: []float64{}, Name: s.Name + suffix}
	}

	result := make([]float64, len(s.Values)-lag)
	for i := lag; i < len(s.Values); i++ {
		result[i-lag] = s.Values[i] - s.Values[i-lag]
	}

	return &Series{
		Start:  s.Start.Add(lag),
		Values: result,
		Name:   s.Name + suffix,
	}
}

// Slice returns a copy of the observations in [start, end).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Start: s.Start.Add(start), Values: []float64{}, Name: s.Name}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	return &Series{
		Start:  s.Start.Add(start),
		Values: values,
		Name:   s.Name,
	}
}

// Between returns the observations whose periods fall in [from, to].
func (s *Series) Between(from, to Month) *Series {
	return s.Slice(from.Sub(s.Start), to.Sub(s.Start)+1)
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	return &Series{
		Start:  s.Start,
		Values: values,
		Name:   s.Name,
	}
}

// IsConstant reports whether every observation has the same value.
func (s *Series) IsConstant() bool {
	for _, v := range s.Values[min(1, len(s.Values)):] {
		if v != s.Values[0] {
			return false
		}
	}
	return true
}

// AllPositive reports whether every observation is strictly positive.
func (s *Series) AllPositive() bool {
	for _, v := range s.Values {
		if !(v > 0) {
			return false
		}
	}
	return true
}
