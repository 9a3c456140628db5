package timeseries

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrEmpty is returned when a series would have no observations.
	ErrEmpty = errors.New("no observations")
	// ErrNotContiguous wraps every contiguity violation.
	ErrNotContiguous = errors.New("monthly observations are not contiguous")
	// ErrGap is returned when one or more months are missing.
	ErrGap = fmt.Errorf("%w: missing month", ErrNotContiguous)
	// ErrDuplicatePeriod is returned when a month appears more than once.
	ErrDuplicatePeriod = fmt.Errorf("%w: duplicate month", ErrNotContiguous)
	// ErrHoldoutTooLarge is returned by Split when the series is not longer
	// than the holdout window.
	ErrHoldoutTooLarge = errors.New("series not longer than holdout")
)

// MonthlyPoint is one aggregated monthly total.
type MonthlyPoint struct {
	Period Month
	Value  float64
}

// FromMonthly builds a series from monthly totals. The points may arrive in
// any order but must cover a contiguous run of months starting at the first
// observed month. Missing months are reported, never imputed.
func FromMonthly(points []MonthlyPoint) (*Series, error) {
	if len(points) == 0 {
		return nil, ErrEmpty
	}

	sorted := make([]MonthlyPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Period.Before(sorted[j].Period)
	})

	start := sorted[0].Period
	values := make([]float64, len(sorted))
	for i, p := range sorted {
		want := start.Add(i)
		switch {
		case p.Period == sorted[max(i-1, 0)].Period && i > 0:
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePeriod, p.Period)
		case p.Period != want:
			return nil, fmt.Errorf("%w: expected %s, found %s", ErrGap, want, p.Period)
		}
		values[i] = p.Value
	}

	return &Series{Start: start, Values: values}, nil
}

// Split partitions s into a training prefix and the trailing holdout
// observations. train ends the month before test starts.
func Split(s *Series, holdout int) (train, test *Series, err error) {
	if holdout < 1 {
		return nil, nil, fmt.Errorf("%w: holdout %d must be positive", ErrHoldoutTooLarge, holdout)
	}
	if s.Len() <= holdout {
		return nil, nil, fmt.Errorf("%w: %d observations, holdout %d", ErrHoldoutTooLarge, s.Len(), holdout)
	}
	cut := s.Len() - holdout
	train = s.Slice(0, cut)
	test = s.Slice(cut, s.Len())
	return train, test, nil
}
