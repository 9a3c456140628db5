package passenger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sartorproj/paxcast/timeseries"
)

// Dimension is a categorical attribute records can be grouped by.
type Dimension string

const (
	None             Dimension = ""
	Airline          Dimension = "airline"
	PublishedAirline Dimension = "published_airline"
	GeoSummary       Dimension = "geo_summary"
	GeoRegion        Dimension = "geo_region"
	ActivityType     Dimension = "activity_type"
	PriceCategory    Dimension = "price_category"
	Terminal         Dimension = "terminal"
	BoardingArea     Dimension = "boarding_area"
)

// ParseDimension parses a dimension name; "" and "none" select None.
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case "none":
		return None, nil
	case None, Airline, PublishedAirline, GeoSummary, GeoRegion, ActivityType, PriceCategory, Terminal, BoardingArea:
		return d, nil
	}
	return None, fmt.Errorf("unknown dimension %q", s)
}

// Value returns the record's value for d, or "" for None.
func (d Dimension) Value(r Record) string {
	switch d {
	case Airline:
		return r.OperatingAirline
	case PublishedAirline:
		return r.PublishedAirline
	case GeoSummary:
		return r.GeoSummary
	case GeoRegion:
		return r.GeoRegion
	case ActivityType:
		return r.ActivityType
	case PriceCategory:
		return r.PriceCategory
	case Terminal:
		return r.Terminal
	case BoardingArea:
		return r.BoardingArea
	}
	return ""
}

// Range is an inclusive month filter. A zero bound is open.
type Range struct {
	From timeseries.Month
	To   timeseries.Month
}

// Contains reports whether m lies within the range.
func (r Range) Contains(m timeseries.Month) bool {
	var zero timeseries.Month
	if r.From != zero && m.Before(r.From) {
		return false
	}
	if r.To != zero && m.After(r.To) {
		return false
	}
	return true
}

// Filter keeps records whose value for every listed dimension equals one of
// the given values, compared case-insensitively. An empty filter keeps
// everything.
type Filter map[Dimension][]string

// Match reports whether r passes the filter.
func (f Filter) Match(r Record) bool {
	for dim, allowed := range f {
		if len(allowed) == 0 {
			continue
		}
		v := dim.Value(r)
		ok := false
		for _, a := range allowed {
			if strings.EqualFold(v, a) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Group is the total passenger count of one period and category.
type Group struct {
	Period timeseries.Month `json:"period"`
	Key    string           `json:"key,omitempty"`
	Count  int64            `json:"count"`
}

type groupKey struct {
	period timeseries.Month
	key    string
}

// Aggregate sums passenger counts per period, and per category of dim
// unless dim is None, over the records inside rng. Groups are sorted by
// period and then key.
func Aggregate(records []Record, dim Dimension, rng Range) []Group {
	sums := make(map[groupKey]int64)
	for _, r := range records {
		if !rng.Contains(r.Period) {
			continue
		}
		sums[groupKey{r.Period, dim.Value(r)}] += r.PassengerCount
	}

	groups := make([]Group, 0, len(sums))
	for k, v := range sums {
		groups = append(groups, Group{Period: k.period, Key: k.key, Count: v})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Period != groups[j].Period {
			return groups[i].Period.Before(groups[j].Period)
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// ShareRow is a category's total and its fraction of the overall total.
type ShareRow struct {
	Key   string  `json:"key"`
	Count int64   `json:"count"`
	Share float64 `json:"share"`
}

// Share totals groups per key and returns the n largest categories, ties
// broken by name. n < 1 returns every category.
func Share(groups []Group, n int) []ShareRow {
	totals := make(map[string]int64)
	var all int64
	for _, g := range groups {
		totals[g.Key] += g.Count
		all += g.Count
	}

	rows := make([]ShareRow, 0, len(totals))
	for k, v := range totals {
		row := ShareRow{Key: k, Count: v}
		if all > 0 {
			row.Share = float64(v) / float64(all)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// TotalSeries builds the monthly total passenger series over rng. Missing
// months are a data integrity error.
func TotalSeries(records []Record, rng Range) (*timeseries.Series, error) {
	groups := Aggregate(records, None, rng)
	points := make([]timeseries.MonthlyPoint, len(groups))
	for i, g := range groups {
		points[i] = timeseries.MonthlyPoint{Period: g.Period, Value: float64(g.Count)}
	}

	s, err := timeseries.FromMonthly(points)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataIntegrity, err)
	}
	s.Name = "passengers"
	return s, nil
}
