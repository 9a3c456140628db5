// Package timeseries provides the monthly series type used throughout paxcast.
//
// A Series is anchored at a start Month and holds one value per calendar
// month, so periods are strictly increasing and gap-free by construction.
//
// # Building a Series
//
// From aggregated monthly totals, in any order:
//
//	series, err := timeseries.FromMonthly([]timeseries.MonthlyPoint{
//	    {Period: timeseries.NewMonth(2005, time.July), Value: 2.9e6},
//	    {Period: timeseries.NewMonth(2005, time.August), Value: 3.1e6},
//	})
//
// Missing or duplicated months are reported as ErrGap or ErrDuplicatePeriod
// (both wrap ErrNotContiguous). Nothing is interpolated.
//
// # Periods
//
// Activity period codes are parsed with ParseMonth:
//
//	m, err := timeseries.ParseMonth("201507") // 2015-07
//	next := m.Add(1)                          // 2015-08
//
// # Train/Test Split
//
//	train, test, err := timeseries.Split(series, 12)
//	// train.End().Add(1) == test.Start
//
// # Transformations
//
//	diff := series.Diff()            // First difference
//	diff2 := series.DiffOrder(2)     // Second difference
//	sdiff := series.SeasonalDiff(12) // Seasonal difference
//
// # CSV
//
// Pre-aggregated series are read and written as ds,y files:
//
//	series, err := timeseries.LoadCSV("monthly.csv", nil)
//	err = timeseries.SaveCSV(series, "train.csv")
package timeseries
