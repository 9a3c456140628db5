// Package passenger loads monthly airport passenger activity records and
// reduces them to totals.
//
// The input is delimited text with a header row. Columns are matched to
// their canonical names case-insensitively; unknown columns are ignored and
// only Activity Period and Passenger Count are required:
//
//	Activity Period, Operating Airline, Operating Airline IATA Code,
//	Published Airline, Published Airline IATA Code, GEO Summary, GEO Region,
//	Activity Type Code, Price Category Code, Terminal, Boarding Area,
//	Passenger Count
//
// Every data problem (missing column, malformed period code, invalid count,
// non-contiguous months) wraps ErrDataIntegrity and stops loading; nothing is
// skipped or imputed.
//
// # Basic Usage
//
//	records, err := passenger.LoadFile("air_traffic.csv", nil)
//	if err != nil {
//	    return err
//	}
//	total, err := passenger.TotalSeries(records, passenger.Range{})
//	airlines := passenger.Share(passenger.Aggregate(records, passenger.Airline, passenger.Range{}), 10)
package passenger
