package timeseries

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedPeriod is returned when a period code cannot be parsed into a
// valid year and month.
var ErrMalformedPeriod = errors.New("malformed period code")

// Month is a calendar month. The zero value is January of year 0.
type Month struct {
	Year  int
	Month time.Month
}

// NewMonth returns the month for the given year and month number, normalising
// overflow (month 13 becomes January of the next year).
func NewMonth(year int, month time.Month) Month {
	idx := year*12 + int(month) - 1
	return fromIndex(idx)
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a 6-digit YYYYMM activity period code such as "201507".
func ParseMonth(code string) (Month, error) {
	code = strings.TrimSpace(code)
	if len(code) != 6 || strings.IndexFunc(code, notDigit) >= 0 {
		return Month{}, fmt.Errorf("%w: %q", ErrMalformedPeriod, code)
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrMalformedPeriod, code)
	}
	year, month := n/100, n%100
	if month < 1 || month > 12 {
		return Month{}, fmt.Errorf("%w: %q has month %d", ErrMalformedPeriod, code, month)
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

func notDigit(r rune) bool { return r < '0' || r > '9' }

// ParseMonthLayout parses a month written as YYYYMM, YYYY-MM or YYYY-MM-DD.
func ParseMonthLayout(s string) (Month, error) {
	s = strings.TrimSpace(s)
	switch len(s) {
	case 6:
		return ParseMonth(s)
	case 7:
		t, err := time.Parse("2006-01", s)
		if err != nil {
			return Month{}, fmt.Errorf("%w: %q", ErrMalformedPeriod, s)
		}
		return MonthOf(t), nil
	case 10:
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return Month{}, fmt.Errorf("%w: %q", ErrMalformedPeriod, s)
		}
		return MonthOf(t), nil
	}
	return Month{}, fmt.Errorf("%w: %q", ErrMalformedPeriod, s)
}

func (m Month) index() int {
	return m.Year*12 + int(m.Month) - 1
}

func fromIndex(idx int) Month {
	year := idx / 12
	rem := idx % 12
	if rem < 0 {
		rem += 12
		year--
	}
	return Month{Year: year, Month: time.Month(rem + 1)}
}

// Add returns the month n months after m (n may be negative).
func (m Month) Add(n int) Month {
	return fromIndex(m.index() + n)
}

// Sub returns the number of months from o to m.
func (m Month) Sub(o Month) int {
	return m.index() - o.index()
}

// Before reports whether m is earlier than o.
func (m Month) Before(o Month) bool {
	return m.index() < o.index()
}

// After reports whether m is later than o.
func (m Month) After(o Month) bool {
	return m.index() > o.index()
}

// Time returns midnight UTC on the first day of the month.
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Code returns the YYYYMM code for the month.
func (m Month) Code() string {
	return fmt.Sprintf("%04d%02d", m.Year, int(m.Month))
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MarshalText implements encoding.TextMarshaler.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonthLayout(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
