package report

import (
	"bytes"
	"math"
	"strconv"
)

// Float is a float64 that encodes non-finite values as null.
type Float float64

// Valid reports whether f is finite.
func (f Float) Valid() bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(f), 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler; null decodes as NaN.
func (f *Float) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// cell returns the spreadsheet value of f; nil leaves the cell empty.
func (f Float) cell() any {
	if !f.Valid() {
		return nil
	}
	return float64(f)
}

func floats(values []float64) []Float {
	if values == nil {
		return nil
	}
	out := make([]Float, len(values))
	for i, v := range values {
		out[i] = Float(v)
	}
	return out
}

// optional returns a pointer to f, or nil when f is not finite.
func optional(f float64) *Float {
	if !Float(f).Valid() {
		return nil
	}
	v := Float(f)
	return &v
}
