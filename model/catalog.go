package model

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/sartorproj/paxcast/arima"
	"github.com/sartorproj/paxcast/autoarima"
	"github.com/sartorproj/paxcast/ets"
)

var (
	// ErrDuplicateName is returned when a catalog name is added twice.
	ErrDuplicateName = errors.New("model: duplicate catalog name")
	// ErrUnknownSpec is returned when a name is not in the catalog.
	ErrUnknownSpec = errors.New("model: unknown catalog name")
)

// Entry is a named specification.
type Entry struct {
	Name string
	Spec Spec
}

// Catalog is an ordered set of uniquely named specifications.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// Add appends a named specification.
func (c *Catalog) Add(name string, spec Spec) error {
	if name == "" || spec == nil {
		return errors.New("model: catalog entry needs a name and a spec")
	}
	if _, ok := c.index[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	c.index[name] = len(c.entries)
	c.entries = append(c.entries, Entry{Name: name, Spec: spec})
	return nil
}

func (c *Catalog) mustAdd(name string, spec Spec) {
	if err := c.Add(name, spec); err != nil {
		panic(err)
	}
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns the entries in insertion order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Names returns the entry names in insertion order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Lookup returns the specification registered under name.
func (c *Catalog) Lookup(name string) (Spec, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.entries[i].Spec, true
}

// Select returns a catalog with only the named entries, in the order
// given.
func (c *Catalog) Select(names ...string) (*Catalog, error) {
	out := NewCatalog()
	for _, name := range names {
		spec, ok := c.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSpec, name)
		}
		if err := out.Add(name, spec); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DefaultCatalog returns the standard set of competing models for monthly
// data with seasonal period m.
func DefaultCatalog(m int) *Catalog {
	c := NewCatalog()

	c.mustAdd("ets_auto", ETSSpec{Auto: true, Period: m})
	c.mustAdd("ets_aan", ETSSpec{Model: ets.Spec{Error: ets.Additive, Trend: ets.Additive, Season: ets.None}})
	c.mustAdd("hw_multiplicative", ETSSpec{Model: ets.Spec{Error: ets.Multiplicative, Trend: ets.Additive, Season: ets.Multiplicative, Period: m}})
	c.mustAdd("hw_damped_additive", ETSSpec{Model: ets.Spec{Error: ets.Additive, Trend: ets.Additive, Damped: true, Season: ets.Additive, Period: m}})
	c.mustAdd("hw_damped_multiplicative", ETSSpec{Model: ets.Spec{Error: ets.Multiplicative, Trend: ets.Additive, Damped: true, Season: ets.Multiplicative, Period: m}})

	stepwise := autoarima.DefaultConfig()
	stepwise.Seasonal, stepwise.SeasonalM = true, m
	c.mustAdd("arima_stepwise", ARIMASpec{Auto: stepwise})

	search := autoarima.DefaultConfig()
	search.Seasonal, search.SeasonalM = true, m
	search.Stepwise = false
	search.Workers = runtime.NumCPU()
	c.mustAdd("arima_search", ARIMASpec{Auto: search})

	seasonal := func(p, d, q, sp, sd, sq int) ARIMASpec {
		return ARIMASpec{Order: arima.Order{P: p, D: d, Q: q, SP: sp, SD: sd, SQ: sq, M: m}}
	}
	c.mustAdd("arima_210_011", seasonal(2, 1, 0, 0, 1, 1))
	c.mustAdd("arima_011_011", seasonal(0, 1, 1, 0, 1, 1))
	c.mustAdd("arima_012_011", seasonal(0, 1, 2, 0, 1, 1))
	c.mustAdd("arima_110_110", seasonal(1, 1, 0, 1, 1, 0))
	c.mustAdd("arima_100_110", seasonal(1, 0, 0, 1, 1, 0))
	c.mustAdd("arima_211_000", ARIMASpec{Order: arima.Order{P: 2, D: 1, Q: 1}})

	return c
}
