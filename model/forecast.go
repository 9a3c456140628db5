package model

import "github.com/sartorproj/paxcast/timeseries"

// Interval is a prediction interval for one period.
type Interval struct {
	Level float64 `json:"level"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Point is the forecast for one period.
type Point struct {
	Period    timeseries.Month `json:"period"`
	Mean      float64          `json:"mean"`
	Intervals []Interval       `json:"intervals,omitempty"`
}

// Forecast is a model's forecast over consecutive months.
type Forecast struct {
	Model  string           `json:"model"`
	Start  timeseries.Month `json:"start"`
	Points []Point          `json:"points"`
}

type band struct {
	level        float64
	lower, upper []float64
}

func newForecast(name string, start timeseries.Month, mean []float64, bands []band) *Forecast {
	fc := &Forecast{Model: name, Start: start, Points: make([]Point, len(mean))}
	for h, v := range mean {
		p := Point{Period: start.Add(h), Mean: v}
		for _, b := range bands {
			p.Intervals = append(p.Intervals, Interval{Level: b.level, Lower: b.lower[h], Upper: b.upper[h]})
		}
		fc.Points[h] = p
	}
	return fc
}

// Len returns the number of forecast periods.
func (f *Forecast) Len() int {
	return len(f.Points)
}

// End returns the last forecast period.
func (f *Forecast) End() timeseries.Month {
	return f.Start.Add(len(f.Points) - 1)
}

// Mean returns the point forecasts as a series.
func (f *Forecast) Mean() *timeseries.Series {
	values := make([]float64, len(f.Points))
	for i, p := range f.Points {
		values[i] = p.Mean
	}
	return &timeseries.Series{Start: f.Start, Values: values, Name: f.Model}
}

// Interval returns the interval at level for the i-th point.
func (f *Forecast) Interval(i int, level float64) (Interval, bool) {
	for _, iv := range f.Points[i].Intervals {
		if iv.Level == level {
			return iv, true
		}
	}
	return Interval{}, false
}
