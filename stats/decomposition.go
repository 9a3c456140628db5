package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/sartorproj/paxcast/timeseries"
)

// DecompositionResult represents the decomposition of a time series.
// Trend and Residual are NaN at the ends where the centred moving average is
// undefined.
type DecompositionResult struct {
	Original *timeseries.Series
	Trend    *timeseries.Series
	Seasonal *timeseries.Series
	Residual *timeseries.Series
	Period   int
	Type     string // "additive" or "multiplicative"
}

// Decompose performs classical seasonal decomposition of a time series.
// Type can be "additive" (Y = T + S + R) or "multiplicative" (Y = T * S * R).
func Decompose(series *timeseries.Series, period int, decompositionType string) *DecompositionResult {
	n := series.Len()
	if period < 2 || n < 2*period {
		return nil
	}

	multiplicative := decompositionType == "multiplicative"
	if !multiplicative {
		decompositionType = "additive"
	}

	trend := centredMovingAverage(series.Values, period)

	detrended := make([]float64, n)
	for i := 0; i < n; i++ {
		switch {
		case math.IsNaN(trend[i]):
			detrended[i] = math.NaN()
		case multiplicative && trend[i] != 0:
			detrended[i] = series.Values[i] / trend[i]
		case multiplicative:
			detrended[i] = math.NaN()
		default:
			detrended[i] = series.Values[i] - trend[i]
		}
	}

	// Average the detrended values by position within the period.
	pattern := make([]float64, period)
	counts := make([]int, period)
	for i, v := range detrended {
		if !math.IsNaN(v) {
			pattern[i%period] += v
			counts[i%period]++
		}
	}
	for i := range pattern {
		if counts[i] > 0 {
			pattern[i] /= float64(counts[i])
		}
	}

	mean := floats.Sum(pattern) / float64(period)
	for i := range pattern {
		if multiplicative {
			pattern[i] /= mean
		} else {
			pattern[i] -= mean
		}
	}

	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = pattern[i%period]
		switch {
		case math.IsNaN(trend[i]):
			residual[i] = math.NaN()
		case multiplicative:
			residual[i] = series.Values[i] / (trend[i] * seasonal[i])
		default:
			residual[i] = series.Values[i] - trend[i] - seasonal[i]
		}
	}

	return &DecompositionResult{
		Original: series,
		Trend:    &timeseries.Series{Start: series.Start, Values: trend, Name: "trend"},
		Seasonal: &timeseries.Series{Start: series.Start, Values: seasonal, Name: "seasonal"},
		Residual: &timeseries.Series{Start: series.Start, Values: residual, Name: "residual"},
		Period:   period,
		Type:     decompositionType,
	}
}

// centredMovingAverage uses a 2xm moving average for even periods and a
// simple centred average for odd ones.
func centredMovingAverage(values []float64, period int) []float64 {
	n := len(values)
	trend := make([]float64, n)
	for i := range trend {
		trend[i] = math.NaN()
	}

	half := period / 2
	for i := half; i < n-half; i++ {
		sum := 0.0
		if period%2 == 0 {
			sum += 0.5 * (values[i-half] + values[i+half])
			sum += floats.Sum(values[i-half+1 : i+half])
		} else {
			sum = floats.Sum(values[i-half : i+half+1])
		}
		trend[i] = sum / float64(period)
	}
	return trend
}
