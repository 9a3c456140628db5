package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/paxcast/timeseries"
)

// ErrNonPositive is returned when a transformation needs strictly positive data.
var ErrNonPositive = errors.New("stats: series must be strictly positive")

// GuerreroLambda selects the Box-Cox lambda that minimises the coefficient
// of variation of sd_h / mean_h^(1-lambda) across non-overlapping
// subseries of length period. The search covers [lower, upper] in steps of
// 0.001. Leading observations that do not fill a whole subseries are dropped.
func GuerreroLambda(series *timeseries.Series, period int, lower, upper float64) (float64, error) {
	if !series.AllPositive() {
		return 0, ErrNonPositive
	}
	if period < 2 {
		period = 2
	}
	if lower >= upper {
		lower, upper = -1, 2
	}

	n := series.Len()
	groups := n / period
	if groups < 2 {
		return 0, errors.New("stats: too few observations for Guerrero lambda")
	}

	offset := n - groups*period
	means := make([]float64, groups)
	sds := make([]float64, groups)
	for g := 0; g < groups; g++ {
		chunk := series.Values[offset+g*period : offset+(g+1)*period]
		means[g], sds[g] = stat.MeanStdDev(chunk, nil)
	}

	ratio := make([]float64, groups)
	cv := func(lambda float64) float64 {
		for g := range ratio {
			ratio[g] = sds[g] / math.Pow(means[g], 1-lambda)
		}
		mean, sd := stat.MeanStdDev(ratio, nil)
		if mean == 0 {
			return math.Inf(1)
		}
		return sd / mean
	}

	best, bestCV := lower, math.Inf(1)
	steps := int(math.Round((upper - lower) / 0.001))
	for i := 0; i <= steps; i++ {
		lambda := lower + float64(i)*0.001
		if v := cv(lambda); v < bestCV {
			best, bestCV = lambda, v
		}
	}

	return math.Round(best*1000) / 1000, nil
}

// BoxCox applies the Box-Cox transformation with parameter lambda.
// lambda == 0 is the natural log.
func BoxCox(series *timeseries.Series, lambda float64) (*timeseries.Series, error) {
	if !series.AllPositive() {
		return nil, ErrNonPositive
	}

	out := series.Copy()
	for i, v := range out.Values {
		out.Values[i] = boxCox(v, lambda)
	}
	return out, nil
}

// InvBoxCox reverses BoxCox.
func InvBoxCox(series *timeseries.Series, lambda float64) *timeseries.Series {
	out := series.Copy()
	for i, v := range out.Values {
		out.Values[i] = InvBoxCoxValue(v, lambda)
	}
	return out
}

// InvBoxCoxValue reverses the transformation for a single value.
func InvBoxCoxValue(v, lambda float64) float64 {
	if lambda == 0 {
		return math.Exp(v)
	}
	base := lambda*v + 1
	if base <= 0 {
		return 0
	}
	return math.Pow(base, 1/lambda)
}

func boxCox(v, lambda float64) float64 {
	if lambda == 0 {
		return math.Log(v)
	}
	return (math.Pow(v, lambda) - 1) / lambda
}
