package stats

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/paxcast/timeseries"
)

// PortmanteauResult is the result of a Ljung-Box or Box-Pierce test.
type PortmanteauResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Lags      int     `json:"lags"`
	DOF       int     `json:"dof"` // Degrees of freedom
}

// LjungBox performs the Ljung-Box test for autocorrelation in residuals.
// The null hypothesis is that there is no autocorrelation up to lag h.
// If p-value < 0.05, we reject the null and conclude there is significant autocorrelation.
// fitdf is the number of estimated ARMA parameters (p + q + P + Q); the
// chi-squared degrees of freedom are lags - fitdf, floored at 1.
func LjungBox(series *timeseries.Series, lags, fitdf int) *PortmanteauResult {
	return portmanteau(series, lags, fitdf, func(acf []float64, n, lags int) float64 {
		q := 0.0
		for k := 1; k <= lags; k++ {
			q += (acf[k] * acf[k]) / float64(n-k)
		}
		return q * float64(n*(n+2))
	})
}

// BoxPierce performs the Box-Pierce test for autocorrelation.
// Similar to Ljung-Box but without the small-sample weighting.
func BoxPierce(series *timeseries.Series, lags, fitdf int) *PortmanteauResult {
	return portmanteau(series, lags, fitdf, func(acf []float64, n, lags int) float64 {
		q := 0.0
		for k := 1; k <= lags; k++ {
			q += acf[k] * acf[k]
		}
		return q * float64(n)
	})
}

func portmanteau(series *timeseries.Series, lags, fitdf int, statistic func(acf []float64, n, lags int) float64) *PortmanteauResult {
	n := series.Len()
	if n < 10 || lags < 1 {
		return nil
	}

	if lags >= n {
		lags = n - 1
	}

	acf := ACF(series, lags)
	if acf == nil {
		return nil
	}

	q := statistic(acf, n, lags)

	dof := lags - fitdf
	if dof < 1 {
		dof = 1
	}

	return &PortmanteauResult{
		Statistic: q,
		PValue:    distuv.ChiSquared{K: float64(dof)}.Survival(q),
		Lags:      lags,
		DOF:       dof,
	}
}

// DurbinWatsonResult represents the result of a Durbin-Watson test.
type DurbinWatsonResult struct {
	// d ≈ 2: no autocorrelation
	// d < 2: positive autocorrelation
	// d > 2: negative autocorrelation
	Statistic float64 `json:"statistic"`
}

// DurbinWatson calculates the Durbin-Watson statistic for first-order autocorrelation.
func DurbinWatson(residuals []float64) *DurbinWatsonResult {
	n := len(residuals)
	if n < 2 {
		return nil
	}

	numerator := 0.0
	denominator := 0.0

	for i := 1; i < n; i++ {
		diff := residuals[i] - residuals[i-1]
		numerator += diff * diff
	}

	for _, r := range residuals {
		denominator += r * r
	}

	if denominator == 0 {
		return nil
	}

	return &DurbinWatsonResult{
		Statistic: numerator / denominator,
	}
}
