package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/paxcast/timeseries"
)

// SeasonalStrengthThreshold is the F_S value at or above which a seasonal
// difference is taken.
const SeasonalStrengthThreshold = 0.64

// NDiffs determines the number of first differences required for stationarity.
// Uses KPSS test by default. Returns 0, 1, or 2.
// maxD is the maximum number of differences to consider (default 2).
// testType can be "kpss" (default), "adf" or "pp".
func NDiffs(series *timeseries.Series, maxD int, testType string) int {
	if maxD <= 0 {
		maxD = 2
	}

	current := series
	for d := 0; d < maxD; d++ {
		if current.IsConstant() {
			return d
		}

		var result *TestResult
		switch testType {
		case "adf":
			result = ADF(current, 0)
		case "pp":
			result = PhillipsPerron(current, 0)
		default:
			result = KPSS(current, "c", 0)
		}
		if result == nil || result.IsStationary {
			return d
		}

		current = current.Diff()
		if current.Len() < 10 {
			return d + 1
		}
	}

	return maxD
}

// NSDiffs determines the number of seasonal differences required.
// Uses seasonal strength measure: if F_S >= 0.64, one seasonal difference is suggested.
// period is the seasonal period (e.g., 12 for monthly data with yearly seasonality).
func NSDiffs(series *timeseries.Series, period int, maxD int) int {
	if maxD <= 0 {
		maxD = 1
	}
	if period <= 1 || series.Len() < 2*period {
		return 0
	}

	current := series
	for d := 0; d < maxD; d++ {
		if SeasonalStrength(current, period) < SeasonalStrengthThreshold {
			return d
		}

		current = current.SeasonalDiff(period)
		if current.Len() < 2*period {
			return d + 1
		}
	}

	return maxD
}

// SeasonalStrength calculates the strength of seasonality (F_S).
// F_S = max(0, 1 - Var(R) / Var(S+R))
// where S is seasonal component and R is residual of an additive
// decomposition.
func SeasonalStrength(series *timeseries.Series, period int) float64 {
	decomp := Decompose(series, period, "additive")
	if decomp == nil {
		return 0
	}

	var resid, seasonalPlusResid []float64
	for i, r := range decomp.Residual.Values {
		if math.IsNaN(r) {
			continue
		}
		resid = append(resid, r)
		seasonalPlusResid = append(seasonalPlusResid, decomp.Seasonal.Values[i]+r)
	}
	if len(resid) < 2 {
		return 0
	}

	varSR := stat.Variance(seasonalPlusResid, nil)
	if varSR == 0 {
		return 0
	}

	return math.Max(0, 1-stat.Variance(resid, nil)/varSR)
}

// TrendStrength calculates F_T = max(0, 1 - Var(R) / Var(T+R)).
func TrendStrength(series *timeseries.Series, period int) float64 {
	decomp := Decompose(series, period, "additive")
	if decomp == nil {
		return 0
	}

	var resid, trendPlusResid []float64
	for i, r := range decomp.Residual.Values {
		if math.IsNaN(r) {
			continue
		}
		resid = append(resid, r)
		trendPlusResid = append(trendPlusResid, decomp.Trend.Values[i]+r)
	}
	if len(resid) < 2 {
		return 0
	}

	varTR := stat.Variance(trendPlusResid, nil)
	if varTR == 0 {
		return 0
	}

	return math.Max(0, 1-stat.Variance(resid, nil)/varTR)
}

// AICc calculates the corrected Akaike Information Criterion.
// AICc = AIC + 2(k)(k+1)/(n-k-1) where k is number of parameters.
func AICc(aic float64, nObs int, nParams int) float64 {
	k := float64(nParams)
	n := float64(nObs)

	if n-k-1 <= 0 {
		return math.Inf(1)
	}

	return aic + 2*k*(k+1)/(n-k-1)
}

// InformationCriteria holds AIC, AICc, and BIC for a fitted model.
type InformationCriteria struct {
	AIC    float64 `json:"aic"`
	AICc   float64 `json:"aicc"`
	BIC    float64 `json:"bic"`
	LogLik float64 `json:"log_lik"`
}

// CalculateIC calculates all information criteria.
// logLik is the log-likelihood, nObs is the number of observations,
// nParams is the number of estimated parameters.
func CalculateIC(logLik float64, nObs int, nParams int) *InformationCriteria {
	k := float64(nParams)
	n := float64(nObs)

	aic := -2*logLik + 2*k

	return &InformationCriteria{
		AIC:    aic,
		AICc:   AICc(aic, nObs, nParams),
		BIC:    -2*logLik + k*math.Log(n),
		LogLik: logLik,
	}
}
