package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/paxcast/timeseries"
)

// TestResult is the outcome of a unit-root or stationarity test.
type TestResult struct {
	Test         string             `json:"test"`
	Statistic    float64            `json:"statistic"`
	PValue       float64            `json:"p_value"`
	Lags         int                `json:"lags"`
	NObs         int                `json:"n_obs"`
	CriticalVals map[string]float64 `json:"critical_values"`
	IsStationary bool               `json:"is_stationary"`
}

// ADF performs the Augmented Dickey-Fuller test for unit root.
// The null hypothesis is that the series has a unit root (is non-stationary).
// If p-value < 0.05, we reject the null and conclude the series is stationary.
// maxLag <= 0 selects floor((n-1)^(1/3)) lagged differences.
func ADF(series *timeseries.Series, maxLag int) *TestResult {
	n := series.Len()
	if n < 10 {
		return nil
	}

	if maxLag <= 0 {
		maxLag = int(math.Floor(math.Pow(float64(n-1), 1.0/3.0)))
	}
	if maxLag >= n-1 {
		maxLag = n - 2
	}

	diff := series.Diff()

	// delta_y_t = alpha + beta*y_{t-1} + sum(gamma_i * delta_y_{t-i}) + epsilon
	nObs := n - maxLag - 1
	if nObs < 10 {
		return nil
	}

	y := make([]float64, nObs)
	x := make([][]float64, nObs)
	for i := 0; i < nObs; i++ {
		t := i + maxLag
		y[i] = diff.Values[t]

		x[i] = make([]float64, 2+maxLag)
		x[i][0] = 1
		x[i][1] = series.Values[t]
		for j := 1; j <= maxLag; j++ {
			x[i][1+j] = diff.Values[t-j]
		}
	}

	coeffs, se := olsRegression(x, y)
	if coeffs == nil || se == nil || se[1] == 0 {
		return nil
	}

	tStat := coeffs[1] / se[1]
	pValue := mackinnonPValue(tStat)

	return &TestResult{
		Test:      "adf",
		Statistic: tStat,
		PValue:    pValue,
		Lags:      maxLag,
		NObs:      nObs,
		CriticalVals: map[string]float64{
			"1%":  -3.43,
			"5%":  -2.86,
			"10%": -2.57,
		},
		IsStationary: pValue < 0.05,
	}
}

// KPSS performs the Kwiatkowski-Phillips-Schmidt-Shin test for stationarity.
// The null hypothesis is that the series is level ("c") or trend ("ct")
// stationary. If p-value < 0.05, we reject the null and conclude the series
// is non-stationary. nlags <= 0 selects trunc(4*(n/100)^(1/4)).
func KPSS(series *timeseries.Series, regression string, nlags int) *TestResult {
	n := series.Len()
	if n < 10 {
		return nil
	}
	if regression != "ct" {
		regression = "c"
	}

	if nlags <= 0 {
		nlags = int(4 * math.Pow(float64(n)/100, 0.25))
	}

	residuals := make([]float64, n)
	if regression == "ct" {
		x := make([][]float64, n)
		for i := range x {
			x[i] = []float64{1, float64(i)}
		}
		coeffs, _ := olsRegression(x, series.Values)
		if coeffs == nil {
			return nil
		}
		for i, v := range series.Values {
			residuals[i] = v - coeffs[0] - coeffs[1]*float64(i)
		}
	} else {
		mean := series.Mean()
		for i, v := range series.Values {
			residuals[i] = v - mean
		}
	}

	s2 := longRunVariance(residuals, nlags)
	if s2 <= 0 {
		// Constant input: nothing to reject.
		return &TestResult{Test: "kpss", PValue: 0.1, Lags: nlags, NObs: n,
			CriticalVals: kpssCriticalValues(regression), IsStationary: true}
	}

	etaSq := 0.0
	cumSum := 0.0
	for _, r := range residuals {
		cumSum += r
		etaSq += cumSum * cumSum
	}
	kpssStat := etaSq / (float64(n) * float64(n) * s2)

	pValue := kpssPValue(kpssStat, regression)

	return &TestResult{
		Test:         "kpss",
		Statistic:    kpssStat,
		PValue:       pValue,
		Lags:         nlags,
		NObs:         n,
		CriticalVals: kpssCriticalValues(regression),
		IsStationary: pValue >= 0.05,
	}
}

// PhillipsPerron performs the Phillips-Perron test for unit root.
// Similar to ADF but handles serial correlation through a long-run variance
// correction instead of lagged differences.
func PhillipsPerron(series *timeseries.Series, nlags int) *TestResult {
	n := series.Len()
	if n < 10 {
		return nil
	}

	if nlags <= 0 {
		nlags = int(math.Floor(4 * math.Pow(float64(n)/100, 0.25)))
	}

	diff := series.Diff()

	// delta_y_t = alpha + beta * y_{t-1} + epsilon
	nObs := n - 1
	y := diff.Values
	x := make([][]float64, nObs)
	for i := 0; i < nObs; i++ {
		x[i] = []float64{1, series.Values[i]}
	}

	coeffs, se := olsRegression(x, y)
	if coeffs == nil || se == nil || se[1] == 0 {
		return nil
	}

	residuals := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		residuals[i] = y[i] - coeffs[0] - coeffs[1]*x[i][1]
	}

	gamma0 := 0.0
	for _, r := range residuals {
		gamma0 += r * r
	}
	gamma0 /= float64(nObs)
	lambda2 := longRunVariance(residuals, nlags)
	if lambda2 <= 0 || gamma0 <= 0 {
		return nil
	}

	tStat := coeffs[1] / se[1]

	xMean := 0.0
	for i := 0; i < nObs; i++ {
		xMean += x[i][1]
	}
	xMean /= float64(nObs)

	sumXDev2 := 0.0
	for i := 0; i < nObs; i++ {
		d := x[i][1] - xMean
		sumXDev2 += d * d
	}

	correction := (lambda2 - gamma0) * math.Sqrt(float64(nObs)) / (2 * math.Sqrt(lambda2) * math.Sqrt(sumXDev2))
	ppStat := math.Sqrt(gamma0/lambda2)*tStat - correction
	pValue := mackinnonPValue(ppStat)

	return &TestResult{
		Test:      "pp",
		Statistic: ppStat,
		PValue:    pValue,
		Lags:      nlags,
		NObs:      nObs,
		CriticalVals: map[string]float64{
			"1%":  -3.43,
			"5%":  -2.86,
			"10%": -2.57,
		},
		IsStationary: pValue < 0.05,
	}
}

// longRunVariance is the Newey-West estimator with Bartlett weights.
func longRunVariance(residuals []float64, lags int) float64 {
	n := len(residuals)
	s2 := 0.0
	for _, r := range residuals {
		s2 += r * r
	}
	s2 /= float64(n)

	for l := 1; l <= lags && l < n; l++ {
		cov := 0.0
		for i := l; i < n; i++ {
			cov += residuals[i] * residuals[i-l]
		}
		cov /= float64(n)
		weight := 1.0 - float64(l)/float64(lags+1)
		s2 += 2 * weight * cov
	}
	return s2
}

// olsRegression performs ordinary least squares regression.
// Returns coefficients and their standard errors; nil when X'X is singular.
func olsRegression(x [][]float64, y []float64) (coeffs, stdErrors []float64) {
	n := len(y)
	if n == 0 || len(x) != n {
		return nil, nil
	}
	k := len(x[0])

	design := mat.NewDense(n, k, nil)
	for i, row := range x {
		design.SetRow(i, row)
	}
	target := mat.NewVecDense(n, y)

	var xtx mat.Dense
	xtx.Mul(design.T(), design)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, nil
		}
	}

	var xty, beta, fitted, resid mat.VecDense
	xty.MulVec(design.T(), target)
	beta.MulVec(&xtxInv, &xty)
	fitted.MulVec(design, &beta)
	resid.SubVec(target, &fitted)

	coeffs = make([]float64, k)
	for i := range coeffs {
		coeffs[i] = beta.AtVec(i)
	}

	if n <= k {
		return coeffs, nil
	}

	s2 := mat.Dot(&resid, &resid) / float64(n-k)
	stdErrors = make([]float64, k)
	for i := 0; i < k; i++ {
		stdErrors[i] = math.Sqrt(s2 * xtxInv.At(i, i))
	}

	return coeffs, stdErrors
}

// MacKinnon (1994) response-surface coefficients for the constant-only
// regression with a single series.
var (
	tauMaxC     = 2.74
	tauMinC     = -18.83
	tauStarC    = -1.61
	tauSmallPC  = []float64{2.1659, 1.4412, 0.038269}
	tauLargePC  = []float64{1.7339, 0.93202, -0.12745, -0.010368}
	kpssLevelCV = []float64{0.347, 0.463, 0.574, 0.739}
	kpssTrendCV = []float64{0.119, 0.146, 0.176, 0.216}
	kpssPVals   = []float64{0.10, 0.05, 0.025, 0.01}
)

// mackinnonPValue approximates the ADF/PP p-value from the MacKinnon
// response surface.
func mackinnonPValue(stat float64) float64 {
	switch {
	case stat > tauMaxC:
		return 1
	case stat < tauMinC:
		return 0
	}
	coeffs := tauLargePC
	if stat <= tauStarC {
		coeffs = tauSmallPC
	}
	z := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		z = z*stat + coeffs[i]
	}
	return distuv.UnitNormal.CDF(z)
}

// kpssPValue interpolates the KPSS table, clamping to [0.01, 0.10].
func kpssPValue(stat float64, regression string) float64 {
	cv := kpssLevelCV
	if regression == "ct" {
		cv = kpssTrendCV
	}
	if stat <= cv[0] {
		return kpssPVals[0]
	}
	if stat >= cv[len(cv)-1] {
		return kpssPVals[len(kpssPVals)-1]
	}
	for i := 1; i < len(cv); i++ {
		if stat <= cv[i] {
			frac := (stat - cv[i-1]) / (cv[i] - cv[i-1])
			return kpssPVals[i-1] + frac*(kpssPVals[i]-kpssPVals[i-1])
		}
	}
	return kpssPVals[len(kpssPVals)-1]
}

func kpssCriticalValues(regression string) map[string]float64 {
	cv := kpssLevelCV
	if regression == "ct" {
		cv = kpssTrendCV
	}
	return map[string]float64{
		"10%":  cv[0],
		"5%":   cv[1],
		"2.5%": cv[2],
		"1%":   cv[3],
	}
}
