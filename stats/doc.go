// Package stats provides statistical tests and analysis functions for time series.
//
// This package includes stationarity tests, autocorrelation functions,
// variance-stabilising transformations and the residual tests used to
// validate fitted forecasting models.
//
// # Stationarity Tests
//
// Test whether a time series is stationary:
//
//	// Augmented Dickey-Fuller test
//	// H0: Series has unit root (non-stationary)
//	adf := stats.ADF(series, 0)
//
//	// KPSS test
//	// H0: Series is level stationary
//	kpss := stats.KPSS(series, "c", 0)
//
//	// Phillips-Perron test
//	pp := stats.PhillipsPerron(series, 0)
//
// # Differencing Analysis
//
// Determine differencing orders:
//
//	d := stats.NDiffs(series, 2, "kpss")
//	sd := stats.NSDiffs(series, 12, 1)
//
// # Transformations
//
// Guerrero's method picks a Box-Cox lambda that stabilises the variance
// across seasonal years:
//
//	lambda, err := stats.GuerreroLambda(series, 12, -1, 2)
//	transformed, err := stats.BoxCox(series, lambda)
//
// # Residual Diagnostics
//
//	lb := stats.LjungBox(residuals, 24, p+q+P+Q)
//	bp := stats.BoxPierce(residuals, 24, p+q+P+Q)
//	dw := stats.DurbinWatson(residuals.Values)
//
// # Decomposition
//
//	decomp := stats.Decompose(series, 12, "multiplicative")
//	// decomp.Trend, decomp.Seasonal, decomp.Residual
package stats
