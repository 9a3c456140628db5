// Package paxcast forecasts monthly airport passenger traffic with competing
// exponential smoothing and seasonal ARIMA models.
//
// A run loads raw passenger activity, aggregates it to a gap-free monthly
// series, analyses its stationarity, holds out the last months, fits every
// model in the catalog to the rest, forecasts the holdout and a longer
// horizon, scores and ranks the models, checks their residuals and writes a
// report. It follows the methodology of "Forecasting: Principles and
// Practice".
//
// # Quick Start
//
// Fit a catalog to a series:
//
//	train, test, _ := timeseries.Split(series, 12)
//	results := model.FitAll(ctx, train, model.DefaultCatalog(12), model.DefaultOptions())
//	for _, f := range model.Successful(results) {
//		fc, _ := f.Forecast(36, []float64{80, 95})
//		acc, _ := evaluate.Score(fc, test, train, 12)
//		fmt.Println(f.Describe(), acc.RMSE)
//	}
//
// Fit a single seasonal ARIMA model:
//
//	m := arima.NewSeasonal(0, 1, 1, 0, 1, 1, 12)
//	if err := m.Fit(train); err != nil {
//		return err
//	}
//	fc, _ := m.Forecast(12, []float64{95})
//
// # Packages
//
//   - timeseries: Month, monthly Series, Split and ds,y CSV
//   - passenger: passenger activity loader, aggregation and shares
//   - stats: stationarity tests, Box-Cox, ACF/PACF, decomposition, portmanteau tests
//   - ets: exponential smoothing state space models and automatic selection
//   - arima: seasonal ARIMA estimation and forecasting
//   - autoarima: Hyndman-Khandakar order selection
//   - model: the model catalog, concurrent fitting and forecasts
//   - evaluate: accuracy metrics and rankings
//   - diagnostics: residual checks
//   - report: JSON, xlsx and CSV output
//
// The paxcast command in cmd/paxcast runs the whole pipeline.
//
// # References
//
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
//   - Hyndman, R.J., Koehler, A.B., Ord, J.K., & Snyder, R.D. (2008). Forecasting with Exponential Smoothing
//   - Box, G. E. P., & Jenkins, G. M. (1976). Time Series Analysis: Forecasting and Control
package paxcast
