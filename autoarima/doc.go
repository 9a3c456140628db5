// Package autoarima implements automatic ARIMA model selection.
//
// Auto-ARIMA selects the best ARIMA or SARIMA model by searching through
// combinations of model orders and comparing an information criterion
// (AICc by default). The seasonal difference count comes from the seasonal
// strength of the series (stats.NSDiffs) and the ordinary difference count
// from repeated KPSS tests (stats.NDiffs).
//
// # Basic Usage
//
//	config := autoarima.DefaultConfig()
//	config.Seasonal = true
//	config.SeasonalM = 12
//
//	result, err := autoarima.AutoARIMA(ctx, series, config)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Best model: %s, AICc %.2f after %d fits\n",
//	    result.Order, result.AICc, result.ModelsEvaluated)
//
//	forecasts, _ := result.Predict(12)
//
// # Search Methods
//
// Two search methods are available:
//   - Stepwise (default): Hyndman-Khandakar. Four starting models, then
//     single and joint order changes and a constant toggle, moving to the
//     first improvement, until nothing improves or MaxModels fits are spent.
//   - Exhaustive (Stepwise=false): every order with p+q+P+Q <= MaxOrder,
//     with and without a constant, fitted on Workers goroutines.
//
// Candidates with equal criterion keep the one evaluated first. A constant
// is only considered when d+D <= 1.
package autoarima
