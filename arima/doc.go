// Package arima implements seasonal ARIMA (AutoRegressive Integrated Moving Average) models.
//
// A SARIMA(p,d,q)(P,D,Q)[m] model combines:
//   - AR(p) and seasonal AR(P) terms at lags 1..p and m..Pm
//   - I(d) and seasonal I(D) differencing
//   - MA(q) and seasonal MA(Q) terms, with theta(B) = 1 + theta_1 B + ...
//
// Coefficients are estimated by conditional sum of squares over the
// multiplied polynomials with Nelder-Mead (gonum/optimize). Candidates
// outside the stationary or invertible region, checked through companion
// matrix eigenvalues, are rejected.
//
// # Basic Usage
//
//	// Airline model ARIMA(0,1,1)(0,1,1)[12]
//	model := arima.NewSeasonal(0, 1, 1, 0, 1, 1, 12)
//	if err := model.FitContext(ctx, train); err != nil {
//	    return err
//	}
//
//	fc, _ := model.Forecast(36, []float64{80, 95})
//	// fc.Mean, fc.Intervals[1].Lower, fc.Intervals[1].Upper
//
// A constant (mean or drift) is only allowed when d+D <= 1:
//
//	model := arima.NewFromOrder(arima.Order{P: 1, D: 1, M: 12}, true)
//
// # Residual Analysis
//
// Residuals and FittedValues are series aligned to the training periods,
// starting after the observations consumed by differencing and AR
// conditioning:
//
//	lb := stats.LjungBox(model.Residuals(), 24, model.Order.NumARMA())
//
// For automatic model selection, use the autoarima package.
package arima
