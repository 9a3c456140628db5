// Package evaluate scores forecasts against a held-out window and ranks
// fitted models.
//
// Accuracy metrics follow the usual forecasting definitions with e = actual
// - forecast:
//   - ME, RMSE, MAE: mean error, root mean squared error, mean absolute error
//   - MPE, MAPE: mean (absolute) percentage error, in percent
//   - MASE: MAE scaled by the in-sample seasonal naive MAE of the training data
//   - ACF1: lag-1 autocorrelation of the errors
//
// MASE and ACF1 are NaN when undefined (a flat training series, or fewer
// than two errors with non-zero variance).
//
// Rank orders the successful models twice, by test RMSE and by AICc, and
// keeps both orderings; the two are not reconciled.
package evaluate
