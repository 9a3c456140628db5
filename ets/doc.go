// Package ets implements exponential smoothing state space models ETS(error, trend, season).
//
// A model is named by its three components:
//   - Error: Additive (A) or Multiplicative (M)
//   - Trend: None (N), Additive (A) or damped additive (Ad)
//   - Season: None (N), Additive (A) or Multiplicative (M) with period m
//
// Parameters and initial states are estimated by maximum likelihood with
// Nelder-Mead. Smoothing parameters are kept inside the usual region
// 0 < beta < alpha, 0 < gamma < 1 - alpha and 0.8 <= phi <= 0.98, and the
// initial seasonal states are constrained to sum to zero (additive) or m
// (multiplicative).
//
// # Basic Usage
//
//	model := ets.New(ets.Spec{Error: ets.Multiplicative, Trend: ets.Additive, Season: ets.Multiplicative, Period: 12})
//	if err := model.FitContext(ctx, train); err != nil {
//	    return err
//	}
//	fc, err := model.Forecast(36, []float64{80, 95})
//
// # Prediction Intervals
//
// Models with additive error and no multiplicative component have analytic
// forecast variances. All other models draw SimulationPaths sample paths from
// a PCG generator seeded with SimulationSeed and report empirical quantiles,
// so intervals are reproducible across runs.
//
// # Automatic Selection
//
// Auto fits every admissible combination (additive error with multiplicative
// season is excluded, multiplicative components need positive data) and
// keeps the one with the lowest AICc.
package ets
