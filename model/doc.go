// Package model ties the ETS and ARIMA families together behind one
// specification and one fitted-model interface.
//
// A Catalog is an ordered list of named specifications. Each Spec is either
// an ETSSpec or an ARIMASpec; both satisfy the sealed Spec interface, so new
// entries can be added without touching FitAll.
//
// # Basic Usage
//
//	catalog := model.DefaultCatalog(12)
//	results := model.FitAll(ctx, train, catalog, model.DefaultOptions())
//	for _, r := range results {
//	    if r.Err != nil {
//	        continue
//	    }
//	    fc, _ := r.Fitted.Forecast(36, []float64{80, 95})
//	}
//
// FitAll fits every entry on a bounded worker pool. Each fit runs under its
// own timeout; a failure, timeout or panic is recorded in that entry's
// Result and never affects the others. Results are returned in catalog
// order.
package model
