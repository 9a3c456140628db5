// Package pipeline runs one forecasting pass: load, aggregate, analyse,
// split, fit, forecast, score, diagnose and assemble the report.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sartorproj/paxcast/diagnostics"
	"github.com/sartorproj/paxcast/evaluate"
	"github.com/sartorproj/paxcast/internal/config"
	"github.com/sartorproj/paxcast/internal/logging"
	"github.com/sartorproj/paxcast/model"
	"github.com/sartorproj/paxcast/passenger"
	"github.com/sartorproj/paxcast/report"
	"github.com/sartorproj/paxcast/timeseries"
)

// Run executes the pipeline described by cfg. Data errors abort the run;
// model failures are recorded in the report. The logger attached to ctx
// receives stage and per-model events.
func Run(ctx context.Context, cfg *config.Config, runID string) (*report.Report, error) {
	log := *zerolog.Ctx(ctx)
	fc := cfg.Forecast

	rng, err := dateRange(cfg.Input)
	if err != nil {
		return nil, err
	}

	done := logging.Stage(log, "load")
	records, err := passenger.LoadFile(cfg.Input.Path, loadOptions(cfg.Input))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.Input.Path, err)
	}
	log.Info().Int("records", len(records)).Str("path", cfg.Input.Path).Msg("records loaded")
	done()

	done = logging.Stage(log, "aggregate")
	series, err := passenger.TotalSeries(records, rng)
	if err != nil {
		return nil, err
	}
	airlines := passenger.Share(passenger.Aggregate(records, passenger.Airline, rng), cfg.Report.ShareTop)
	log.Info().
		Str("start", series.Start.String()).
		Str("end", series.End().String()).
		Int("months", series.Len()).
		Msg("series built")
	done()

	done = logging.Stage(log, "stationarity")
	stationarity := report.AnalyzeStationarity(series, fc.Period)
	ev := log.Info().Int("ndiffs", stationarity.NDiffs).Int("nsdiffs", stationarity.NSDiffs)
	if stationarity.Lambda != nil {
		ev = ev.Float64("lambda", float64(*stationarity.Lambda))
	}
	ev.Msg("stationarity analysed")
	done()

	train, test, err := timeseries.Split(series, fc.Holdout)
	if err != nil {
		return nil, err
	}

	catalog := model.DefaultCatalog(fc.Period)
	if len(cfg.Fit.Models) > 0 {
		if catalog, err = catalog.Select(cfg.Fit.Models...); err != nil {
			return nil, err
		}
	}

	done = logging.Stage(log, "fit")
	results := model.FitAll(ctx, train, catalog, model.Options{Workers: cfg.Fit.Workers, Timeout: cfg.Fit.Timeout})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Info().
		Int("fitted", len(model.Successful(results))).
		Int("failed", len(model.Failed(results))).
		Msg("models fitted")
	done()

	in := report.Input{
		RunID: runID,
		Settings: report.Settings{
			Input:       cfg.Input.Path,
			From:        cfg.Input.From,
			To:          cfg.Input.To,
			Period:      fc.Period,
			Holdout:     fc.Holdout,
			Horizon:     fc.Horizon,
			Levels:      fc.Levels,
			LjungBoxLag: cfg.Diagnostics.LjungBoxLag,
			Models:      catalog.Names(),
		},
		Records:          len(records),
		Series:           series,
		Train:            train,
		Test:             test,
		Stationarity:     stationarity,
		TopAirlines:      airlines,
		Results:          results,
		Forecasts:        make(map[string]*model.Forecast),
		TestAccuracy:     make(map[string]evaluate.Accuracy),
		TrainingAccuracy: make(map[string]evaluate.Accuracy),
		Diagnostics:      make(map[string]*diagnostics.Report),
	}
	scoreErrs := make(map[string]error)

	done = logging.Stage(log, "evaluate")
	for _, f := range model.Successful(results) {
		name := f.Name()
		l := log.With().Str("model", name).Logger()

		forecast, err := f.Forecast(fc.Horizon, fc.Levels)
		if err != nil {
			scoreErrs[name] = fmt.Errorf("forecast: %w", err)
			l.Warn().Err(err).Msg("forecast failed")
			continue
		}
		in.Forecasts[name] = forecast

		acc, err := evaluate.Score(forecast, test, train, fc.Period)
		if err != nil {
			scoreErrs[name] = err
			l.Warn().Err(err).Msg("scoring failed")
		} else {
			in.TestAccuracy[name] = acc
			l.Info().Float64("rmse", acc.RMSE).Float64("mae", acc.MAE).Float64("mape", acc.MAPE).Msg("model scored")
		}

		if acc, err := evaluate.TrainingAccuracy(f, train, fc.Period); err != nil {
			l.Warn().Err(err).Msg("training accuracy unavailable")
		} else {
			in.TrainingAccuracy[name] = acc
		}

		if d, err := diagnostics.Check(f, cfg.Diagnostics.LjungBoxLag); err != nil {
			l.Warn().Err(err).Msg("diagnostics unavailable")
		} else {
			in.Diagnostics[name] = d
		}
	}

	in.Board, err = evaluate.Rank(results, in.TestAccuracy, scoreErrs)
	if err != nil {
		return nil, err
	}
	if best, ok := in.Board.Best(); ok {
		log.Info().Str("model", best.Model).Str("describe", best.Describe).Float64("rmse", best.Test.RMSE).Msg("best model")
	}
	done()

	return report.Build(in), nil
}

func dateRange(in config.InputConfig) (passenger.Range, error) {
	var rng passenger.Range
	var err error
	if in.From != "" {
		if rng.From, err = timeseries.ParseMonth(in.From); err != nil {
			return rng, fmt.Errorf("input.from: %w", err)
		}
	}
	if in.To != "" {
		if rng.To, err = timeseries.ParseMonth(in.To); err != nil {
			return rng, fmt.Errorf("input.to: %w", err)
		}
	}
	return rng, nil
}

func loadOptions(in config.InputConfig) *passenger.LoadOptions {
	opts := &passenger.LoadOptions{Filter: passenger.Filter{}}
	if in.Delimiter != "" {
		opts.Delimiter = rune(in.Delimiter[0])
	}
	if len(in.ActivityTypes) > 0 {
		opts.Filter[passenger.ActivityType] = in.ActivityTypes
	}
	if len(in.GeoSummaries) > 0 {
		opts.Filter[passenger.GeoSummary] = in.GeoSummaries
	}
	return opts
}
