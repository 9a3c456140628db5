// Command paxcast forecasts monthly airport passenger traffic.
//
// It loads the passenger activity file, builds the monthly total series,
// fits the model catalog to all but the last holdout months, scores every
// model on the holdout, checks residuals and writes report.json,
// report.xlsx and CSV series into the report directory.
//
// Configuration comes from defaults, paxcast.yaml (or $PAXCAST_CONFIG),
// PAXCAST_ environment variables (a .env file is loaded first) and flags:
//
//	paxcast -input air_traffic.csv -out out
//	PAXCAST_FORECAST__HORIZON=48 paxcast -models ets_auto,arima_stepwise
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/sartorproj/paxcast/internal/config"
	"github.com/sartorproj/paxcast/internal/logging"
	"github.com/sartorproj/paxcast/internal/pipeline"
	"github.com/sartorproj/paxcast/report"
)

var (
	configPath = flag.String("config", "", "configuration file (default $PAXCAST_CONFIG or ./paxcast.yaml)")
	inputPath  = flag.String("input", "", "passenger activity file (overrides input.path)")
	outDir     = flag.String("out", "", "report directory (overrides report.dir)")
	models     = flag.String("models", "", "comma-separated catalog entries to fit (overrides fit.models)")
	logLevel   = flag.String("log-level", "", "log level (overrides logging.level)")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "paxcast: load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath, overrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "paxcast: %v\n", err)
		os.Exit(2)
	}

	logging.Init(cfg.Logging)
	runID := uuid.NewString()
	log := logging.With(runID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	log.Info().
		Str("input", cfg.Input.Path).
		Int("holdout", cfg.Forecast.Holdout).
		Int("horizon", cfg.Forecast.Horizon).
		Int("workers", cfg.Fit.Workers).
		Msg("paxcast starting")

	rep, err := pipeline.Run(ctx, cfg, runID)
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		stop()
		os.Exit(1)
	}

	done := logging.Stage(log, "report")
	written, err := rep.WriteFiles(cfg.Report.Dir, report.Outputs{
		JSON: cfg.Report.JSON,
		XLSX: cfg.Report.XLSX,
		CSV:  cfg.Report.CSV,
	})
	if err != nil {
		log.Error().Err(err).Msg("writing report failed")
		stop()
		os.Exit(1)
	}
	for _, path := range written {
		log.Info().Str("path", path).Msg("report written")
	}
	done()

	if len(rep.Models) == 0 {
		log.Error().Int("failed", len(rep.Failures)).Msg("no model could be fitted")
		stop()
		os.Exit(1)
	}
	log.Info().Str("best", rep.Best).Int("models", len(rep.Models)).Int("failed", len(rep.Failures)).Msg("paxcast finished")
}

// overrides maps the flags that were set to configuration keys.
func overrides() map[string]any {
	out := make(map[string]any)
	if *inputPath != "" {
		out["input.path"] = *inputPath
	}
	if *outDir != "" {
		out["report.dir"] = *outDir
	}
	if *models != "" {
		out["fit.models"] = *models
	}
	if *logLevel != "" {
		out["logging.level"] = *logLevel
	}
	return out
}
