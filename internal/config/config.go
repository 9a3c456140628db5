// Package config loads the pipeline configuration.
//
// Values are layered, later layers winning:
//
//  1. Defaults (DefaultConfig)
//  2. Optional YAML file: the explicit path, else $PAXCAST_CONFIG, else
//     paxcast.yaml in the working directory
//  3. Environment: PAXCAST_ prefix, "__" between levels, e.g.
//     PAXCAST_FORECAST__HORIZON=48 or PAXCAST_FIT__TIMEOUT=90s
//  4. Overrides (command-line flags)
//
// The result is validated with go-playground/validator.
package config

import (
	"runtime"
	"time"

	"github.com/sartorproj/paxcast/internal/logging"
)

// Config is the complete pipeline configuration.
type Config struct {
	Input       InputConfig       `koanf:"input"`
	Forecast    ForecastConfig    `koanf:"forecast"`
	Fit         FitConfig         `koanf:"fit"`
	Diagnostics DiagnosticsConfig `koanf:"diagnostics"`
	Report      ReportConfig      `koanf:"report"`
	Logging     logging.Config    `koanf:"logging"`
}

// InputConfig selects and filters the passenger data.
type InputConfig struct {
	Path      string `koanf:"path" validate:"required"`
	Delimiter string `koanf:"delimiter" validate:"omitempty,len=1"`

	// From and To bound the activity periods (YYYYMM, inclusive).
	From string `koanf:"from" validate:"omitempty,len=6,numeric"`
	To   string `koanf:"to" validate:"omitempty,len=6,numeric"`

	// ActivityTypes and GeoSummaries keep only matching records when set.
	ActivityTypes []string `koanf:"activity_types"`
	GeoSummaries  []string `koanf:"geo_summaries"`
}

// ForecastConfig holds the evaluation window and forecast horizon.
type ForecastConfig struct {
	Period  int       `koanf:"period" validate:"gte=2"`
	Holdout int       `koanf:"holdout" validate:"gte=1"`
	Horizon int       `koanf:"horizon" validate:"gtefield=Holdout"`
	Levels  []float64 `koanf:"levels" validate:"min=1,dive,gt=0,lt=100"`
}

// FitConfig controls model fitting.
type FitConfig struct {
	Workers int           `koanf:"workers" validate:"gte=1"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	// Models restricts the catalog to the named entries; empty fits all.
	Models []string `koanf:"models"`
}

// DiagnosticsConfig controls the residual tests.
type DiagnosticsConfig struct {
	LjungBoxLag int `koanf:"ljung_box_lag" validate:"gte=1"`
}

// ReportConfig selects the report outputs.
type ReportConfig struct {
	Dir      string `koanf:"dir" validate:"required"`
	JSON     bool   `koanf:"json"`
	XLSX     bool   `koanf:"xlsx"`
	CSV      bool   `koanf:"csv"`
	ShareTop int    `koanf:"share_top" validate:"gte=1"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Path:      "air_traffic.csv",
			Delimiter: ",",
		},
		Forecast: ForecastConfig{
			Period:  12,
			Holdout: 12,
			Horizon: 36,
			Levels:  []float64{80, 95},
		},
		Fit: FitConfig{
			Workers: runtime.NumCPU(),
			Timeout: 2 * time.Minute,
		},
		Diagnostics: DiagnosticsConfig{
			LjungBoxLag: 24,
		},
		Report: ReportConfig{
			Dir:      "out",
			JSON:     true,
			XLSX:     true,
			CSV:      true,
			ShareTop: 10,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "console",
		},
	}
}
