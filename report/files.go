package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/sartorproj/paxcast/timeseries"
)

// Output file names within the report directory.
const (
	JSONFile   = "report.json"
	XLSXFile   = "report.xlsx"
	SeriesFile = "series.csv"
)

// Outputs selects the files WriteFiles produces.
type Outputs struct {
	JSON bool
	XLSX bool
	// CSV writes the passenger series and one forecast_<model>.csv of point
	// forecasts per model.
	CSV bool
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// ForecastFile returns the CSV file name for a model's point forecasts.
func ForecastFile(name string) string {
	return "forecast_" + unsafeName.ReplaceAllString(name, "_") + ".csv"
}

// WriteFiles writes the selected outputs into dir, creating it if needed,
// and returns the paths written.
func (r *Report) WriteFiles(dir string, out Outputs) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	var written []string
	if out.JSON {
		path := filepath.Join(dir, JSONFile)
		if err := r.writeJSONFile(path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if out.XLSX {
		path := filepath.Join(dir, XLSXFile)
		f, err := r.Workbook()
		if err != nil {
			return written, err
		}
		err = f.SaveAs(path)
		f.Close()
		if err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	if out.CSV {
		if r.series != nil {
			path := filepath.Join(dir, SeriesFile)
			if err := timeseries.SaveCSV(r.series, path); err != nil {
				return written, fmt.Errorf("write %s: %w", path, err)
			}
			written = append(written, path)
		}
		for _, fc := range r.forecasts {
			path := filepath.Join(dir, ForecastFile(fc.Model))
			if err := timeseries.SaveCSV(fc.Mean(), path); err != nil {
				return written, fmt.Errorf("write %s: %w", path, err)
			}
			written = append(written, path)
		}
	}
	return written, nil
}

func (r *Report) writeJSONFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := r.WriteJSON(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
