package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetSummary      = "Summary"
	SheetSeries       = "Series"
	SheetStationarity = "Stationarity"
	SheetTopAirlines  = "Top Airlines"
	SheetModels       = "Models"
	SheetCoefficients = "Coefficients"
	SheetAccuracy     = "Accuracy"
	SheetRanking      = "Ranking"
	SheetForecasts    = "Forecasts"
	SheetDiagnostics  = "Diagnostics"
	SheetFailures     = "Failures"
)

type table struct {
	name   string
	header []string
	rows   [][]any
}

// Workbook renders the report with one sheet per table. The caller closes
// the file.
func (r *Report) Workbook() (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, t := range r.tables() {
		if i == 0 {
			err = f.SetSheetName("Sheet1", t.name)
		} else {
			_, err = f.NewSheet(t.name)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", t.name, err)
		}
		if err := writeTable(f, t, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", t.name, err)
		}
	}
	return f, nil
}

// WriteXLSX writes the workbook to w.
func (r *Report) WriteXLSX(w io.Writer) error {
	f, err := r.Workbook()
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func writeTable(f *excelize.File, t table, headerStyle int) error {
	header := make([]any, len(t.header))
	for i, h := range t.header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.name, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(t.name, 1, 1, headerStyle); err != nil {
		return err
	}

	for i, row := range t.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.name, cell, &row); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(t.header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(t.name, "A", last, 16); err != nil {
		return err
	}
	return f.SetPanes(t.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (r *Report) tables() []table {
	return []table{
		r.summaryTable(),
		r.seriesTable(),
		r.stationarityTable(),
		r.topAirlinesTable(),
		r.modelsTable(),
		r.coefficientsTable(),
		r.accuracyTable(),
		r.rankingTable(),
		r.forecastsTable(),
		r.diagnosticsTable(),
		r.failuresTable(),
	}
}

func (r *Report) summaryTable() table {
	s := r.Settings
	rows := [][]any{
		{"Run ID", r.RunID},
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Input", s.Input},
		{"Records", r.Series.Records},
		{"Series start", r.Series.Span.Start.String()},
		{"Series end", r.Series.Span.End.String()},
		{"Observations", r.Series.Span.Len},
		{"Train", fmt.Sprintf("%s to %s (%d)", r.Series.Train.Start, r.Series.Train.End, r.Series.Train.Len)},
		{"Test", fmt.Sprintf("%s to %s (%d)", r.Series.Test.Start, r.Series.Test.End, r.Series.Test.Len)},
		{"Seasonal period", s.Period},
		{"Horizon", s.Horizon},
		{"Levels", joinFloats(s.Levels)},
		{"Ljung-Box lag", s.LjungBoxLag},
		{"Models fitted", len(r.Models)},
		{"Models failed", len(r.Failures)},
		{"Best by RMSE", r.Best},
	}
	if len(r.Ranking.ByAICc) > 0 {
		rows = append(rows, []any{"Best by AICc", r.Ranking.ByAICc[0].Model})
	}
	if st := r.Stationarity; st != nil {
		rows = append(rows,
			[]any{"ndiffs", st.NDiffs},
			[]any{"nsdiffs", st.NSDiffs},
			[]any{"Seasonal strength", st.SeasonalStrength.cell()},
			[]any{"Trend strength", st.TrendStrength.cell()},
		)
		if st.Lambda != nil {
			rows = append(rows, []any{"Guerrero lambda", st.Lambda.cell()})
		} else {
			rows = append(rows, []any{"Guerrero lambda", st.LambdaError})
		}
	}
	return table{name: SheetSummary, header: []string{"Item", "Value"}, rows: rows}
}

func (r *Report) seriesTable() table {
	t := table{name: SheetSeries, header: []string{"Period", "Passengers", "Set"}}
	var d *Decomposition
	if st := r.Stationarity; st != nil && st.Decomposition != nil && len(st.Decomposition.Trend) == len(r.Series.Points) {
		d = st.Decomposition
		t.header = append(t.header, "Trend", "Seasonal", "Residual")
	}
	for i, p := range r.Series.Points {
		row := []any{p.Period.String(), p.Value.cell(), p.Set}
		if d != nil {
			row = append(row, d.Trend[i].cell(), d.Seasonal[i].cell(), d.Residual[i].cell())
		}
		t.rows = append(t.rows, row)
	}
	return t
}

func (r *Report) stationarityTable() table {
	t := table{
		name:   SheetStationarity,
		header: []string{"Test", "Regression", "Transform", "Statistic", "p-value", "Lags", "Observations", "Stationary"},
	}
	if r.Stationarity == nil {
		return t
	}
	for _, tr := range r.Stationarity.Tests {
		t.rows = append(t.rows, []any{
			strings.ToUpper(tr.Test), tr.Regression, tr.Transform,
			tr.Statistic.cell(), tr.PValue.cell(), tr.Lags, tr.NObs, tr.Stationary,
		})
	}
	return t
}

func (r *Report) topAirlinesTable() table {
	t := table{name: SheetTopAirlines, header: []string{"Rank", "Airline", "Passengers", "Share"}}
	for i, row := range r.TopAirlines {
		t.rows = append(t.rows, []any{i + 1, row.Key, row.Count, row.Share})
	}
	return t
}

func (r *Report) modelsTable() table {
	t := table{
		name:   SheetModels,
		header: []string{"Model", "Describe", "Family", "Spec", "LogLik", "AIC", "AICc", "BIC", "Parameters", "Observations", "Duration (ms)"},
	}
	for _, m := range r.Models {
		t.rows = append(t.rows, []any{
			m.Model, m.Describe, string(m.Family), m.Spec,
			m.LogLik.cell(), m.AIC.cell(), m.AICc.cell(), m.BIC.cell(),
			m.NumParams, m.NObs, m.Duration.cell(),
		})
	}
	return t
}

func (r *Report) coefficientsTable() table {
	t := table{name: SheetCoefficients, header: []string{"Model", "Coefficient", "Value"}}
	for _, m := range r.Models {
		for _, c := range m.Coefficients {
			t.rows = append(t.rows, []any{c.Model, c.Name, c.Value.cell()})
		}
	}
	return t
}

func (r *Report) accuracyTable() table {
	t := table{
		name:   SheetAccuracy,
		header: []string{"Model", "Window", "ME", "RMSE", "MAE", "MPE", "MAPE", "MASE", "ACF1", "N"},
	}
	for _, a := range r.Accuracy {
		t.rows = append(t.rows, []any{
			a.Model, a.Window,
			a.ME.cell(), a.RMSE.cell(), a.MAE.cell(), a.MPE.cell(), a.MAPE.cell(), a.MASE.cell(), a.ACF1.cell(),
			a.N,
		})
	}
	return t
}

func (r *Report) rankingTable() table {
	t := table{
		name:   SheetRanking,
		header: []string{"Order", "Rank", "Model", "Describe", "RMSE", "MAE", "MAPE", "AICc"},
	}
	add := func(order string, rows []RankRow) {
		for _, e := range rows {
			t.rows = append(t.rows, []any{
				order, e.Rank, e.Model, e.Describe,
				e.RMSE.cell(), e.MAE.cell(), e.MAPE.cell(), e.AICc.cell(),
			})
		}
	}
	add("RMSE", r.Ranking.ByRMSE)
	add("AICc", r.Ranking.ByAICc)
	return t
}

func (r *Report) forecastsTable() table {
	t := table{name: SheetForecasts, header: []string{"Model", "Period", "Mean"}}
	for _, level := range r.Settings.Levels {
		l := strconv.FormatFloat(level, 'f', -1, 64)
		t.header = append(t.header, "Lo "+l, "Hi "+l)
	}
	for _, fc := range r.Forecasts {
		for _, p := range fc.Points {
			row := []any{fc.Model, p.Period.String(), p.Mean.cell()}
			for _, level := range r.Settings.Levels {
				lo, hi := any(nil), any(nil)
				for _, iv := range p.Intervals {
					if float64(iv.Level) == level {
						lo, hi = iv.Lower.cell(), iv.Upper.cell()
						break
					}
				}
				row = append(row, lo, hi)
			}
			t.rows = append(t.rows, row)
		}
	}
	return t
}

func (r *Report) diagnosticsTable() table {
	t := table{
		name: SheetDiagnostics,
		header: []string{
			"Model", "Lag", "FitDF", "Ljung-Box", "Ljung-Box p", "Box-Pierce", "Box-Pierce p",
			"Durbin-Watson", "Jarque-Bera", "Jarque-Bera p", "Mean", "Std dev", "White noise", "Significant lags",
		},
	}
	for _, d := range r.Diagnostics {
		row := []any{d.Model, d.Lag, d.FitDF}
		row = append(row, testCells(d.LjungBox)...)
		row = append(row, testCells(d.BoxPierce)...)
		if d.DurbinWatson != nil {
			row = append(row, d.DurbinWatson.cell())
		} else {
			row = append(row, nil)
		}
		row = append(row, testCells(d.JarqueBera)...)
		row = append(row, d.Mean.cell(), d.StdDev.cell(), d.White, joinInts(d.SignificantLags))
		t.rows = append(t.rows, row)
	}
	return t
}

func (r *Report) failuresTable() table {
	t := table{name: SheetFailures, header: []string{"Model", "Error"}}
	for _, f := range r.Failures {
		t.rows = append(t.rows, []any{f.Model, f.Error})
	}
	return t
}

func testCells(tv *TestValue) []any {
	if tv == nil {
		return []any{nil, nil}
	}
	return []any{tv.Statistic.cell(), tv.PValue.cell()}
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
