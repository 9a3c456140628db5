// Package report assembles the output of a forecasting run and writes it as
// JSON, as an xlsx workbook with one sheet per table, and as ds,y CSV files.
//
// Every float in a Report is a Float, which encodes NaN and infinities as
// JSON null and as an empty spreadsheet cell. Undefined metrics such as the
// MASE of a series too short for a seasonal naive scale therefore survive
// serialisation.
package report
