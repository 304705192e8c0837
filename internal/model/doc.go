// Package model defines the result structures shared by the chart
// pipeline, the exporter, the report writers and the history database.
//
// This package contains the following main types:
//   - ChartResult: The outcome of rendering and saving one chart
//   - RunReport: All chart results of one charts run
//   - ExportReport: The outcome of one model export
//
// The types live in their own package so that pipeline, report and database
// can share them without importing each other.
package model
