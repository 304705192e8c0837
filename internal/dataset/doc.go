// Package dataset loads the inputs of the chart generator.
//
// Two kinds of input are kept strictly apart:
//
//   - Measured result tables (Table), loaded from CSV files produced by the
//     training and evaluation pipeline.
//   - The illustrative dataset (Illustrative), hand-authored representative
//     numbers for the microcontroller resource dashboard and the
//     cross-deployment scenario. These are not measurements; every chart
//     drawn from them is marked as illustrative.
//
// Tables are immutable once loaded. Column lookups fail with
// ErrMissingColumn instead of falling back to defaults, and missing numeric
// cells load as NaN so that charts can skip them explicitly.
package dataset
