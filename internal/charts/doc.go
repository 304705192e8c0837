// Package charts renders the six synthesis charts as PNG images.
//
// Every chart is a pure builder: it takes loaded tables or the illustrative
// dataset and returns encoded PNG bytes. Builders share no state, so they
// can run in any order or concurrently, and a failure in one never affects
// another.
//
// Rendering uses go-chart for axes, series and legends. go-chart draws one
// plot per image, so multi-panel figures are composed by rendering every
// panel to its own image and drawing the panels onto a common canvas
// (see figure.go). Grouped and horizontal bars, value labels and the log10
// value axis are implemented here as custom go-chart series and ranges.
//
// Charts drawn from the illustrative dataset carry a footnote stating that
// the figures are representative estimates rather than measurements.
package charts
