// Package pipeline runs the chart steps and writes their images.
//
// Each Step renders one artifact in memory. The pipeline writes the bytes
// to <output-dir>/<name>.png through a temporary file and a rename, so a
// crashed or interrupted run never leaves a truncated image behind.
//
// Failures are isolated: by default a failing step is recorded and the
// remaining steps still run. WithContinueOnError(false) stops at the first
// failure and reports the steps that did not run as cancelled. With
// WithConcurrency(n) up to n steps render at once using errgroup; results
// are still reported in step order.
package pipeline
