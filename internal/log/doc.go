// Package log provides the logger used by epsfdir, built on top of the
// standard slog package.
//
// This package extends slog to provide:
//   - Masking of the user's home directory in path-like values
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Path masking
//
// Chart and export runs log input and output file paths. The PathHandler
// rewrites any string attribute that lies under the home directory to the
// "~/..." form, so debug logs can be attached to issues without exposing the
// account name.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("table loaded", "path", "/home/alice/results/stage3.csv")
//	// path=~/results/stage3.csv
//
//	slog.SetDefault(logger)
package log
