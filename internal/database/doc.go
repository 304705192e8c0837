// Package database provides SQLite-based run history for epsfdir.
//
// This package implements the HistoryDB, which stores:
//   - One row per charts run or model export (table runs)
//   - One row per chart, generated source or model input of a run, with
//     its size and SHA3-256 digest (table artifacts)
//
// The history answers "when was this chart last regenerated and did its
// content change" without keeping the images themselves.
//
// SQLite (via modernc.org/sqlite) keeps the history in a single file and,
// being CGO-free, cross-compiles with the rest of the binary.
package database
