// Package artifact finds serialized model artifacts on disk.
//
// Artifact file names follow the convention
//
//	<kind>_<pruning>_<panel>_<timestamp>.<ext>
//
// for example voltage_rf_pruned50_+X_20230215.json. Parse recovers the
// parts best effort; Select picks the newest artifact matching a Filter.
//
// "Newest" is decided by the parsed timestamp and then by file name, so
// for zero-padded timestamps the result equals the lexicographically
// greatest name.
package artifact
