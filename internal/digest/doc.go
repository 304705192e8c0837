// Package digest computes the content digests recorded for charts and model
// artifacts.
//
// Digests are hex-encoded SHA3-256 sums. The history database compares
// them between runs to tell whether a chart changed, and generated C
// sources carry the digest of the artifact they came from.
package digest
