// Package main provides the entry point for the epsfdir CLI.
//
// epsfdir supports the EPS predictive FDIR workflow. It renders the synthesis
// charts from the analysis result tables and exports the newest trained
// voltage model as C source for the flight software.
//
// Usage:
//
//	epsfdir charts
//	epsfdir export --panel +X
//
// See --help for all available options.
package main

// main is the entry point for epsfdir.
func main() {
	Execute()
}
