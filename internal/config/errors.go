package config

import "errors"

// Configuration validation errors.
// These errors are returned by the Validate methods and provide specific
// information about what is wrong with the configuration.
//
// Package-level sentinels let callers use errors.Is() for programmatic
// handling while still producing human-readable messages.
var (
	// ErrEmptyOutputDir is returned when no chart output directory is set.
	ErrEmptyOutputDir = errors.New("invalid output directory: must not be empty")

	// ErrInvalidDPI is returned when the chart resolution is not positive.
	ErrInvalidDPI = errors.New("invalid dpi: must be positive")

	// ErrInvalidJobs is returned when the number of concurrent chart renders is not positive.
	ErrInvalidJobs = errors.New("invalid jobs: must be positive")

	// ErrEmptyModelColumn is returned when the model column for the panel
	// comparison is empty.
	ErrEmptyModelColumn = errors.New("invalid model column: must not be empty")

	// ErrNoTargets is returned when the multi-target chart has no target quantities.
	ErrNoTargets = errors.New("no target quantities configured")

	// ErrEmptyModelKind is returned when the artifact model-kind tag is empty.
	ErrEmptyModelKind = errors.New("invalid model kind: must not be empty")

	// ErrEmptyPanel is returned when no panel identifier is given for export.
	ErrEmptyPanel = errors.New("invalid panel: must not be empty")

	// ErrInvalidFunctionName is returned when the generated function name is
	// not a valid C identifier.
	ErrInvalidFunctionName = errors.New("invalid function name: must be a C identifier")

	// ErrInvalidPreviewLines is returned when the number of preview lines is negative.
	// Use 0 to disable the preview.
	ErrInvalidPreviewLines = errors.New("invalid preview lines: must be non-negative")

	// ErrEmptyOutputFile is returned when the generated source file name is empty.
	ErrEmptyOutputFile = errors.New("invalid output file: must not be empty")

	// ErrOutputCollision is returned when the header or the Markdown summary
	// would be written over the generated source, e.g. an output file ending
	// in ".h" or ".md".
	ErrOutputCollision = errors.New("invalid output file: header or summary path equals the source path")
)
