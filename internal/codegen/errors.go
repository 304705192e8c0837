package codegen

import "errors"

var (
	// ErrInvalidName is returned when a function or file name cannot be
	// used as a C identifier.
	ErrInvalidName = errors.New("invalid C identifier")

	// ErrInvalidModel is returned when the model fails validation.
	ErrInvalidModel = errors.New("invalid model")
)
