package dataset

import "errors"

var (
	// ErrMissingFile is returned when an input file does not exist.
	ErrMissingFile = errors.New("input file not found")

	// ErrMissingColumn is returned when a referenced column is absent from a table.
	ErrMissingColumn = errors.New("column not found")

	// ErrEmptyTable is returned when a CSV file has no header row.
	ErrEmptyTable = errors.New("table has no header")

	// ErrInvalidNumber is returned when a numeric cell cannot be parsed.
	ErrInvalidNumber = errors.New("invalid number")

	// ErrInvalidIllustrative is returned when the illustrative dataset is
	// structurally unusable.
	ErrInvalidIllustrative = errors.New("invalid illustrative dataset")
)
