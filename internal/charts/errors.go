package charts

import "errors"

var (
	// ErrRender is returned when a chart cannot be drawn from its inputs.
	ErrRender = errors.New("render failed")

	// ErrNoRows is returned when a configured target has no rows in the
	// multi-target table.
	ErrNoRows = errors.New("no rows")

	// ErrMissingPanel is returned when a panel of the stage 3 table has no
	// counterpart in the stage 4 table.
	ErrMissingPanel = errors.New("panel missing")
)
