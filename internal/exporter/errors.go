package exporter

import "errors"

// ErrOutputCollision is returned when the generated header would replace
// the generated source.
var ErrOutputCollision = errors.New("header path collides with the source path")
