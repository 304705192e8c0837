package forest

import "errors"

var (
	// ErrDecode is returned when a model file cannot be read or is not a
	// valid model document.
	ErrDecode = errors.New("failed to decode model")

	// ErrFeatureCount is returned when Predict receives the wrong number of
	// features.
	ErrFeatureCount = errors.New("wrong number of features")
)
