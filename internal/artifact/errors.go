package artifact

import "errors"

// ErrNoArtifacts is returned when no file in the artifact directory matches
// the filter.
var ErrNoArtifacts = errors.New("no model artifacts found")
