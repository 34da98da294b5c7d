package regression

import "errors"

// Sentinel kinds for model errors.
var (
	ErrLoadArtifact    = errors.New("model artifact read failed")
	ErrBadArtifact     = errors.New("model artifact malformed")
	ErrFeatureMismatch = errors.New("feature vector length mismatch")
)
