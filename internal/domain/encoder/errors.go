package encoder

import "errors"

// Sentinel kinds for encoder artifact errors.
var (
	ErrLoadArtifact = errors.New("encoder artifact read failed")
	ErrBadArtifact  = errors.New("encoder artifact malformed")
)
