package sink

import "errors"

// Sentinel kinds for sink errors. Persistence failures are non-fatal to
// the request that triggered them.
var (
	ErrLocal  = errors.New("local sink failure")
	ErrRemote = errors.New("remote sink failure")
)
