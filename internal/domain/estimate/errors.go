package estimate

import "errors"

// Sentinel kinds for pipeline errors. Both block the user-visible action
// that produced them; nothing is persisted on either.
var (
	ErrValidation = errors.New("invalid line item input")
	ErrModel      = errors.New("model invocation failed")
)
