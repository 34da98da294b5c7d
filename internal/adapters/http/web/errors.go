package web

import "errors"

// Sentinel kinds for handler errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrRender     = errors.New("page render failed")
)
