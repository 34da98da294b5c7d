package session

import "errors"

// Sentinel kinds for session store errors.
var (
	ErrStore = errors.New("session store failure")
)
