package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Key-value backends and the session
// store return these (optionally wrapped) so callers can branch with errors.Is
// without knowing which backend is wired:
//   - ErrNotFound: key is absent from the store
//   - ErrUnavailable: backend could not be reached or written
//   - ErrInvalidState: session is in the wrong state for the requested transition
var (
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)
