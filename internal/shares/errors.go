package shares

import "errors"

var (
	// ErrNotFound means no grant exists for the id or token.
	ErrNotFound = errors.New("share not found")
	// ErrShareInactive means the grant was deactivated.
	ErrShareInactive = errors.New("share is no longer active")
	// ErrShareExpired means the grant's deadline passed.
	ErrShareExpired = errors.New("share has expired")
	// ErrShareLimitReached means the access budget is used up.
	ErrShareLimitReached = errors.New("share access limit reached")
)
