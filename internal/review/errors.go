package review

import "errors"

// Sentinel errors for session control flow. Check with errors.Is.
var (
	// ErrEmptySession - a session was started with nothing due
	ErrEmptySession = errors.New("review: no due units to review")
	// ErrSessionNotActive - a rating or pause was attempted outside the active state
	ErrSessionNotActive = errors.New("review: session is not active")
	// ErrSessionNotPaused - resume was called on a session that is not paused
	ErrSessionNotPaused = errors.New("review: session is not paused")
	// ErrSessionComplete - the session already reached its terminal state
	ErrSessionComplete = errors.New("review: session already complete")
)
