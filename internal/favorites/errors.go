package favorites

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned by Toggle when no user is signed in.
// Callers redirect to SignUpPath; nothing was mutated.
var ErrUnauthenticated = errors.New("authentication required")

// ErrQueryFailed marks a failed favorites load. The caller must not treat it
// as "no favorites".
var ErrQueryFailed = errors.New("favorites query failed")

// SignUpPath is where unauthenticated toggles are redirected.
const SignUpPath = "/sign-up"

// WriteFailedError reports a reconciliation write that the store rejected.
type WriteFailedError struct {
	ScholarshipID string
	Favorited     bool // the state that could not be written
	Err           error
}

func (e *WriteFailedError) Error() string {
	return fmt.Sprintf("favorite write failed for scholarship %s (favorited=%v): %v", e.ScholarshipID, e.Favorited, e.Err)
}

func (e *WriteFailedError) Unwrap() error { return e.Err }
