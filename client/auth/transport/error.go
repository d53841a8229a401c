package transport

import (
	"errors"
	"fmt"
)

// UnknownHeader is the body callers historically received for a 401 without a
// WWW-Authenticate header.
const UnknownHeader = `{"error":"unknown header"}`

// ErrUnknownHeader reports a 401 response that carries no WWW-Authenticate header.
var ErrUnknownHeader = errors.New("unknown header")

// InteractiveAuthError reports that interactive token acquisition failed while
// recovering from a claims challenge.
type InteractiveAuthError struct {
	// Flow is "popup" or "redirect", the last flow attempted.
	Flow   string
	Method string
	Err    error
}

func (e *InteractiveAuthError) Error() string {
	return fmt.Sprintf("%s authorization for %s failed: %v", e.Flow, e.Method, e.Err)
}

func (e *InteractiveAuthError) Unwrap() error { return e.Err }
