package identity

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies identity failures.
type Kind string

const (
	// KindPopupBlocked reports the popup flow could not open its window (browser).
	KindPopupBlocked Kind = "popup_window_error"
	// KindEmptyWindow reports the popup flow completed without an authorization response.
	KindEmptyWindow Kind = "empty_window_error"
	// KindInteractionRequired reports silent acquisition needs the user.
	KindInteractionRequired Kind = "interaction_required"
	// KindNoAccount reports a silent request without an account.
	KindNoAccount Kind = "no_account_error"
	// KindUserCancelled reports the user or the caller abandoned an interactive flow.
	KindUserCancelled Kind = "user_cancelled"
	// KindStateMismatch reports a redirect response that does not belong to the request.
	KindStateMismatch Kind = "state_mismatch"
	// KindServer reports an error response from the authorization server.
	KindServer Kind = "server_error"
	// KindUnknown is any other failure.
	KindUnknown Kind = "unknown_error"
)

// Error is an identity failure of a given kind.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates an identity error.
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of an identity error anywhere in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var identityErr *Error
	if errors.As(err, &identityErr) {
		return identityErr.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindUserCancelled
	}
	return KindUnknown
}

// IsPopupFailure reports whether err means the popup could not be used, which
// makes the redirect flow the fallback.
func IsPopupFailure(err error) bool {
	switch KindOf(err) {
	case KindPopupBlocked, KindEmptyWindow:
		return true
	}
	return false
}
