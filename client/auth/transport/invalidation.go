package transport

import (
	"fmt"
	"strings"
)

// Invalidation controls when a stored claims challenge is removed.
type Invalidation int

const (
	// InvalidateNever keeps challenges until replaced or cleared.
	InvalidateNever Invalidation = iota
	// InvalidateOnRetrySuccess removes a method's challenge once its replay succeeds.
	InvalidateOnRetrySuccess
)

func (i Invalidation) String() string {
	switch i {
	case InvalidateOnRetrySuccess:
		return "on-retry-success"
	default:
		return "never"
	}
}

// ParseInvalidation parses "never" or "on-retry-success"; empty means never.
func ParseInvalidation(value string) (Invalidation, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "never":
		return InvalidateNever, nil
	case "on-retry-success", "onretrysuccess":
		return InvalidateOnRetrySuccess, nil
	}
	return InvalidateNever, fmt.Errorf("unsupported invalidation policy: %v", value)
}
