package advisory

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned by providers that are not configured or cannot be reached.
var ErrUnavailable = errors.New("rebalance advisor unavailable")

// Error represents a failed advisory call
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
