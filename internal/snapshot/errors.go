package snapshot

import "fmt"

// Error represents a snapshot that cannot be read or is invalid
type Error struct {
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("snapshot %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("snapshot %s: %s", e.Path, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
