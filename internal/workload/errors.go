package workload

import "fmt"

// InputError reports a caller-supplied parameter that cannot be used.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// RecordError reports a collaborator record that cannot be aggregated.
type RecordError struct {
	Message string
	Cause   error
}

func (e *RecordError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed record: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed record: %s", e.Message)
}

func (e *RecordError) Unwrap() error {
	return e.Cause
}
