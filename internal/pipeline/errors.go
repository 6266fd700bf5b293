package pipeline

import "fmt"

// ValidationError rejects a submission before any side effect runs. Surfaced
// to the caller as a 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// PersistenceError reports that the authoritative report write failed.
// Surfaced to the caller as a 500; the caller should retry.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to store report: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
