package errors

import "fmt"

// PersistenceError marks an unexpected storage failure. It is distinct
// from validation failures so handlers can surface a generic message
// instead of field details.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Persistence wraps a storage error with the failing operation. Returns
// nil when err is nil so repository methods can wrap unconditionally.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
