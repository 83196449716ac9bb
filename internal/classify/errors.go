// Package classify implements the deterministic rule cascade that assigns every source item to exactly one category.
package classify

import "fmt"

// ClassificationError represents a batch classification failure. The batch
// never emits partial assignments; this error carries the faulting rule when
// a rule implementation failed.
type ClassificationError struct {
	Message string
	Rule    string
	Cause   error
}

func (e *ClassificationError) Error() string {
	msg := e.Message
	if e.Rule != "" {
		msg = fmt.Sprintf("%s (rule %s)", msg, e.Rule)
	}
	if e.Cause != nil {
		return fmt.Sprintf("classification error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("classification error: %s", msg)
}

func (e *ClassificationError) Unwrap() error {
	return e.Cause
}
