// Package ingest turns source documents (plain text, markdown, local HTML)
// into the ordered item sequence the classifier consumes. Items are numbered
// once here and never renumbered downstream.
package ingest

import "fmt"

// Error represents an ingestion failure.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ingest error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("ingest error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
