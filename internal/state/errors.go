// Package state persists pipeline progress as a single file-backed record
// with named checkpoints and recovery.
package state

import "fmt"

// Store verdicts returned by Validate. Corrupted means the backing file is
// unparseable or schema-invalid; invalid means parseable but internally
// inconsistent.
const (
	VerdictValid     = "valid"
	VerdictInvalid   = "invalid"
	VerdictCorrupted = "corrupted"
)

// Error represents a state store failure, carrying the verdict when the
// failure is about the backing record's integrity.
type Error struct {
	Message string
	Verdict string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Verdict != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Verdict)
	}
	if e.Cause != nil {
		return fmt.Sprintf("state error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("state error: %s", msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
