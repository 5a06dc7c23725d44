package state

import (
	"errors"
	"fmt"
	"strings"
)

// Validation error codes (E200-E299)
const (
	// Snapshot-level errors (E200-E209)
	ErrStateMissing    = "E200" // state is null
	ErrSnapshotParse   = "E201" // snapshot text is not JSON
	ErrSnapshotInvalid = "E202" // snapshot parsed but has field errors

	// Field errors (E210-E219)
	ErrWrongType      = "E210" // discriminant does not match
	ErrNotArray       = "E211" // field must be an array
	ErrNotBoolean     = "E212" // field must be a boolean
	ErrNotInteger     = "E213" // field must be an integer, optionally bounded
	ErrNumberRange    = "E214" // field must be a number within a range
	ErrElementsDecode = "E215" // elements do not decode into the element type
	ErrCursorsInvalid = "E216" // front/rear/size combination rejected
)

// ValidationError describes one problem with a state record.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// SnapshotError is returned when a serialized snapshot cannot be turned into
// a state record. Errors holds the parse error, or the "not a valid" summary
// followed by every field error, in that order.
type SnapshotError struct {
	Kind   string
	Errors []ValidationError
}

// Error joins the messages one per line.
func (e *SnapshotError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Message
	}
	return strings.Join(msgs, "\n")
}

// Messages returns the bare messages without codes.
func (e *SnapshotError) Messages() []string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Message
	}
	return msgs
}

// IsSnapshotError returns true if err is or wraps a *SnapshotError.
func IsSnapshotError(err error) bool {
	var se *SnapshotError
	return errors.As(err, &se)
}

func parseError(kind string, err error) *SnapshotError {
	return &SnapshotError{
		Kind: kind,
		Errors: []ValidationError{{
			Message: err.Error(),
			Code:    ErrSnapshotParse,
		}},
	}
}

func invalidError(kind string, errs []ValidationError) *SnapshotError {
	all := make([]ValidationError, 0, len(errs)+1)
	all = append(all, ValidationError{
		Message: fmt.Sprintf("state is not a valid %sState", kind),
		Code:    ErrSnapshotInvalid,
	})
	all = append(all, errs...)
	return &SnapshotError{Kind: kind, Errors: all}
}

func missingStateErrors() []ValidationError {
	return []ValidationError{{
		Message: "state is null or undefined",
		Code:    ErrStateMissing,
	}}
}
