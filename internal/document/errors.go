package document

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound means the document does not exist for the caller, or is not public on the public path.
	ErrNotFound = errors.New("document not found")
	// ErrTransactionFailed wraps storage faults raised inside a save; nothing was applied.
	ErrTransactionFailed = errors.New("document transaction failed")
)

// ValidationError carries field-level detail for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError with a single field message.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
