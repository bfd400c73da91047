package formdata

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by reads on a Body after Close.
var ErrClosed = errors.New("formdata: body closed")

// FieldError reports a failure while preparing or streaming a form.
type FieldError struct {
	// Field is the name of the field that caused the failure.
	// Empty when the failure is not traceable to a single field.
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("formdata: %v", e.Err)
	}
	return fmt.Sprintf("formdata: field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(name string, err error) error {
	return &FieldError{Field: name, Err: err}
}
