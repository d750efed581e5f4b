package comment

import (
	"errors"
	"strings"
)

// Validation failures, reported on a field through ValidationError.
var (
	ErrBlank     = errors.New("can't be blank")
	ErrDuplicate = errors.New("is a duplicate of the previous comment")
	ErrNotFound  = errors.New("not found")
	ErrNegative  = errors.New("must be greater than or equal to 0")
)

// FieldError is a validation failure on one attribute.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return e.Field + " " + e.Err.Error()
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// ValidationError collects the field errors that stopped a comment from
// being saved. errors.Is matches any of the wrapped sentinels.
type ValidationError struct {
	Fields []FieldError
}

// Add records a failure on field.
func (e *ValidationError) Add(field string, err error) {
	e.Fields = append(e.Fields, FieldError{Field: field, Err: err})
}

// On returns the failures recorded on field.
func (e *ValidationError) On(field string) []error {
	var errs []error
	for _, fe := range e.Fields {
		if fe.Field == field {
			errs = append(errs, fe.Err)
		}
	}
	return errs
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		msgs[i] = fe.Error()
	}
	return "invalid comment: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Fields))
	for i, fe := range e.Fields {
		errs[i] = fe
	}
	return errs
}

// errOrNil returns e as an error only when it holds failures.
func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
