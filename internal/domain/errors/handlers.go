package errors

import (
	"coursecraft/internal/errors"
)

// ValidationError collects field-level failures for a single request or commit.
type ValidationError struct {
	base   *BaseError
	Fields map[string]string
}

// NewValidationError wraps base with the offending fields.
func NewValidationError(base *BaseError, fields map[string]string) *ValidationError {
	return &ValidationError{base: base, Fields: fields}
}

func (e *ValidationError) Error() string     { return e.base.Error() }
func (e *ValidationError) HTTPCode() int     { return e.base.HTTPCode() }
func (e *ValidationError) ErrorCode() string { return e.base.ErrorCode() }
func (e *ValidationError) Message() string   { return e.base.Message() }
func (e *ValidationError) Details() string   { return e.base.Details() }
func (e *ValidationError) Unwrap() error     { return e.base }

// FieldErrors returns the field map of the first ValidationError in err's chain.
func FieldErrors(err error) map[string]string {
	if verr, ok := errors.AsType[*ValidationError](err); ok {
		return verr.Fields
	}

	return nil
}
