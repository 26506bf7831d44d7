// Package apperr defines the error kinds the service layer surfaces to the
// API boundary: NotFound, BadRequest and Forbidden. Handlers translate them
// to 404, 400 and 403 responses.
package apperr

import (
	"errors"
	"fmt"
)

// NotFoundError indicates that a referenced record does not exist.
type NotFoundError struct {
	msg string
}

func NotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

func (e *NotFoundError) Error() string {
	return e.msg
}

// BadRequestError indicates that a business precondition failed. The message
// is caller-facing.
type BadRequestError struct {
	msg string
}

func BadRequest(format string, args ...interface{}) *BadRequestError {
	return &BadRequestError{msg: fmt.Sprintf(format, args...)}
}

func (e *BadRequestError) Error() string {
	return e.msg
}

// ForbiddenError indicates an authorization failure: the caller exists and
// the request is well formed, but the caller may not act on this resource.
type ForbiddenError struct {
	msg string
}

func Forbidden(format string, args ...interface{}) *ForbiddenError {
	return &ForbiddenError{msg: fmt.Sprintf(format, args...)}
}

func (e *ForbiddenError) Error() string {
	return e.msg
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsBadRequest(err error) bool {
	var e *BadRequestError
	return errors.As(err, &e)
}

func IsForbidden(err error) bool {
	var e *ForbiddenError
	return errors.As(err, &e)
}
