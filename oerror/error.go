package oerror

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFrame is returned when a rig is configured without a frame to move.
	ErrMissingFrame = errors.New("no frame to move")
	// ErrInvalidSettings is returned when settings fail validation.
	ErrInvalidSettings = errors.New("invalid settings")
)

// Error is an error raised while setting up locomotion. It may wrap an underlying error, which can
// be matched with errors.Is and errors.As.
type Error struct {
	msg string
	err error
}

// New returns an *Error formatted like fmt.Errorf, so %w may be used. If one of args is an error,
// the first such error becomes the wrapped error.
func New(format string, args ...any) *Error {
	e := &Error{msg: fmt.Errorf(format, args...).Error()}
	for _, a := range args {
		if err, ok := a.(error); ok {
			e.err = err
			break
		}
	}
	return e
}

// Wrap returns an *Error that wraps err, with msg prepended to its message.
func Wrap(err error, msg string) *Error {
	return &Error{msg: msg + ": " + err.Error(), err: err}
}

func (e *Error) Error() string {
	return e.msg
}

// Unwrap ...
func (e *Error) Unwrap() error {
	return e.err
}
