package errors

import (
	"errors"
	"fmt"
)

// fatalError marks an error whose message is shown to the user before the
// program exits non-zero.
type fatalError struct {
	msg string
	err error
}

func (e *fatalError) Error() string { return e.msg }

func (e *fatalError) Unwrap() error { return e.err }

// IsFatal reports whether err carries a fatal marker anywhere in its chain.
func IsFatal(err error) bool {
	var fatal *fatalError
	return errors.As(err, &fatal)
}

// Fatal returns an error marked fatal with the given message.
func Fatal(s string) error {
	return Wrap(&fatalError{msg: s}, "Fatal")
}

// Fatalf formats a fatal error. When one of the arguments is an error, the
// last such argument becomes the wrapped cause so errors.Is/As keep working
// through the marker.
func Fatalf(s string, data ...interface{}) error {
	var cause error
	for i := len(data) - 1; i >= 0; i-- {
		if err, ok := data[i].(error); ok {
			cause = err
			break
		}
	}

	return Wrap(&fatalError{msg: fmt.Sprintf(s, data...), err: cause}, "Fatal")
}
