package apperror

import (
	"errors"
	"fmt"
)

// ErrUsage marks errors caused by bad user input (malformed payload JSON,
// GET with a non-object payload). main maps it to exit code 1; every other
// failure is reported and the process still exits 0.
var ErrUsage = errors.New("usage error")

type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func (e *usageError) Unwrap() error { return ErrUsage }

// Usagef builds a usage error with a formatted message. The result matches
// ErrUsage under errors.Is while keeping the message clean for printing.
func Usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}
