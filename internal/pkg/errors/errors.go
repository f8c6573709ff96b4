package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is the sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrCircuitOpen signals a tripped circuit breaker; callers should back off
	// instead of retrying immediately.
	ErrCircuitOpen = errors.New("circuit open")
)

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// SourceError wraps a transaction source failure with the source's name so the
// caller can tell which upstream misbehaved.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// IsPermanent reports whether err is a caller fault that retrying cannot fix.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrNotFound)
}

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }
