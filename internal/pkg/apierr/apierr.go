package apierr

import (
	"fmt"
	"net/http"

	errs "github.com/ybotello/finstream-backend/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps an internal error onto a stable status class. Unexpected
// errors are reported generically so internal detail never leaks to clients.
func FromError(err error) *Error {
	var srcErr *errs.SourceError
	switch {
	case err == nil:
		return nil
	case errs.Is(err, errs.ErrInvalidArgument):
		return New(http.StatusBadRequest, "invalid_argument", err)
	case errs.Is(err, errs.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errs.Is(err, errs.ErrCircuitOpen):
		return New(http.StatusServiceUnavailable, "circuit_open", err)
	case errs.As(err, &srcErr):
		return New(http.StatusServiceUnavailable, "source_unavailable", err)
	default:
		return New(http.StatusInternalServerError, "internal", fmt.Errorf("internal error"))
	}
}
