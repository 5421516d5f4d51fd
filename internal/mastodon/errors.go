package mastodon

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fedipage/fedipage/internal/viewmodel"
)

// Sentinel errors. Every failure returned by Client wraps ErrRequestFailed.
var (
	ErrRequestFailed = viewmodel.ErrRequestFailed
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRateLimited   = errors.New("rate limited")
	ErrIncompatible  = errors.New("incompatible server version")
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Path       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s: %s %d: %s", ErrRequestFailed, e.Path, e.StatusCode, msg)
}

// Unwrap exposes ErrRequestFailed and the sentinel matching the status.
func (e *APIError) Unwrap() []error {
	errs := []error{ErrRequestFailed}
	switch e.StatusCode {
	case http.StatusNotFound:
		errs = append(errs, ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		errs = append(errs, ErrUnauthorized)
	case http.StatusTooManyRequests:
		errs = append(errs, ErrRateLimited)
	}
	return errs
}
