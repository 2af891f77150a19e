package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthenticated is returned by protected calls made without a token.
// No request is sent in that case.
var ErrUnauthenticated = errors.New("not logged in")

// RequestError is a completed request that came back with a non-2xx status.
type RequestError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s: API error (status %d)", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: API error (status %d): %s", e.Op, e.StatusCode, body)
}

// IsUnauthorized reports whether the server rejected the credential.
func (e *RequestError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// TransportError is a request that never produced a response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err means the user has to log in (again).
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthenticated) {
		return true
	}
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.IsUnauthorized()
}

// Describe renders err as a short message fit for an inline panel or toast.
func Describe(err error) string {
	var (
		reqErr       *RequestError
		transportErr *TransportError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return "Please log in to continue"
	case errors.As(err, &reqErr):
		body := strings.TrimSpace(reqErr.Body)
		if body == "" {
			return fmt.Sprintf("Error: %d", reqErr.StatusCode)
		}
		return fmt.Sprintf("Error: %d %s", reqErr.StatusCode, body)
	case errors.As(err, &transportErr):
		return transportErr.Err.Error()
	default:
		return err.Error()
	}
}
