package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized means the session could not be renewed.
	ErrUnauthorized = errors.New("session expired, run gp login")
	// ErrNotLoggedIn means no tokens are stored.
	ErrNotLoggedIn = errors.New("not logged in, run gp login")
	// ErrInvalidToken means a visitor form token is not a UUID.
	ErrInvalidToken = errors.New("invalid visitor form token")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server error: %s", http.StatusText(e.StatusCode))
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
