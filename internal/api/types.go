package api

import (
	"errors"
	"fmt"
)

// ErrNoToken is returned by account calls made without a token.
var ErrNoToken = errors.New("no auth token")

type SignInResponse struct {
	User Account `json:"user"`
}

type Account struct {
	ID        int64  `json:"id"`
	UUID      string `json:"uuid"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Title     string `json:"title"`
	AuthToken string `json:"authToken"`
}

// StatusError is a non-2xx response. Err holds the decoded
// *mediacontainer.ServiceError when the body carried one.
type StatusError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("http %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("http %d %s", e.StatusCode, e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Unauthorized reports whether the server rejected the token.
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
