package authsdk

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/quill/pkg/authhttp"
)

var (
	// ErrInvalidCredentials is returned when the backend refuses a login.
	ErrInvalidCredentials = errors.New("authsdk: invalid username or password")

	// ErrMissingAccessToken is returned when a login succeeds without a token.
	ErrMissingAccessToken = errors.New("authsdk: login response has no access token")

	ErrEmptyUsername = errors.New("authsdk: username is required")
)

// loginError keeps the APIError reachable with errors.As while matching
// ErrInvalidCredentials with errors.Is.
type loginError struct {
	err *authhttp.APIError
}

func (e *loginError) Error() string { return ErrInvalidCredentials.Error() + ": " + e.err.Error() }

func (e *loginError) Unwrap() []error { return []error{ErrInvalidCredentials, e.err} }

func classifyLoginError(err error) error {
	var apiErr *authhttp.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusBadRequest:
			return &loginError{err: apiErr}
		}
	}
	return err
}
