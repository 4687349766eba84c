package authhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrNoRefreshCredential is the cause on a 401 that could not be recovered
// because no refresh credential was stored.
var ErrNoRefreshCredential = errors.New("authhttp: no refresh credential")

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 64 << 10

// APIError is a non-2xx response. It is the same value for passthrough
// statuses and for a 401 whose recovery failed; Cause is set in the latter.
type APIError struct {
	StatusCode int
	Method     string
	URL        string

	// Code and Message are parsed from the body when it has a known shape.
	Code    string
	Message string
	Body    []byte

	// Cause explains why a 401 was not recovered. Nil otherwise.
	Cause error
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: HTTP %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Code != "" {
		fmt.Fprintf(&b, ": %s", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, " (recovery: %v)", e.Cause)
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Cause }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// RenewalError is the cause on a 401 whose renewal exchange failed.
type RenewalError struct {
	StatusCode int // 0 when the exchange never got a response
	Err        error
}

func (e *RenewalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("credential renewal failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("credential renewal failed: %v", e.Err)
}

func (e *RenewalError) Unwrap() error { return e.Err }

// newAPIError consumes and closes resp.Body.
func newAPIError(resp *http.Response) *APIError {
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Body:       body,
	}
	if resp.Request != nil {
		apiErr.Method = resp.Request.Method
		apiErr.URL = resp.Request.URL.Redacted()
	}
	apiErr.Code, apiErr.Message = parseErrorBody(body)
	return apiErr
}

// parseErrorBody understands the error shapes the backend and its proxies
// produce: OAuth2 ({error, error_description}), FastAPI ({detail}) and
// {code, message}.
func parseErrorBody(body []byte) (code, message string) {
	if len(body) == 0 {
		return "", ""
	}

	var oauthErr struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &oauthErr); err == nil && oauthErr.Error != "" {
		return oauthErr.Error, oauthErr.ErrorDescription
	}

	var detailErr struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &detailErr); err == nil && len(detailErr.Detail) > 0 {
		var s string
		if err := json.Unmarshal(detailErr.Detail, &s); err == nil {
			return "", s
		}
		// Validation errors carry a list; keep it raw.
		return "", string(detailErr.Detail)
	}

	var msgErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &msgErr); err == nil && (msgErr.Code != "" || msgErr.Message != "") {
		return msgErr.Code, msgErr.Message
	}

	return "", ""
}
