package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// CodeTokenSecurityViolation is the 403 code the backend uses when it has
// revoked the caller's token.
const CodeTokenSecurityViolation = "TOKEN_SECURITY_VIOLATION"

// ErrSessionInvalidated marks errors after which the operator must be logged out.
var ErrSessionInvalidated = errors.New("session invalidated by backend")

// APIError is a non-2xx backend response.
type APIError struct {
	Status      int
	Code        string
	ErrorText   string
	Message     string
	Requires2FA bool
	TwoFAToken  string
	// Invalidated is set when the response revoked the caller's session.
	Invalidated bool
}

func (e *APIError) Error() string {
	if msg := e.Display(); msg != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// Is lets errors.Is(err, ErrSessionInvalidated) see through an APIError.
func (e *APIError) Is(target error) bool {
	return target == ErrSessionInvalidated && e.Invalidated
}

// Display is the operator-facing text: message first, then the error field.
func (e *APIError) Display() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorText
}

// invalidatesSession reports whether the response revokes the bearer token.
func (e *APIError) invalidatesSession() bool {
	if e.Status == http.StatusUnauthorized {
		return true
	}
	return e.Status == http.StatusForbidden && e.Code == CodeTokenSecurityViolation
}

type errorBody struct {
	Error       json.RawMessage `json:"error"`
	Message     string          `json:"message"`
	Code        string          `json:"code"`
	Requires2FA bool            `json:"requires_2fa"`
	TwoFAToken  string          `json:"two_fa_token"`
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return apiErr
	}
	apiErr.Message = eb.Message
	apiErr.Code = eb.Code
	apiErr.Requires2FA = eb.Requires2FA
	apiErr.TwoFAToken = eb.TwoFAToken
	var text string
	if json.Unmarshal(eb.Error, &text) == nil {
		apiErr.ErrorText = text
	}
	return apiErr
}

// AsAPIError unwraps err into an APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusOf returns the backend status behind err, or 0 for transport failures.
func StatusOf(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the backend's own text for err, falling back when the
// failure was a transport error or carried no message.
func MessageOf(err error, fallback string) string {
	if apiErr, ok := AsAPIError(err); ok && apiErr.Display() != "" {
		return apiErr.Display()
	}
	return fallback
}

// ErrorTextOf is MessageOf with the error field first. The login endpoint
// puts the operator-facing reason in "error" and a generic status word in
// "message".
func ErrorTextOf(err error, fallback string) string {
	apiErr, ok := AsAPIError(err)
	switch {
	case !ok:
		return fallback
	case apiErr.ErrorText != "":
		return apiErr.ErrorText
	case apiErr.Message != "":
		return apiErr.Message
	}
	return fallback
}

// IsSessionInvalidated reports whether err forced a logout.
func IsSessionInvalidated(err error) bool {
	return errors.Is(err, ErrSessionInvalidated)
}
