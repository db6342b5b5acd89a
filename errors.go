package classAuth

import (
	"errors"
	"net/http"
)

var (
	// ErrNoCredential is returned when neither the accessToken cookie nor a
	// Bearer Authorization header carries a credential.
	ErrNoCredential = errors.New("no token provided")
	// ErrCredentialExpired is returned for an authentic credential whose exp
	// claim has passed. Clients treat it differently from ErrTokenInvalid.
	ErrCredentialExpired = errors.New("token expired")
	// ErrTokenInvalid covers bad encoding, bad signature and failed claim
	// checks.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrCredentialRevoked is returned in strict mode for a credential that
	// was explicitly invalidated.
	ErrCredentialRevoked = errors.New("token revoked")
	// ErrPrincipalNotFound is returned when the subject resolves to no
	// principal. Directories return it for unknown ids.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrPrincipalAmbiguous is returned by directories when a subject matches
	// more than one variant store.
	ErrPrincipalAmbiguous = errors.New("principal matches more than one role")
	// ErrForbidden is returned by role guards.
	ErrForbidden = errors.New("access forbidden")
	// ErrRevocationUnavailable is returned in strict mode when the revocation
	// store cannot be reached. Strict mode fails closed.
	ErrRevocationUnavailable = errors.New("revocation store unavailable")
	// ErrRevocationDisabled is returned by revocation calls on an engine built
	// without a Redis client.
	ErrRevocationDisabled = errors.New("revocation not configured")
	// ErrDirectoryUnavailable wraps unexpected directory failures.
	ErrDirectoryUnavailable = errors.New("principal directory unavailable")
	// ErrInvalidRouteMode is returned for an unknown RouteMode override.
	ErrInvalidRouteMode = errors.New("invalid route validation mode")
	// ErrEngineNotReady is returned by a nil or partially built Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// Error codes carried in error responses. Clients key navigation decisions
// off CodeTokenExpired.
const (
	CodeNoToken            = "NO_TOKEN"             // no credential on the request
	CodeTokenExpired       = "TOKEN_EXPIRED"        // credential past its exp
	CodeInvalidToken       = "INVALID_TOKEN"        // bad signature, claims or format
	CodeTokenRevoked       = "TOKEN_REVOKED"        // credential or subject revoked
	CodeInvalidAccessToken = "INVALID_ACCESS_TOKEN" // subject matches no principal
	CodeForbidden          = "FORBIDDEN"            // role guard rejection
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"  // revocation store unreachable in strict mode
	CodeInternal           = "INTERNAL"             // directory or other backend failure
)

// Error is the uniform application error raised by the gate and the guards.
// It carries the HTTP status and client-facing message and wraps one of the
// package sentinels, so errors.Is keeps working.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements error.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Unwrap returns the sentinel the error was built from.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(status int, code, message string, err error) *Error {
	return &Error{Status: status, Code: code, Message: message, Err: err}
}

func errNoCredential() *Error {
	return newError(http.StatusUnauthorized, CodeNoToken, "Unauthorized request - No token provided", ErrNoCredential)
}

func errExpired() *Error {
	return newError(http.StatusUnauthorized, CodeTokenExpired, "Token has expired", ErrCredentialExpired)
}

func errInvalidToken() *Error {
	return newError(http.StatusUnauthorized, CodeInvalidToken, "Invalid token", ErrTokenInvalid)
}

func errRevoked() *Error {
	return newError(http.StatusUnauthorized, CodeTokenRevoked, "Token has been revoked", ErrCredentialRevoked)
}

func errInvalidAccessToken(cause error) *Error {
	if cause == nil {
		cause = ErrPrincipalNotFound
	}
	return newError(http.StatusUnauthorized, CodeInvalidAccessToken, "Invalid Access Token", cause)
}

func errRevocationUnavailable() *Error {
	return newError(http.StatusServiceUnavailable, CodeServiceUnavailable, "Authentication temporarily unavailable", ErrRevocationUnavailable)
}

func errDirectoryUnavailable() *Error {
	return newError(http.StatusInternalServerError, CodeInternal, "Authentication failed", ErrDirectoryUnavailable)
}

func errForbidden(message string) *Error {
	if message == "" {
		message = "Access Forbidden"
	}
	return newError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

// AsError extracts the *Error carried by err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

// StatusCode maps err to an HTTP status. Unknown errors are 500.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if e, ok := AsError(err); ok && e.Status != 0 {
		return e.Status
	}
	switch {
	case errors.Is(err, ErrNoCredential),
		errors.Is(err, ErrCredentialExpired),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrCredentialRevoked),
		errors.Is(err, ErrPrincipalNotFound),
		errors.Is(err, ErrPrincipalAmbiguous):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrRevocationUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the JSON body written for gate and guard failures.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// NewErrorResponse renders err as a response body. Errors that are not an
// *Error are reported with a generic message so internals do not leak.
func NewErrorResponse(err error) ErrorResponse {
	if e, ok := AsError(err); ok {
		return ErrorResponse{Success: false, StatusCode: StatusCode(e), Code: e.Code, Message: e.Message}
	}
	status := StatusCode(err)
	return ErrorResponse{
		Success:    false,
		StatusCode: status,
		Code:       CodeInternal,
		Message:    http.StatusText(status),
	}
}

// WWWAuthenticate returns the RFC 6750 challenge for a 401 error, or "" for
// anything else. Expiry is signalled in error_description.
func WWWAuthenticate(err error) string {
	if StatusCode(err) != http.StatusUnauthorized {
		return ""
	}
	switch {
	case errors.Is(err, ErrNoCredential):
		return `Bearer realm="api"`
	case errors.Is(err, ErrCredentialExpired):
		return `Bearer realm="api", error="invalid_token", error_description="token expired"`
	case errors.Is(err, ErrCredentialRevoked):
		return `Bearer realm="api", error="invalid_token", error_description="token revoked"`
	default:
		return `Bearer realm="api", error="invalid_token"`
	}
}
