package client

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	classAuth "github.com/MrEthical07/classAuth"
)

// RequestInterceptor may modify an outgoing request. Returning an error
// aborts the request.
type RequestInterceptor func(*http.Request) error

// ResponseInterceptor observes a response before it reaches the caller.
// Returning an error replaces the response with that error.
type ResponseInterceptor func(*http.Response) error

// Navigator moves the user to another screen. Browsers change location; a
// CLI may print a hint or start a login prompt.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Navigate calls f(path).
func (f NavigatorFunc) Navigate(path string) { f(path) }

// Transport runs the interceptor chain around Base. The request seen by
// interceptors is a clone; the caller's request is never modified.
type Transport struct {
	Base     http.RoundTripper
	Request  []RequestInterceptor
	Response []ResponseInterceptor
}

// RoundTrip runs the request interceptors on a clone of req, sends it,
// then runs the response interceptors.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	for _, fn := range t.Request {
		if err := fn(out); err != nil {
			closeBody(req)
			return nil, err
		}
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	for _, fn := range t.Response {
		if err := fn(resp); err != nil {
			resp.Body.Close()
			return nil, err
		}
	}
	return resp, nil
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		req.Body.Close()
	}
}

// AttachCredential sets "Authorization: Bearer <token>" when storage holds
// a credential under key. With no credential stored the request is sent
// without the header.
func AttachCredential(storage Storage, key string) RequestInterceptor {
	return func(req *http.Request) error {
		token, err := storage.Get(key)
		if err != nil {
			return err
		}
		if token = strings.TrimSpace(token); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}

// maxPeekBytes bounds how much of a 401 body is read to find the error
// code.
const maxPeekBytes = 4 << 10

// ClearOnUnauthorized handles 401 responses by removing the stored
// credential and navigating. Navigation depends on the kind of 401:
//
//   - an expired credential (a WWW-Authenticate challenge with
//     error_description="token expired", or a TOKEN_EXPIRED body code) goes
//     to entryPath, "/" by default;
//   - every other 401 goes to loginPath, "/login" by default.
//
// Pass the same path for both to always land on the login page. The
// response itself is passed on unchanged, body included. Other statuses are
// untouched.
func ClearOnUnauthorized(storage Storage, key string, nav Navigator, loginPath, entryPath string, logger *slog.Logger) ResponseInterceptor {
	return func(resp *http.Response) error {
		if resp.StatusCode != http.StatusUnauthorized {
			return nil
		}

		if err := storage.Remove(key); err != nil && logger != nil {
			logger.Warn("failed to clear stored credential", "error", err)
		}

		if nav == nil {
			return nil
		}
		if credentialExpired(resp) {
			nav.Navigate(entryPath)
		} else {
			nav.Navigate(loginPath)
		}
		return nil
	}
}

func credentialExpired(resp *http.Response) bool {
	if strings.Contains(resp.Header.Get("WWW-Authenticate"), `error_description="token expired"`) {
		return true
	}
	if resp.Body == nil {
		return false
	}

	peek, err := io.ReadAll(io.LimitReader(resp.Body, maxPeekBytes))
	resp.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(peek), resp.Body), resp.Body}
	if err != nil {
		return false
	}

	var body classAuth.ErrorResponse
	if json.Unmarshal(peek, &body) != nil {
		return false
	}
	return body.Code == classAuth.CodeTokenExpired
}
