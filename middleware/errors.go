package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	classAuth "github.com/MrEthical07/classAuth"
)

// HandlerFunc is an http handler that reports failure by returning an error
// instead of writing the response itself.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts fn to http.Handler. A returned error is rendered by
// WriteError; nothing is retried.
func Handle(fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			WriteError(w, r, err)
		}
	})
}

// WriteError renders err as a classAuth.ErrorResponse. 401 responses carry
// a WWW-Authenticate challenge; expiry is signalled there and in the TOKEN_EXPIRED
// body code. Errors that are not a *classAuth.Error are logged and reported
// as a bare 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	body := classAuth.NewErrorResponse(err)
	if _, ok := classAuth.AsError(err); !ok {
		ctx := r.Context()
		slog.ErrorContext(ctx, "request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", classAuth.RequestIDFromContext(ctx))
	}

	if challenge := classAuth.WWWAuthenticate(err); challenge != "" {
		w.Header().Set("WWW-Authenticate", challenge)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(body.StatusCode)
	_ = json.NewEncoder(w).Encode(body)
}
