package middleware

import (
	"net/http"

	classAuth "github.com/MrEthical07/classAuth"
)

// Guard authenticates every request under routeMode and attaches the
// AuthResult to the request context. Failures are written with WriteError
// and the chain stops.
func Guard(engine *classAuth.Engine, routeMode classAuth.RouteMode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				WriteError(w, r, classAuth.ErrEngineNotReady)
				return
			}

			res, err := engine.AuthenticateRequest(r, routeMode)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			ctx := classAuth.WithAuthResult(r.Context(), res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authenticate is Guard with the engine's default validation mode.
func Authenticate(engine *classAuth.Engine) func(http.Handler) http.Handler {
	return Guard(engine, classAuth.ModeInherit)
}

// AuthResultFromContext returns the result attached by Guard.
func AuthResultFromContext(r *http.Request) (*classAuth.AuthResult, bool) {
	if r == nil {
		return nil, false
	}
	return classAuth.AuthResultFromContext(r.Context())
}
