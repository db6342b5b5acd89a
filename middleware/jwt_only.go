package middleware

import (
	"net/http"

	classAuth "github.com/MrEthical07/classAuth"
)

// RequireJWTOnly authenticates with signature and expiry checks only,
// skipping the revocation list even on a strict engine.
func RequireJWTOnly(engine *classAuth.Engine) func(http.Handler) http.Handler {
	return Guard(engine, classAuth.ModeJWTOnly)
}
