package middleware

import (
	"net/http"

	classAuth "github.com/MrEthical07/classAuth"
)

// RequireStrict also consults the revocation list. A Redis outage rejects
// the request with 503.
func RequireStrict(engine *classAuth.Engine) func(http.Handler) http.Handler {
	return Guard(engine, classAuth.ModeStrict)
}
