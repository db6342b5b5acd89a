package middleware

import (
	"net"
	"net/http"
	"strings"

	classAuth "github.com/MrEthical07/classAuth"
	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestContext attaches a request id and the client IP to the request
// context so audit events can be correlated. An inbound X-Request-ID is
// reused when it is short and printable; otherwise a uuid is generated. The
// id is echoed on the response.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if !classAuth.ValidRequestID(id) {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := classAuth.WithRequestID(r.Context(), id)
		ctx = classAuth.WithClientIP(ctx, clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP is the peer address. Forwarding headers are not trusted here;
// deployments behind a proxy should rewrite RemoteAddr first.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
