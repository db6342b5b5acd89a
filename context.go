package classAuth

import "context"

type authResultContextKey struct{}
type clientIPContextKey struct{}
type requestIDContextKey struct{}

// WithAuthResult attaches result to ctx. The gate adapters call it after a
// successful Authenticate; handlers read it back with AuthResultFromContext.
func WithAuthResult(ctx context.Context, result *AuthResult) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, authResultContextKey{}, result)
}

// AuthResultFromContext returns the result attached by the gate, if any.
func AuthResultFromContext(ctx context.Context) (*AuthResult, bool) {
	if ctx == nil {
		return nil, false
	}
	result, ok := ctx.Value(authResultContextKey{}).(*AuthResult)
	return result, ok && result != nil
}

// PrincipalFromContext is a shorthand for handlers that only need the
// principal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	result, ok := AuthResultFromContext(ctx)
	if !ok {
		return Principal{}, false
	}
	return result.Principal, true
}

// WithClientIP attaches the caller's IP address to ctx. It is recorded on
// audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithRequestID attaches a request correlation id to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// MaxRequestIDLen bounds an inbound correlation id.
const MaxRequestIDLen = 128

// ValidRequestID reports whether an inbound correlation id may be reused:
// non-empty, at most MaxRequestIDLen bytes, printable ASCII without spaces.
func ValidRequestID(id string) bool {
	if id == "" || len(id) > MaxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// RequestIDFromContext returns the request correlation id, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
