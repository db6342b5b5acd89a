package classAuth

import (
	"net/http"
	"strings"
)

// ExtractCredential returns the raw credential carried by r and where it was
// found. A non-empty cookie wins over the Authorization header. A header
// with any scheme other than Bearer counts as no credential.
func ExtractCredential(r *http.Request, cfg CredentialConfig) (string, CredentialSource) {
	if r == nil {
		return "", SourceNone
	}

	if cfg.CookieName != "" {
		if c, err := r.Cookie(cfg.CookieName); err == nil {
			if v := strings.TrimSpace(c.Value); v != "" {
				return v, SourceCookie
			}
		}
	}

	header := cfg.HeaderName
	if header == "" {
		header = "Authorization"
	}
	if token, ok := bearerToken(r.Header.Get(header), cfg.Scheme); ok {
		return token, SourceHeader
	}

	return "", SourceNone
}

func bearerToken(value, scheme string) (string, bool) {
	if scheme == "" {
		scheme = "Bearer"
	}
	value = strings.TrimSpace(value)
	if len(value) <= len(scheme) || !strings.EqualFold(value[:len(scheme)], scheme) {
		return "", false
	}
	if value[len(scheme)] != ' ' {
		return "", false
	}

	token := strings.TrimSpace(value[len(scheme)+1:])
	if token == "" {
		return "", false
	}

	return token, true
}
