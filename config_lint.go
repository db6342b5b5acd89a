package classAuth

import (
	"fmt"
	"strings"
	"time"
)

// LintSeverity ranks configuration warnings.
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	// LintHigh marks settings that weaken verification in ways callers
	// rarely intend.
	LintHigh
)

// String returns INFO, WARN or HIGH.
func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return fmt.Sprintf("LintSeverity(%d)", int(s))
	}
}

// LintWarning is one advisory finding. Lint never rejects a config; that is
// Validate's job.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the ordered list of findings from Lint.
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	codes := make([]string, 0, len(r))
	for _, w := range r {
		codes = append(codes, w.Code)
	}
	return codes
}

// BySeverity returns the warnings at or above min.
func (r LintResult) BySeverity(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError folds every warning at or above min into one error, or returns
// nil when there are none.
func (r LintResult) AsError(min LintSeverity) error {
	hits := r.BySeverity(min)
	if len(hits) == 0 {
		return nil
	}
	parts := make([]string, 0, len(hits))
	for _, w := range hits {
		parts = append(parts, w.Code+": "+w.Message)
	}
	return fmt.Errorf("config lint: %s", strings.Join(parts, "; "))
}

const (
	lintLeewayLimit    = time.Minute
	lintMinHS256Secret = 32
)

// Lint reports settings that pass Validate but deserve a second look.
func (c Config) Lint() LintResult {
	var ws LintResult
	add := func(code string, sev LintSeverity, msg string) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: msg})
	}

	switch strings.ToLower(c.JWT.SigningMethod) {
	case "", "hs256":
		add("signing_hs256", LintInfo, "HS256 shares the verification key with every signer")
		if n := len(c.JWT.Secret); n > 0 && n < lintMinHS256Secret {
			add("hs256_secret_short", LintHigh, fmt.Sprintf("HS256 secret is %d bytes, want at least %d", n, lintMinHS256Secret))
		}
	}

	if c.JWT.Leeway > lintLeewayLimit {
		add("leeway_large", LintWarn, fmt.Sprintf("leeway %s extends every credential past its exp", c.JWT.Leeway))
	}
	if c.JWT.MaxFutureIAT == 0 {
		add("future_iat_unchecked", LintWarn, "credentials issued in the future are accepted")
	}
	if c.JWT.Issuer == "" {
		add("issuer_unchecked", LintWarn, "iss claim is not verified")
	}
	if c.JWT.Audience == "" {
		add("audience_unchecked", LintInfo, "aud claim is not verified")
	}

	if c.ValidationMode == ModeJWTOnly {
		add("jwtonly_revocation_ignored", LintInfo, "revoked credentials stay valid until exp except on strict routes")
	}

	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "authentication outcomes are not audited")
	} else if c.Audit.DropIfFull {
		add("audit_drop_if_full", LintInfo, "audit events are dropped under backpressure")
	}

	return ws
}
