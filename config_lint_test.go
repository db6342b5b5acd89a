package classAuth

import (
	"testing"
	"time"
)

func TestLint_DefaultConfigHasNoHighWarnings(t *testing.T) {
	cfg := testConfig(ModeJWTOnly)
	if err := cfg.Lint().AsError(LintHigh); err != nil {
		t.Fatalf("default config should not fail AsError(LintHigh): %v", err)
	}

	codes := cfg.Lint().Codes()
	for _, want := range []string{"signing_hs256", "issuer_unchecked", "jwtonly_revocation_ignored", "audit_disabled"} {
		if !containsCode(codes, want) {
			t.Errorf("expected %s warning, got %v", want, codes)
		}
	}
}

func TestLint_LargeLeeway(t *testing.T) {
	cfg := testConfig(ModeJWTOnly)
	cfg.JWT.Leeway = 90 * time.Second
	if !containsCode(cfg.Lint().Codes(), "leeway_large") {
		t.Error("expected leeway_large warning")
	}

	cfg.JWT.Leeway = 30 * time.Second
	if containsCode(cfg.Lint().Codes(), "leeway_large") {
		t.Error("should not warn for a 30s leeway")
	}
}

func TestLint_StrictWithIssuerAndAudience(t *testing.T) {
	cfg := testConfig(ModeStrict)
	cfg.JWT.Issuer = "school-api"
	cfg.JWT.Audience = "classroom"
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = false

	unwanted := []string{"issuer_unchecked", "audience_unchecked", "jwtonly_revocation_ignored", "audit_disabled", "audit_drop_if_full"}
	codes := cfg.Lint().Codes()
	for _, code := range unwanted {
		if containsCode(codes, code) {
			t.Errorf("unexpected warning %q", code)
		}
	}
}

func TestLint_ShortSecretIsHigh(t *testing.T) {
	cfg := testConfig(ModeJWTOnly)
	cfg.JWT.Secret = []byte("0123456789abcdef")

	ws := cfg.Lint()
	high := ws.BySeverity(LintHigh)
	if len(high) != 1 || high[0].Code != "hs256_secret_short" {
		t.Fatalf("expected only hs256_secret_short at HIGH, got %+v", high)
	}
	if err := ws.AsError(LintHigh); err == nil {
		t.Fatal("expected AsError(LintHigh) to fail")
	}
	for _, w := range ws.BySeverity(LintWarn) {
		if w.Severity < LintWarn {
			t.Errorf("BySeverity(LintWarn) returned %s", w.Severity)
		}
	}
}

func TestLint_FutureIATUnchecked(t *testing.T) {
	cfg := testConfig(ModeJWTOnly)
	cfg.JWT.MaxFutureIAT = 0
	for _, w := range cfg.Lint() {
		if w.Code == "future_iat_unchecked" {
			if w.Severity != LintWarn {
				t.Fatalf("future_iat_unchecked should be WARN, got %s", w.Severity)
			}
			return
		}
	}
	t.Fatal("expected future_iat_unchecked warning")
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
