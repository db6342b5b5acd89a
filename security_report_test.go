package classAuth

import (
	"testing"
)

func TestSecurityReportReflectsEngine(t *testing.T) {
	cfg := testConfig(ModeStrict)
	cfg.JWT.Issuer = "school-api"
	engine, _, done := buildTestEngine(t, cfg, newTestDirectory(), nil)
	defer done()

	r := engine.SecurityReport()
	if r.SigningAlgorithm != "hs256" || !r.StrictMode || r.ValidationMode != ModeStrict {
		t.Fatalf("unexpected report: %+v", r)
	}
	if !r.RevocationEnabled || !r.IssuerChecked || r.AudienceChecked {
		t.Fatalf("unexpected checks: %+v", r)
	}
	if r.CookieName != "accessToken" || r.HeaderName != "Authorization" {
		t.Fatalf("unexpected credential sources: %+v", r)
	}
	if r.AuditEnabled || !r.MetricsEnabled {
		t.Fatalf("unexpected ambient flags: %+v", r)
	}
}

func TestSecurityReportWithoutRedis(t *testing.T) {
	engine, err := New().WithConfig(testConfig(ModeJWTOnly)).WithDirectory(newTestDirectory()).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer engine.Close()

	if r := engine.SecurityReport(); r.RevocationEnabled || r.StrictMode {
		t.Fatalf("expected jwt-only report without revocation, got %+v", r)
	}

	var nilEngine *Engine
	if r := nilEngine.SecurityReport(); r != (SecurityReport{}) {
		t.Fatalf("expected zero report, got %+v", r)
	}
}
