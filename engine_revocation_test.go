package classAuth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/MrEthical07/classAuth/jwt"
	gjwt "github.com/golang-jwt/jwt/v5"
)

func TestStrictModeRejectsRevokedToken(t *testing.T) {
	engine, _, done := buildTestEngine(t, testConfig(ModeStrict), newTestDirectory(), nil)
	defer done()
	ctx := context.Background()

	token := mintToken(t, "s1", time.Minute)
	other := mintToken(t, "s1", time.Minute)

	if _, err := engine.Authenticate(ctx, token); err != nil {
		t.Fatalf("authenticate before revoke: %v", err)
	}
	if err := engine.RevokeToken(ctx, token); err != nil {
		t.Fatalf("revoke token: %v", err)
	}

	_, err := engine.Authenticate(ctx, token)
	expectAuthError(t, err, ErrCredentialRevoked, http.StatusUnauthorized, "")

	if _, err := engine.Authenticate(ctx, other); err != nil {
		t.Fatalf("expected sibling token to remain valid: %v", err)
	}

	if _, err := engine.AuthenticateWithMode(ctx, token, ModeJWTOnly); err != nil {
		t.Fatalf("expected jwt-only route override to skip revocation, got %v", err)
	}
}

func TestJWTOnlyEngineHonoursStrictRouteOverride(t *testing.T) {
	engine, _, done := buildTestEngine(t, testConfig(ModeJWTOnly), newTestDirectory(), nil)
	defer done()
	ctx := context.Background()

	token := mintToken(t, "t1", time.Minute)
	if err := engine.RevokeToken(ctx, token); err != nil {
		t.Fatalf("revoke token: %v", err)
	}

	if _, err := engine.Authenticate(ctx, token); err != nil {
		t.Fatalf("expected jwt-only default to ignore revocation, got %v", err)
	}
	if _, err := engine.AuthenticateWithMode(ctx, token, ModeStrict); !errors.Is(err, ErrCredentialRevoked) {
		t.Fatalf("expected strict override to reject, got %v", err)
	}
}

func TestRevokeSubjectCutsOffEarlierTokens(t *testing.T) {
	engine, _, done := buildTestEngine(t, testConfig(ModeStrict), newTestDirectory(), nil)
	defer done()
	ctx := context.Background()

	now := time.Now()
	before := signClaims(t, jwt.AccessClaims{UID: "s1", RegisteredClaims: gjwt.RegisteredClaims{
		ID:        "jti-before",
		IssuedAt:  gjwt.NewNumericDate(now.Add(-time.Hour)),
		ExpiresAt: gjwt.NewNumericDate(now.Add(time.Hour)),
	}})
	after := signClaims(t, jwt.AccessClaims{UID: "s1", RegisteredClaims: gjwt.RegisteredClaims{
		ID:        "jti-after",
		IssuedAt:  gjwt.NewNumericDate(now.Add(5 * time.Second)),
		ExpiresAt: gjwt.NewNumericDate(now.Add(time.Hour)),
	}})

	if err := engine.RevokeSubject(ctx, "s1"); err != nil {
		t.Fatalf("revoke subject: %v", err)
	}

	if _, err := engine.Authenticate(ctx, before); !errors.Is(err, ErrCredentialRevoked) {
		t.Fatalf("expected token issued before cut-off to be revoked, got %v", err)
	}
	if _, err := engine.Authenticate(ctx, after); err != nil {
		t.Fatalf("expected token issued after cut-off to pass, got %v", err)
	}
	if _, err := engine.Authenticate(ctx, mintToken(t, "t1", time.Minute)); err != nil {
		t.Fatalf("expected other subject to pass, got %v", err)
	}

	if err := engine.RestoreSubject(ctx, "s1"); err != nil {
		t.Fatalf("restore subject: %v", err)
	}
	if _, err := engine.Authenticate(ctx, before); err != nil {
		t.Fatalf("expected restored subject to pass, got %v", err)
	}
}

func TestRevokeSubjectRejectsSameSecondCredentials(t *testing.T) {
	engine, _, done := buildTestEngine(t, testConfig(ModeStrict), newTestDirectory(), nil)
	defer done()
	ctx := context.Background()

	start := time.Now()
	if err := engine.RevokeSubject(ctx, "s1"); err != nil {
		t.Fatalf("revoke subject: %v", err)
	}

	sameSecond := signClaims(t, jwt.AccessClaims{UID: "s1", RegisteredClaims: gjwt.RegisteredClaims{
		ID:        "jti-same-second",
		IssuedAt:  gjwt.NewNumericDate(start),
		ExpiresAt: gjwt.NewNumericDate(start.Add(time.Hour)),
	}})
	if _, err := engine.Authenticate(ctx, sameSecond); !errors.Is(err, ErrCredentialRevoked) {
		t.Fatalf("expected credential issued in the cut-off second to be revoked, got %v", err)
	}

	nextSeconds := signClaims(t, jwt.AccessClaims{UID: "s1", RegisteredClaims: gjwt.RegisteredClaims{
		ID:        "jti-later",
		IssuedAt:  gjwt.NewNumericDate(start.Add(2 * time.Second)),
		ExpiresAt: gjwt.NewNumericDate(start.Add(time.Hour)),
	}})
	if _, err := engine.Authenticate(ctx, nextSeconds); err != nil {
		t.Fatalf("expected credential issued after the cut-off second to pass, got %v", err)
	}
}

func TestRevokeTokenEdgeCases(t *testing.T) {
	engine, mr, done := buildTestEngine(t, testConfig(ModeStrict), newTestDirectory(), nil)
	defer done()
	ctx := context.Background()

	expired := signClaims(t, jwt.AccessClaims{UID: "s1", RegisteredClaims: gjwt.RegisteredClaims{
		ID:        "jti-expired",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	if err := engine.RevokeToken(ctx, expired); err != nil {
		t.Fatalf("expected revoking an expired token to be a no-op, got %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected no marker for expired token, got %v", keys)
	}

	if err := engine.RevokeToken(ctx, "garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for garbage, got %v", err)
	}
	if err := engine.RevokeToken(ctx, ""); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential for empty token, got %v", err)
	}

	noJTI := signClaims(t, jwt.AccessClaims{UID: "s1", RegisteredClaims: gjwt.RegisteredClaims{
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}})
	if err := engine.RevokeToken(ctx, noJTI); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected token without jti to be rejected, got %v", err)
	}
}

func TestStrictModeFailsClosedWhenRedisDown(t *testing.T) {
	engine, mr, done := buildTestEngine(t, testConfig(ModeStrict), newTestDirectory(), nil)
	defer done()
	ctx := context.Background()

	token := mintToken(t, "s1", time.Minute)
	mr.Close()

	_, err := engine.Authenticate(ctx, token)
	expectAuthError(t, err, ErrRevocationUnavailable, http.StatusServiceUnavailable, "")

	if _, err := engine.AuthenticateWithMode(ctx, token, ModeJWTOnly); err != nil {
		t.Fatalf("expected jwt-only validation without redis, got %v", err)
	}

	if err := engine.RevokeToken(ctx, token); !errors.Is(err, ErrRevocationUnavailable) {
		t.Fatalf("expected ErrRevocationUnavailable from RevokeToken, got %v", err)
	}
}

func TestRevocationDisabledWithoutRedis(t *testing.T) {
	engine, err := New().
		WithConfig(testConfig(ModeJWTOnly)).
		WithDirectory(newTestDirectory()).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer engine.Close()
	ctx := context.Background()

	token := mintToken(t, "s1", time.Minute)
	if err := engine.RevokeToken(ctx, token); !errors.Is(err, ErrRevocationDisabled) {
		t.Fatalf("expected ErrRevocationDisabled, got %v", err)
	}
	if err := engine.RevokeSubject(ctx, "s1"); !errors.Is(err, ErrRevocationDisabled) {
		t.Fatalf("expected ErrRevocationDisabled, got %v", err)
	}

	_, err = engine.AuthenticateWithMode(ctx, token, ModeStrict)
	expectAuthError(t, err, ErrRevocationUnavailable, http.StatusServiceUnavailable, "")
}
