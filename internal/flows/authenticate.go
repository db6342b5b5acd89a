package flows

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/classAuth/jwt"
	"github.com/MrEthical07/classAuth/revocation"
)

// ModeResolverConfig lets the root package hand its mode constants to the
// flow without an import cycle.
type ModeResolverConfig struct {
	ModeInherit int
	ModeJWTOnly int
	ModeStrict  int
}

// ResolveRouteMode resolves a route override against the engine default.
func ResolveRouteMode(routeMode, engineMode int, cfg ModeResolverConfig) (int, bool) {
	switch routeMode {
	case cfg.ModeInherit:
		switch engineMode {
		case cfg.ModeJWTOnly, cfg.ModeStrict:
			return engineMode, true
		default:
			return 0, false
		}
	case cfg.ModeJWTOnly:
		return cfg.ModeJWTOnly, true
	case cfg.ModeStrict:
		return cfg.ModeStrict, true
	default:
		return 0, false
	}
}

// AuthenticateFailureKind classifies gate failures for root-level mapping.
type AuthenticateFailureKind int

const (
	AuthenticateFailureNone AuthenticateFailureKind = iota
	AuthenticateFailureNoCredential
	AuthenticateFailureExpired
	AuthenticateFailureInvalid
	AuthenticateFailureInvalidRouteMode
	AuthenticateFailureRevoked
	AuthenticateFailureRevocationUnavailable
	AuthenticateFailurePrincipalNotFound
	AuthenticateFailureDirectory
)

// RevocationChecker is satisfied by *revocation.Store.
type RevocationChecker interface {
	Check(ctx context.Context, tokenID, subjectID string, issuedAt time.Time) (revocation.Reason, error)
}

// AuthenticateDeps captures everything the gate needs. P is the principal
// type of the host package.
type AuthenticateDeps[P any] struct {
	ParseAccess      func(string) (*jwt.AccessClaims, error)
	ResolveRouteMode func(int) (int, error)
	ModeStrict       int
	// Revocation may be nil; strict mode then fails closed.
	Revocation RevocationChecker
	Lookup     func(context.Context, string) (P, error)
	// NotFound reports whether a Lookup error means "no such principal"
	// rather than a backend failure.
	NotFound func(error) bool
}

// AuthenticateResult carries either the verified claims and principal or a
// classified failure.
type AuthenticateResult[P any] struct {
	Failure          AuthenticateFailureKind
	Err              error
	Claims           *jwt.AccessClaims
	Principal        P
	RevocationReason revocation.Reason
}

// RunAuthenticate verifies tokenStr, consults the revocation list in strict
// mode and resolves the subject with a single directory dispatch.
func RunAuthenticate[P any](ctx context.Context, tokenStr string, routeMode int, deps AuthenticateDeps[P]) AuthenticateResult[P] {
	if strings.TrimSpace(tokenStr) == "" {
		return AuthenticateResult[P]{Failure: AuthenticateFailureNoCredential}
	}

	effectiveMode, err := deps.ResolveRouteMode(routeMode)
	if err != nil {
		return AuthenticateResult[P]{Failure: AuthenticateFailureInvalidRouteMode, Err: err}
	}

	claims, err := deps.ParseAccess(tokenStr)
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return AuthenticateResult[P]{Failure: AuthenticateFailureExpired, Err: err}
		}
		return AuthenticateResult[P]{Failure: AuthenticateFailureInvalid, Err: err}
	}

	subject := claims.SubjectID()
	if subject == "" {
		return AuthenticateResult[P]{Failure: AuthenticateFailurePrincipalNotFound, Claims: claims}
	}

	if effectiveMode == deps.ModeStrict {
		if deps.Revocation == nil {
			return AuthenticateResult[P]{Failure: AuthenticateFailureRevocationUnavailable, Claims: claims}
		}
		var issuedAt time.Time
		if claims.IssuedAt != nil {
			issuedAt = claims.IssuedAt.Time
		}
		reason, err := deps.Revocation.Check(ctx, claims.ID, subject, issuedAt)
		if err != nil {
			return AuthenticateResult[P]{Failure: AuthenticateFailureRevocationUnavailable, Err: err, Claims: claims}
		}
		if reason != revocation.NotRevoked {
			return AuthenticateResult[P]{Failure: AuthenticateFailureRevoked, Claims: claims, RevocationReason: reason}
		}
	}

	principal, err := deps.Lookup(ctx, subject)
	if err != nil {
		if deps.NotFound != nil && deps.NotFound(err) {
			return AuthenticateResult[P]{Failure: AuthenticateFailurePrincipalNotFound, Err: err, Claims: claims}
		}
		return AuthenticateResult[P]{Failure: AuthenticateFailureDirectory, Err: err, Claims: claims}
	}

	return AuthenticateResult[P]{Claims: claims, Principal: principal}
}
