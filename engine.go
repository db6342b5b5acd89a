package classAuth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/MrEthical07/classAuth/internal/flows"
	"github.com/MrEthical07/classAuth/jwt"
	"github.com/MrEthical07/classAuth/revocation"
)

// Engine is the auth gate and role guard. It is built once by Builder.Build,
// is immutable afterwards and is safe for concurrent use. Per-request state
// lives only in the returned AuthResult.
type Engine struct {
	config     Config
	jwtManager *jwt.Manager
	directory  Directory
	revocation *revocation.Store
	audit      *auditDispatcher
	metrics    *Metrics
	logger     *slog.Logger
}

// Close drains the audit dispatcher. The Redis client passed to the Builder
// is owned by the caller and is not closed.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns how many audit events were dropped because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the counters and histograms. A nil or
// metrics-disabled engine yields empty maps.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// CredentialConfig returns the transports the gate reads.
func (e *Engine) CredentialConfig() CredentialConfig {
	if e == nil {
		return defaultConfig().Credential
	}
	return e.config.Credential
}

// ExtractCredential is ExtractCredential bound to the engine's
// CredentialConfig.
func (e *Engine) ExtractCredential(r *http.Request) (string, CredentialSource) {
	return ExtractCredential(r, e.CredentialConfig())
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) log() *slog.Logger {
	if e == nil || e.logger == nil {
		return slog.Default()
	}
	return e.logger
}

/*
====================================
AUTH GATE
====================================
*/

// Authenticate validates token with the engine's default validation mode
// and resolves it to a principal.
//
// Every failure is an *Error wrapping one of the package sentinels:
// ErrNoCredential, ErrCredentialExpired, ErrTokenInvalid,
// ErrCredentialRevoked and ErrPrincipalNotFound are 401;
// ErrRevocationUnavailable is 503; ErrDirectoryUnavailable is 500.
func (e *Engine) Authenticate(ctx context.Context, token string) (*AuthResult, error) {
	return e.authenticate(ctx, token, ModeInherit, SourceNone)
}

// AuthenticateWithMode is Authenticate with a per-route validation mode
// override.
func (e *Engine) AuthenticateWithMode(ctx context.Context, token string, mode RouteMode) (*AuthResult, error) {
	return e.authenticate(ctx, token, mode, SourceNone)
}

// AuthenticateRequest extracts the credential from r (cookie first, then
// the Bearer header) and authenticates it under mode.
func (e *Engine) AuthenticateRequest(r *http.Request, mode RouteMode) (*AuthResult, error) {
	if r == nil {
		return nil, errNoCredential()
	}
	token, source := e.ExtractCredential(r)
	return e.authenticate(r.Context(), token, mode, source)
}

func (e *Engine) authenticate(ctx context.Context, token string, mode RouteMode, source CredentialSource) (*AuthResult, error) {
	if e == nil || e.jwtManager == nil || e.directory == nil {
		return nil, newError(http.StatusInternalServerError, CodeInternal, "Authentication failed", ErrEngineNotReady)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricAuthenticateLatency, time.Since(start))
		}()
	}

	res := flows.RunAuthenticate(ctx, token, int(mode), e.authenticateDeps())
	if res.Failure != flows.AuthenticateFailureNone {
		err := e.mapAuthenticateFailure(ctx, res)
		e.emitAuthFailure(ctx, res, err)
		return nil, err
	}

	p := res.Principal
	if !p.Role.Valid() || !p.Consistent() || p.ID == "" {
		e.metricInc(MetricAuthBackendFailure)
		e.log().ErrorContext(ctx, "directory returned an inconsistent principal",
			"subject", res.Claims.SubjectID(), "role", string(p.Role))
		err := errDirectoryUnavailable()
		e.emitAuthFailure(ctx, res, err)
		return nil, err
	}

	result := &AuthResult{
		Principal: p,
		Role:      p.Role,
		TokenID:   res.Claims.ID,
		Source:    source,
	}
	if res.Claims.IssuedAt != nil {
		result.IssuedAt = res.Claims.IssuedAt.Time
	}
	if res.Claims.ExpiresAt != nil {
		result.ExpiresAt = res.Claims.ExpiresAt.Time
	}

	e.metricInc(MetricAuthSuccess)
	switch p.Role {
	case RoleStudent:
		e.metricInc(MetricAuthStudent)
	case RoleTeacher:
		e.metricInc(MetricAuthTeacher)
	}
	e.emitAudit(ctx, AuditAuthSuccess, true, p.ID, p.Role, result.TokenID, nil, func() map[string]string {
		if source == SourceNone {
			return nil
		}
		return map[string]string{"source": string(source)}
	})

	return result, nil
}

func (e *Engine) authenticateDeps() flows.AuthenticateDeps[Principal] {
	deps := flows.AuthenticateDeps[Principal]{
		ParseAccess: e.jwtManager.ParseAccess,
		ResolveRouteMode: func(routeMode int) (int, error) {
			mode, err := e.resolveRouteMode(RouteMode(routeMode))
			return int(mode), err
		},
		ModeStrict: int(ModeStrict),
		Lookup:     e.directory.Lookup,
		NotFound: func(err error) bool {
			return errors.Is(err, ErrPrincipalNotFound) || errors.Is(err, ErrPrincipalAmbiguous)
		},
	}
	if e.revocation != nil {
		deps.Revocation = e.revocation
	}
	return deps
}

func (e *Engine) mapAuthenticateFailure(ctx context.Context, res flows.AuthenticateResult[Principal]) *Error {
	switch res.Failure {
	case flows.AuthenticateFailureNoCredential:
		e.metricInc(MetricAuthNoCredential)
		return errNoCredential()
	case flows.AuthenticateFailureExpired:
		e.metricInc(MetricAuthExpired)
		return errExpired()
	case flows.AuthenticateFailureInvalid:
		e.metricInc(MetricAuthInvalid)
		return errInvalidToken()
	case flows.AuthenticateFailureRevoked:
		e.metricInc(MetricAuthRevoked)
		return errRevoked()
	case flows.AuthenticateFailurePrincipalNotFound:
		e.metricInc(MetricAuthPrincipalNotFound)
		return errInvalidAccessToken(res.Err)
	case flows.AuthenticateFailureRevocationUnavailable:
		e.metricInc(MetricAuthBackendFailure)
		e.log().ErrorContext(ctx, "revocation check failed, rejecting request", "error", res.Err)
		return errRevocationUnavailable()
	case flows.AuthenticateFailureDirectory:
		e.metricInc(MetricAuthBackendFailure)
		e.log().ErrorContext(ctx, "principal lookup failed", "error", res.Err)
		return errDirectoryUnavailable()
	case flows.AuthenticateFailureInvalidRouteMode:
		return newError(http.StatusInternalServerError, CodeInternal, "Authentication failed", ErrInvalidRouteMode)
	default:
		return errInvalidToken()
	}
}

func (e *Engine) resolveRouteMode(routeMode RouteMode) (ValidationMode, error) {
	mode, ok := flows.ResolveRouteMode(int(routeMode), int(e.config.ValidationMode), flows.ModeResolverConfig{
		ModeInherit: int(ModeInherit),
		ModeJWTOnly: int(ModeJWTOnly),
		ModeStrict:  int(ModeStrict),
	})
	if !ok {
		return 0, ErrInvalidRouteMode
	}
	return ValidationMode(mode), nil
}

/*
====================================
ROLE GUARDS
====================================
*/

// Authorize admits result when its role is one of roles. A nil result is
// Unauthorized; a role outside the list is Forbidden. Single-role checks
// use the per-role denial messages.
//
// Authorize is safe to call on a nil Engine; metrics and audit are then
// skipped.
func (e *Engine) Authorize(result *AuthResult, roles ...Role) error {
	return e.authorize(context.Background(), result, roles...)
}

// AuthorizeContext is Authorize reading the result from ctx.
func (e *Engine) AuthorizeContext(ctx context.Context, roles ...Role) error {
	result, _ := AuthResultFromContext(ctx)
	return e.authorize(ctx, result, roles...)
}

func (e *Engine) authorize(ctx context.Context, result *AuthResult, roles ...Role) error {
	var role Role
	if result != nil {
		role = result.Role
	}

	switch flows.RunAuthorize(result != nil, role, roles) {
	case flows.AuthorizeFailureNone:
		return nil
	case flows.AuthorizeFailureUnauthenticated:
		return errNoCredential()
	default:
		e.metricInc(MetricAccessDenied)
		e.emitAudit(ctx, AuditAccessDenied, false, result.Principal.ID, role, result.TokenID, ErrForbidden, func() map[string]string {
			return map[string]string{"required": joinRoles(roles)}
		})
		return errForbidden(forbiddenMessage(roles))
	}
}

func forbiddenMessage(roles []Role) string {
	if len(roles) == 1 {
		switch roles[0] {
		case RoleStudent:
			return "Access denied. Students only."
		case RoleTeacher:
			return "Access denied. Teachers only."
		}
	}
	return "Access Forbidden"
}

func joinRoles(roles []Role) string {
	out := ""
	for i, r := range roles {
		if i > 0 {
			out += ","
		}
		out += string(r)
	}
	return out
}
