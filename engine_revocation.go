package classAuth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/classAuth/revocation"
)

// RevokeToken invalidates a single credential until it expires. token is
// the raw credential as presented by the client. An authentic but already
// expired credential is accepted and nothing is stored, so signing out with
// a stale token is not an error.
//
// Revocations only take effect on routes authenticated in ModeStrict.
func (e *Engine) RevokeToken(ctx context.Context, token string) error {
	if e == nil || e.jwtManager == nil {
		return ErrEngineNotReady
	}
	if e.revocation == nil {
		return ErrRevocationDisabled
	}
	if strings.TrimSpace(token) == "" {
		return errNoCredential()
	}

	claims, err := e.jwtManager.ParseAuthentic(token)
	if err != nil {
		return errInvalidToken()
	}
	if claims.ID == "" {
		// Nothing to key a marker on; RevokeSubject is the only option.
		return errInvalidToken()
	}

	expiresAt := time.Now().Add(e.config.Revocation.SubjectCutoffTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := e.revocation.RevokeToken(ctx, claims.ID, expiresAt); err != nil {
		return e.revocationError(ctx, "revoke token", err)
	}

	e.metricInc(MetricTokenRevoked)
	e.emitAudit(ctx, AuditTokenRevoked, true, claims.SubjectID(), "", claims.ID, nil, nil)
	return nil
}

// RevokeSubject invalidates every credential for subjectID issued up to now.
// iat has one-second resolution and the cut-off is inclusive, so a credential
// minted later within the same second is rejected as well.
func (e *Engine) RevokeSubject(ctx context.Context, subjectID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.revocation == nil {
		return ErrRevocationDisabled
	}

	err := e.revocation.RevokeSubject(ctx, subjectID, time.Now(), e.config.Revocation.SubjectCutoffTTL)
	if err != nil {
		if errors.Is(err, revocation.ErrInvalidArgument) {
			return err
		}
		return e.revocationError(ctx, "revoke subject", err)
	}

	e.metricInc(MetricSubjectRevoked)
	e.emitAudit(ctx, AuditSubjectRevoked, true, subjectID, "", "", nil, nil)
	return nil
}

// RestoreSubject removes a subject cut-off set by RevokeSubject.
func (e *Engine) RestoreSubject(ctx context.Context, subjectID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.revocation == nil {
		return ErrRevocationDisabled
	}
	if err := e.revocation.ClearSubject(ctx, subjectID); err != nil {
		return e.revocationError(ctx, "restore subject", err)
	}
	return nil
}

func (e *Engine) revocationError(ctx context.Context, op string, err error) error {
	e.metricInc(MetricAuthBackendFailure)
	e.log().ErrorContext(ctx, "revocation store call failed", "op", op, "error", err)
	e.emitAudit(ctx, AuditRevocationError, false, "", "", "", ErrRevocationUnavailable, func() map[string]string {
		return map[string]string{"op": op}
	})
	return errRevocationUnavailable()
}
