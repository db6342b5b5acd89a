package classAuth

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/classAuth/internal/flows"
)

// AuditErrorCode is the stable error label recorded on failed audit events.
type AuditErrorCode string

const (
	auditErrNoCredential      AuditErrorCode = "no_credential"
	auditErrExpired           AuditErrorCode = "token_expired"
	auditErrInvalidToken      AuditErrorCode = "invalid_token"
	auditErrRevoked           AuditErrorCode = "token_revoked"
	auditErrPrincipalNotFound AuditErrorCode = "principal_not_found"
	auditErrAmbiguous         AuditErrorCode = "principal_ambiguous"
	auditErrForbidden         AuditErrorCode = "forbidden"
	auditErrUnavailable       AuditErrorCode = "backend_unavailable"
	auditErrInternal          AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	subject string,
	role Role,
	tokenID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Subject:   subject,
		Role:      role,
		TokenID:   tokenID,
		RequestID: RequestIDFromContext(ctx),
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitAuthFailure(ctx context.Context, res flows.AuthenticateResult[Principal], err error) {
	if e == nil || e.audit == nil {
		return
	}
	var subject, tokenID string
	if res.Claims != nil {
		subject = res.Claims.SubjectID()
		tokenID = res.Claims.ID
	}
	e.emitAudit(ctx, AuditAuthFailure, false, subject, "", tokenID, err, func() map[string]string {
		if res.Failure != flows.AuthenticateFailureRevoked {
			return nil
		}
		return map[string]string{"reason": res.RevocationReason.String()}
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrNoCredential):
		return auditErrNoCredential
	case errors.Is(err, ErrCredentialExpired):
		return auditErrExpired
	case errors.Is(err, ErrTokenInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrCredentialRevoked):
		return auditErrRevoked
	case errors.Is(err, ErrPrincipalAmbiguous):
		return auditErrAmbiguous
	case errors.Is(err, ErrPrincipalNotFound):
		return auditErrPrincipalNotFound
	case errors.Is(err, ErrForbidden):
		return auditErrForbidden
	case errors.Is(err, ErrRevocationUnavailable),
		errors.Is(err, ErrDirectoryUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
