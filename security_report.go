package classAuth

import "time"

// SecurityReport summarises the verification posture of a built Engine.
// It carries no key material.
type SecurityReport struct {
	SigningAlgorithm  string
	ValidationMode    ValidationMode
	StrictMode        bool
	RevocationEnabled bool
	IssuerChecked     bool
	AudienceChecked   bool
	Leeway            time.Duration
	MaxFutureIAT      time.Duration
	CookieName        string
	HeaderName        string
	AuditEnabled      bool
	MetricsEnabled    bool
}

// SecurityReport summarises the effective security posture of e.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		SigningAlgorithm:  e.config.JWT.SigningMethod,
		ValidationMode:    e.config.ValidationMode,
		StrictMode:        e.config.ValidationMode == ModeStrict,
		RevocationEnabled: e.revocation != nil,
		IssuerChecked:     e.config.JWT.Issuer != "",
		AudienceChecked:   e.config.JWT.Audience != "",
		Leeway:            e.config.JWT.Leeway,
		MaxFutureIAT:      e.config.JWT.MaxFutureIAT,
		CookieName:        e.config.Credential.CookieName,
		HeaderName:        e.config.Credential.HeaderName,
		AuditEnabled:      e.audit != nil,
		MetricsEnabled:    e.metrics.Enabled(),
	}
}
