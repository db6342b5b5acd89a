package classAuth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the Engine needs. It is copied by the Builder and
// never mutated afterwards.
type Config struct {
	JWT            JWTConfig
	Credential     CredentialConfig
	Revocation     RevocationConfig
	Audit          AuditConfig
	Metrics        MetricsConfig
	ValidationMode ValidationMode
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig controls credential verification. Secret is required for hs256;
// PublicKey for ed25519.
type JWTConfig struct {
	SigningMethod string // "hs256" (default) or "ed25519"
	Secret        []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	MaxFutureIAT  time.Duration
}

/*
====================================
CREDENTIAL CONFIG
====================================
*/

// CredentialConfig names the transports the gate reads credentials from.
type CredentialConfig struct {
	CookieName string
	HeaderName string
	Scheme     string
}

/*
====================================
REVOCATION CONFIG
====================================
*/

// RevocationConfig configures the Redis-backed invalidation list consulted
// in strict mode.
type RevocationConfig struct {
	RedisPrefix string
	// SubjectCutoffTTL bounds how long a RevokeSubject marker is kept. It
	// should be at least the longest credential lifetime in use.
	SubjectCutoffTTL time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
VALIDATION MODE
====================================
*/

// ValidationMode selects how much state the gate consults per request.
type ValidationMode int

const (
	// ModeInherit is only meaningful as a route override and means "use the
	// engine default".
	ModeInherit ValidationMode = -1

	// ModeJWTOnly verifies the credential and resolves the principal. No
	// Redis call is made.
	ModeJWTOnly ValidationMode = iota
	// ModeStrict additionally consults the revocation list.
	ModeStrict
)

// RouteMode is the per-route override passed to AuthenticateRequest. It
// reuses the ValidationMode constants.
type RouteMode = ValidationMode

// String returns the mode name.
func (m ValidationMode) String() string {
	switch m {
	case ModeInherit:
		return "inherit"
	case ModeJWTOnly:
		return "jwt-only"
	case ModeStrict:
		return "strict"
	default:
		return "unknown(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseValidationMode parses "jwt-only" or "strict".
func ParseValidationMode(s string) (ValidationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jwt-only", "jwt_only", "jwtonly":
		return ModeJWTOnly, nil
	case "strict":
		return ModeStrict, nil
	default:
		return 0, fmt.Errorf("unknown validation mode %q", s)
	}
}

// DefaultConfig returns a configuration that matches the conventional
// deployment: HS256, accessToken cookie, Bearer header, jwt-only.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			SigningMethod: "hs256",
			Leeway:        0,
			MaxFutureIAT:  10 * time.Minute,
		},
		Credential: CredentialConfig{
			CookieName: "accessToken",
			HeaderName: "Authorization",
			Scheme:     "Bearer",
		},
		Revocation: RevocationConfig{
			RedisPrefix:      "classauth",
			SubjectCutoffTTL: 7 * 24 * time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
		ValidationMode: ModeJWTOnly,
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.SigningMethod = strings.ToLower(strings.TrimSpace(cfg.JWT.SigningMethod))
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate checks the configuration for values the Engine cannot work with.
func (c *Config) Validate() error {
	// JWT
	switch strings.ToLower(c.JWT.SigningMethod) {
	case "", "hs256":
		if len(c.JWT.Secret) == 0 {
			return errors.New("JWT Secret required for hs256")
		}
		if len(c.JWT.Secret) < 16 {
			return errors.New("JWT Secret must be at least 16 bytes")
		}
	case "ed25519":
		if len(c.JWT.PublicKey) == 0 {
			return errors.New("JWT PublicKey required for ed25519")
		}
	default:
		return errors.New("JWT SigningMethod must be hs256 or ed25519")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}
	if c.JWT.MaxFutureIAT < 0 || c.JWT.MaxFutureIAT > 24*time.Hour {
		return errors.New("JWT MaxFutureIAT must be between 0 and 24h")
	}

	// Credential
	if c.Credential.CookieName == "" && c.Credential.HeaderName == "" {
		return errors.New("Credential needs a cookie name or a header name")
	}
	if strings.ContainsAny(c.Credential.Scheme, " \t") {
		return errors.New("Credential Scheme must be a single token")
	}

	// Revocation
	if strings.TrimSpace(c.Revocation.RedisPrefix) == "" {
		return errors.New("Revocation RedisPrefix must not be empty")
	}
	if c.Revocation.SubjectCutoffTTL <= 0 {
		return errors.New("Revocation SubjectCutoffTTL must be > 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	switch c.ValidationMode {
	case ModeJWTOnly, ModeStrict:
		// valid
	default:
		return errors.New("invalid ValidationMode")
	}

	return nil
}

// LoadConfigFromEnv overlays environment settings onto DefaultConfig. lookup
// is usually os.LookupEnv; tests pass a map-backed function.
//
// Recognised variables: JWT_SECRET, CLASSAUTH_JWT_SIGNING_METHOD,
// CLASSAUTH_JWT_PUBLIC_KEY, CLASSAUTH_JWT_ISSUER, CLASSAUTH_JWT_AUDIENCE,
// CLASSAUTH_JWT_LEEWAY, CLASSAUTH_COOKIE_NAME, CLASSAUTH_VALIDATION_MODE,
// CLASSAUTH_REDIS_PREFIX, CLASSAUTH_AUDIT_ENABLED.
func LoadConfigFromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := defaultConfig()
	if lookup == nil {
		return cfg, errors.New("nil env lookup")
	}

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok {
			return "", false
		}
		v = strings.TrimSpace(v)
		return v, v != ""
	}

	if v, ok := get("JWT_SECRET"); ok {
		cfg.JWT.Secret = []byte(v)
	}
	if v, ok := get("CLASSAUTH_JWT_SIGNING_METHOD"); ok {
		cfg.JWT.SigningMethod = strings.ToLower(v)
	}
	if v, ok := get("CLASSAUTH_JWT_PUBLIC_KEY"); ok {
		cfg.JWT.PublicKey = []byte(v)
	}
	if v, ok := get("CLASSAUTH_JWT_ISSUER"); ok {
		cfg.JWT.Issuer = v
	}
	if v, ok := get("CLASSAUTH_JWT_AUDIENCE"); ok {
		cfg.JWT.Audience = v
	}
	if v, ok := get("CLASSAUTH_JWT_LEEWAY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("CLASSAUTH_JWT_LEEWAY: %w", err)
		}
		cfg.JWT.Leeway = d
	}
	if v, ok := get("CLASSAUTH_COOKIE_NAME"); ok {
		cfg.Credential.CookieName = v
	}
	if v, ok := get("CLASSAUTH_VALIDATION_MODE"); ok {
		mode, err := ParseValidationMode(v)
		if err != nil {
			return cfg, fmt.Errorf("CLASSAUTH_VALIDATION_MODE: %w", err)
		}
		cfg.ValidationMode = mode
	}
	if v, ok := get("CLASSAUTH_REDIS_PREFIX"); ok {
		cfg.Revocation.RedisPrefix = v
	}
	if v, ok := get("CLASSAUTH_AUDIT_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("CLASSAUTH_AUDIT_ENABLED: %w", err)
		}
		cfg.Audit.Enabled = enabled
	}

	return cfg, cfg.Validate()
}
