package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod names the algorithm used to verify (and, for the dev signer,
// sign) access credentials.
type SigningMethod string

const (
	// MethodHS256 verifies with a shared secret. This is the default.
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 verifies with an Ed25519 public key.
	MethodEd25519 SigningMethod = "ed25519"
)

var (
	// ErrExpired reports a credential whose signature is valid but whose exp
	// claim has passed.
	ErrExpired = errors.New("credential expired")
	// ErrMalformed reports every other verification failure: bad encoding,
	// bad signature, wrong algorithm, failed iss/aud checks.
	ErrMalformed = errors.New("credential malformed")
)

// Config defines how credentials are verified.
type Config struct {
	SigningMethod SigningMethod
	// Secret is the HS256 shared secret, or the Ed25519 private key when the
	// manager is also used to sign.
	Secret       []byte
	PublicKey    []byte
	Issuer       string
	Audience     string
	Leeway       time.Duration
	// MaxFutureIAT bounds how far ahead of now an iat claim may sit. Zero
	// disables the check.
	MaxFutureIAT time.Duration
}

// Manager verifies access credentials. It is immutable after NewManager and
// safe for concurrent use.
type Manager struct {
	config Config
}

// AccessClaims is the claim set carried by an access credential. The subject
// identifier travels in "_id"; "sub" is accepted as a fallback.
type AccessClaims struct {
	UID string `json:"_id,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID returns the principal identifier carried by the claims.
func (c *AccessClaims) SubjectID() string {
	if c == nil {
		return ""
	}
	if id := strings.TrimSpace(c.UID); id != "" {
		return id
	}
	return strings.TrimSpace(c.Subject)
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.SigningMethod == "" {
		cfg.SigningMethod = MethodHS256
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.Secret) == 0 {
			return nil, errors.New("hs256 requires a shared secret")
		}
	case MethodEd25519:
		if len(cfg.Secret) > 0 {
			if _, err := parseEdPrivateKey(cfg.Secret); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires a public key")
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported signing method %q", cfg.SigningMethod)
	}

	return &Manager{config: cfg}, nil
}

// CreateAccess signs a credential for subjectID valid for ttl. It exists for
// tests, the load generator and local development; production credentials
// come from the external signer.
func (m *Manager) CreateAccess(subjectID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(subjectID) == "" {
		return "", errors.New("subject id required")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}
	now := time.Now()
	claims := AccessClaims{
		UID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subjectID,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if m.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.Audience}
	}
	return m.Sign(claims)
}

// Sign signs an arbitrary claim set with the configured key.
func (m *Manager) Sign(claims AccessClaims) (string, error) {
	key, err := m.signKey()
	if err != nil {
		return "", err
	}
	return jwt.NewWithClaims(m.method(), claims).SignedString(key)
}

// ParseAccess verifies tokenStr. Failures wrap ErrExpired or ErrMalformed.
// Signature is checked before expiry, so a forged expired token reports
// ErrMalformed.
func (m *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	claims, err := m.parse(tokenStr, false)
	if err != nil {
		return nil, err
	}
	if claims.IssuedAt != nil && m.config.MaxFutureIAT > 0 {
		if claims.IssuedAt.Time.After(time.Now().Add(m.config.MaxFutureIAT)) {
			return nil, fmt.Errorf("%w: iat too far in the future", ErrMalformed)
		}
	}
	return claims, nil
}

// ParseAuthentic verifies the signature of tokenStr but tolerates an expired
// exp claim. Revocation uses it so that logging out with a stale credential
// is not an error.
func (m *Manager) ParseAuthentic(tokenStr string) (*AccessClaims, error) {
	return m.parse(tokenStr, true)
}

func (m *Manager) parse(tokenStr string, skipClaims bool) (*AccessClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method().Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Audience != "" {
		options = append(options, jwt.WithAudience(m.config.Audience))
	}
	if skipClaims {
		options = append(options, jwt.WithoutClaimsValidation())
	}

	token, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != m.method().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.verifyKey()
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}

func (m *Manager) method() jwt.SigningMethod {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return jwt.SigningMethodEdDSA
	default:
		return jwt.SigningMethodHS256
	}
}

func (m *Manager) signKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodEd25519:
		if len(m.config.Secret) == 0 {
			return nil, errors.New("ed25519 private key not configured")
		}
		return parseEdPrivateKey(m.config.Secret)
	default:
		return m.config.Secret, nil
	}
}

func (m *Manager) verifyKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return parseEdPublicKey(m.config.PublicKey)
	default:
		return m.config.Secret, nil
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
