package classAuth

import (
	"errors"
	"log/slog"

	"github.com/MrEthical07/classAuth/jwt"
	"github.com/MrEthical07/classAuth/revocation"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine. A Builder is single-use: Build may succeed
// once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	directory Directory
	auditSink AuditSink
	logger    *slog.Logger

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the configuration. cfg is copied.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithDirectory sets the principal directory. Required.
func (b *Builder) WithDirectory(d Directory) *Builder {
	b.directory = d
	return b
}

// WithRedis enables the revocation list. Required for ModeStrict.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink sets the audit destination. A nil sink discards events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger used for backend failures. Defaults
// to slog.Default().
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the authenticate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.directory == nil {
		return nil, errors.New("directory required")
	}

	if b.redis == nil && cfg.ValidationMode == ModeStrict {
		return nil, errors.New("Strict mode requires redis client")
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	// -------- JWT MANAGER --------
	jm, err := jwt.NewManager(jwt.Config{
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		Secret:        cloneBytes(cfg.JWT.Secret),
		PublicKey:     cloneBytes(cfg.JWT.PublicKey),
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
		MaxFutureIAT:  cfg.JWT.MaxFutureIAT,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:     cfg,
		jwtManager: jm,
		directory:  b.directory,
		metrics:    NewMetrics(cfg.Metrics),
		logger:     logger,
	}

	// -------- REVOCATION STORE --------
	if b.redis != nil {
		engine.revocation = revocation.NewStore(b.redis, cfg.Revocation.RedisPrefix)
	}

	// -------- AUDIT --------
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink, logger)

	b.built = true

	return engine, nil
}
