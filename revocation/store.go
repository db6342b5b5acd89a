package revocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps every transport or server error.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrInvalidArgument is returned for empty ids and non-positive TTLs.
var ErrInvalidArgument = errors.New("invalid revocation argument")

// Reason says why Check rejected a credential.
type Reason int

const (
	NotRevoked Reason = iota
	// TokenRevoked means the token id itself was revoked.
	TokenRevoked
	// SubjectRevoked means the token was issued at or before the subject's
	// cut-off.
	SubjectRevoked
)

// String returns the reason name used in logs.
func (r Reason) String() string {
	switch r {
	case NotRevoked:
		return "not_revoked"
	case TokenRevoked:
		return "token_revoked"
	case SubjectRevoked:
		return "subject_revoked"
	default:
		return "unknown"
	}
}

// Only moves the cut-off forward, so a late RevokeSubject with an older
// cut-off cannot re-admit tokens.
const raiseCutoffScript = `
local current = tonumber(redis.call("GET", KEYS[1]) or "-1")
local next = tonumber(ARGV[1])
if next > current then
  redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
  return 1
end
redis.call("PEXPIRE", KEYS[1], ARGV[2])
return 0
`

var raiseCutoffLua = redis.NewScript(raiseCutoffScript)

// Store keeps revoked token ids and per-subject cut-offs in Redis.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore returns a Store keeping its markers under prefix.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "classauth"
	}
	return &Store{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Store) tokenKey(tokenID string) string {
	return s.prefix + ":revoked:jti:" + tokenID
}

func (s *Store) subjectKey(subjectID string) string {
	return s.prefix + ":revoked:sub:" + subjectID
}

// RevokeToken marks tokenID revoked until expiresAt. A token that has
// already expired needs no marker and RevokeToken returns nil.
func (s *Store) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if strings.TrimSpace(tokenID) == "" {
		return fmt.Errorf("%w: empty token id", ErrInvalidArgument)
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}

	if err := s.redis.Set(ctx, s.tokenKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// RevokeSubject rejects every token for subjectID issued at or before
// cutoff. The cut-off is stored in whole seconds, so any issuedAt in the same
// second as cutoff counts as at-or-before. The marker lives for ttl, which should cover the longest
// credential lifetime in use.
func (s *Store) RevokeSubject(ctx context.Context, subjectID string, cutoff time.Time, ttl time.Duration) error {
	if strings.TrimSpace(subjectID) == "" {
		return fmt.Errorf("%w: empty subject id", ErrInvalidArgument)
	}
	if ttl <= 0 {
		return fmt.Errorf("%w: ttl must be positive", ErrInvalidArgument)
	}

	err := raiseCutoffLua.Run(
		ctx,
		s.redis,
		[]string{s.subjectKey(subjectID)},
		strconv.FormatInt(cutoff.Unix(), 10),
		strconv.FormatInt(ttl.Milliseconds(), 10),
	).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// ClearSubject removes a subject cut-off.
func (s *Store) ClearSubject(ctx context.Context, subjectID string) error {
	if err := s.redis.Del(ctx, s.subjectKey(subjectID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Check looks up the token id and the subject cut-off in one pipelined round
// trip. An empty tokenID skips the token lookup. A zero issuedAt is treated
// as issued before any cut-off.
func (s *Store) Check(ctx context.Context, tokenID, subjectID string, issuedAt time.Time) (Reason, error) {
	pipe := s.redis.Pipeline()

	var exists *redis.IntCmd
	if tokenID != "" {
		exists = pipe.Exists(ctx, s.tokenKey(tokenID))
	}
	var cutoff *redis.StringCmd
	if subjectID != "" {
		cutoff = pipe.Get(ctx, s.subjectKey(subjectID))
	}
	if exists == nil && cutoff == nil {
		return NotRevoked, nil
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return NotRevoked, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if exists != nil && exists.Val() > 0 {
		return TokenRevoked, nil
	}

	if cutoff != nil {
		raw, err := cutoff.Result()
		switch {
		case errors.Is(err, redis.Nil):
			return NotRevoked, nil
		case err != nil:
			return NotRevoked, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		unix, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			// Unreadable marker; reject rather than admit.
			return SubjectRevoked, nil
		}
		if issuedAt.IsZero() || issuedAt.Unix() <= unix {
			return SubjectRevoked, nil
		}
	}

	return NotRevoked, nil
}

// Ping reports whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
