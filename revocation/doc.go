// Package revocation keeps the explicit invalidation list for access
// credentials in Redis.
//
// Two kinds of marker exist:
//
//   - token markers, keyed by the credential's jti and expiring with it;
//   - subject cut-offs, which reject every credential for a subject issued
//     at or before a point in time (sign out everywhere).
//
// The Engine consults [Store.Check] only in strict mode. Errors from Redis
// are wrapped with [ErrRedisUnavailable] so callers can fail closed.
//
// This package does not parse tokens or resolve principals.
package revocation
