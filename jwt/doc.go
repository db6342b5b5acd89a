// Package jwt verifies student and teacher access credentials signed with a
// shared HS256 secret or an Ed25519 key.
//
// Verification failures are split into two classes so callers can tell an
// expired credential apart from a forged or malformed one: [ErrExpired] and
// [ErrMalformed]. The signature is always checked first.
//
// The package also carries a small signer ([Manager.CreateAccess]) for tests,
// load generation and local development. It is not a login protocol.
package jwt
