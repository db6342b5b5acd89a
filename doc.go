// Package classAuth is the authentication gate and role guard for a
// two-role (student/teacher) web application.
//
// A request's credential (the accessToken cookie, or an Authorization Bearer
// header) is verified by [Engine.Authenticate], resolved to exactly one
// [Principal] through a [Directory], and attached to the request context as
// an [AuthResult]. [Engine.Authorize] then admits or rejects the request by
// the principal's [Role].
//
// Every failure is an [*Error] carrying an HTTP status, a stable code and a
// client-facing message, wrapping one of the package sentinels. Expired
// credentials are reported as [ErrCredentialExpired], distinct from
// [ErrTokenInvalid], so that clients can tell "sign in again" from "bad
// token".
//
// # Architecture boundaries
//
// HTTP adapters live in middleware (net/http) and ginauth (gin). Directory
// adapters live under directory. The outbound client half lives in client.
// Orchestration is in internal/flows and never imports this package.
//
// # Performance contract
//
// In ModeJWTOnly Authenticate performs no Redis round trip and exactly one
// directory lookup. ModeStrict adds one pipelined Redis round trip.
package classAuth
