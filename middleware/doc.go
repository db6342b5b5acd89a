// Package middleware adapts the classAuth engine to net/http.
//
// A typical chain is
//
//	RequestContext -> Guard -> RequireStudent -> handler
//
// [Guard] extracts the credential (accessToken cookie first, then the
// Bearer header), authenticates it and stores the result in the request
// context. [RequireRole], [RequireStudent] and [RequireTeacher] read that
// result back. [RequireJWTOnly] and [RequireStrict] pin the validation mode
// for a route.
//
// Failures are rendered by [WriteError] as a JSON ErrorResponse with the
// matching status code. Handlers written as [HandlerFunc] can return errors
// and have them rendered the same way through [Handle].
//
// This package makes no authentication decisions of its own.
package middleware
