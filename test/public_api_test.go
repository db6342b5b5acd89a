package test

import (
	"context"
	"net/http"
	"testing"

	classAuth "github.com/MrEthical07/classAuth"
	"github.com/MrEthical07/classAuth/client"
	"github.com/MrEthical07/classAuth/directory"
	"github.com/MrEthical07/classAuth/ginauth"
	"github.com/MrEthical07/classAuth/middleware"
	"github.com/gin-gonic/gin"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = classAuth.New

	var _ *classAuth.Engine
	var _ classAuth.Config
	var _ classAuth.AuthResult
	var _ classAuth.Principal
	var _ classAuth.Directory = classAuth.DirectoryFunc(nil)
	var _ classAuth.Directory = directory.NewMemory()
	var _ classAuth.AuditSink = classAuth.NoOpSink{}
	var _ classAuth.LintResult

	var _ error = classAuth.ErrNoCredential
	var _ error = classAuth.ErrCredentialExpired
	var _ error = classAuth.ErrTokenInvalid
	var _ error = classAuth.ErrCredentialRevoked
	var _ error = classAuth.ErrPrincipalNotFound
	var _ error = classAuth.ErrPrincipalAmbiguous
	var _ error = classAuth.ErrForbidden
	var _ error = classAuth.ErrRevocationUnavailable
	var _ error = (*classAuth.Error)(nil)

	var _ func(*classAuth.Engine, classAuth.RouteMode) func(http.Handler) http.Handler = middleware.Guard
	var _ func(*classAuth.Engine) func(http.Handler) http.Handler = middleware.RequireJWTOnly
	var _ func(*classAuth.Engine) func(http.Handler) http.Handler = middleware.RequireStrict
	var _ func(*classAuth.Engine) func(http.Handler) http.Handler = middleware.RequireStudent
	var _ func(*classAuth.Engine) func(http.Handler) http.Handler = middleware.RequireTeacher

	var _ func(*classAuth.Engine) gin.HandlerFunc = ginauth.Authenticate
	var _ func(*classAuth.Engine, ...classAuth.Role) gin.HandlerFunc = ginauth.RequireRole

	var _ func(client.Config) (*client.Client, error) = client.New
	var _ client.Storage = client.NewMemoryStorage()

	var _ func(*classAuth.Engine, context.Context, string) (*classAuth.AuthResult, error) = (*classAuth.Engine).Authenticate
	var _ func(*classAuth.Engine, *http.Request, classAuth.RouteMode) (*classAuth.AuthResult, error) = (*classAuth.Engine).AuthenticateRequest
	var _ func(*classAuth.Engine, *classAuth.AuthResult, ...classAuth.Role) error = (*classAuth.Engine).Authorize
	var _ func(*classAuth.Engine, context.Context, string) error = (*classAuth.Engine).RevokeToken
	var _ func(*classAuth.Engine, context.Context, string) error = (*classAuth.Engine).RevokeSubject
}
