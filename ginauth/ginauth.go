package ginauth

import (
	"strings"

	classAuth "github.com/MrEthical07/classAuth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

// Context keys set on *gin.Context after a successful Authenticate.
const (
	PrincipalKey  = "principal"
	RoleKey       = "role"
	AuthResultKey = "authResult"
)

// Authenticate runs the auth gate under the engine's default mode.
func Authenticate(engine *classAuth.Engine) gin.HandlerFunc {
	return AuthenticateWithMode(engine, classAuth.ModeInherit)
}

// AuthenticateWithMode runs the auth gate under mode. On success the
// principal, role and result are stored on the gin context and on the
// request context, so net/http helpers see them too. An inbound
// X-Request-ID is reused only when classAuth.ValidRequestID accepts it;
// otherwise a uuid is generated. The id is echoed on the response.
func AuthenticateWithMode(engine *classAuth.Engine, mode classAuth.RouteMode) gin.HandlerFunc {
	return func(c *gin.Context) {
		if engine == nil {
			abortWithError(c, classAuth.ErrEngineNotReady)
			return
		}

		ctx := c.Request.Context()
		if classAuth.RequestIDFromContext(ctx) == "" {
			id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
			if !classAuth.ValidRequestID(id) {
				id = uuid.NewString()
			}
			c.Header(RequestIDHeader, id)
			ctx = classAuth.WithRequestID(ctx, id)
		}
		ctx = classAuth.WithClientIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)

		res, err := engine.AuthenticateRequest(c.Request, mode)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(PrincipalKey, res.Principal)
		c.Set(RoleKey, res.Role)
		c.Set(AuthResultKey, res)
		c.Request = c.Request.WithContext(classAuth.WithAuthResult(c.Request.Context(), res))
		c.Next()
	}
}

// RequireRole admits requests whose authenticated role is one of roles. It
// must run after Authenticate.
func RequireRole(engine *classAuth.Engine, roles ...classAuth.Role) gin.HandlerFunc {
	allowed := append([]classAuth.Role(nil), roles...)
	return func(c *gin.Context) {
		res, _ := ResultFrom(c)
		if err := engine.Authorize(res, allowed...); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RequireStudent admits only students.
func RequireStudent(engine *classAuth.Engine) gin.HandlerFunc {
	return RequireRole(engine, classAuth.RoleStudent)
}

// RequireTeacher admits only teachers.
func RequireTeacher(engine *classAuth.Engine) gin.HandlerFunc {
	return RequireRole(engine, classAuth.RoleTeacher)
}

// PrincipalFrom returns the principal stored by Authenticate.
func PrincipalFrom(c *gin.Context) (classAuth.Principal, bool) {
	raw, ok := c.Get(PrincipalKey)
	if !ok {
		return classAuth.Principal{}, false
	}
	p, ok := raw.(classAuth.Principal)
	return p, ok
}

// ResultFrom returns the AuthResult stored by Authenticate.
func ResultFrom(c *gin.Context) (*classAuth.AuthResult, bool) {
	raw, ok := c.Get(AuthResultKey)
	if !ok {
		return nil, false
	}
	res, ok := raw.(*classAuth.AuthResult)
	return res, ok && res != nil
}

// ErrorHandler renders the last error attached with c.Error once the
// handler chain returns, the way the net/http Handle adapter does. It is a
// no-op when the response has already been written.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeError(c, c.Errors.Last().Err)
	}
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	writeError(c, err)
	c.Abort()
}

func writeError(c *gin.Context, err error) {
	body := classAuth.NewErrorResponse(err)
	if challenge := classAuth.WWWAuthenticate(err); challenge != "" {
		c.Header("WWW-Authenticate", challenge)
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(body.StatusCode, body)
}
