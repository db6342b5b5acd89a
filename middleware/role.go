package middleware

import (
	"net/http"

	classAuth "github.com/MrEthical07/classAuth"
)

// RequireRole admits requests whose authenticated role is one of roles. It
// must run after Guard; a request without an AuthResult is rejected with
// 401. engine may be nil, in which case denials are not counted or audited.
func RequireRole(engine *classAuth.Engine, roles ...classAuth.Role) func(http.Handler) http.Handler {
	allowed := append([]classAuth.Role(nil), roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := engine.AuthorizeContext(r.Context(), allowed...); err != nil {
				WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireStudent admits only students.
func RequireStudent(engine *classAuth.Engine) func(http.Handler) http.Handler {
	return RequireRole(engine, classAuth.RoleStudent)
}

// RequireTeacher admits only teachers.
func RequireTeacher(engine *classAuth.Engine) func(http.Handler) http.Handler {
	return RequireRole(engine, classAuth.RoleTeacher)
}
