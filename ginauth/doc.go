// Package ginauth adapts the classAuth engine to gin.
//
//	r := gin.New()
//	r.Use(ginauth.ErrorHandler())
//	api := r.Group("/api", ginauth.Authenticate(engine))
//	api.GET("/students/me", ginauth.RequireStudent(engine), handler)
//
// Handlers read the caller with [PrincipalFrom]. Failures are written as a
// classAuth.ErrorResponse with the matching status, and handlers may call
// c.Error to have [ErrorHandler] render their own errors the same way.
package ginauth
