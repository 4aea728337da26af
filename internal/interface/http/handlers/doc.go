// Package handlers contains reusable HTTP building blocks: health checks,
// bearer-session authentication and middleware.
//
// # Health Checks
//
// Checks run in parallel, each under its own timeout:
//
//	checker := handlers.NewCompositeHealthChecker("v0.1.0")
//	checker.AddCheck("postgres", handlers.NewPingCheck(conn))
//	checker.AddCheck("redis", handlers.NewPingCheck(cache))
//
// # Authentication
//
// BearerAuth resolves "Authorization: Bearer <token>" through a SessionResolver
// and stores the username in the request context:
//
//	auth := handlers.NewBearerAuth(authHandler, writeError)
//	r.With(auth.Middleware).Get("/api/v1/me", getMe)
//
//	username, ok := handlers.UsernameFrom(r.Context())
package handlers
