// Package auth protects the admin site and the task API.
//
// It supports two authentication modes:
//   - "none": no authentication, every visitor may use the admin (development only)
//   - "local": admin users stored in the database, session cookies for the
//     admin site and bearer tokens for API clients (default)
//
// # Configuration
//
//	AUTH_MODE=local                # or none
//	AUTH_SESSION_SECRET=<random>   # CSRF key material, generated if empty
//	AUTH_SESSION_LIFETIME=12h
//	AUTH_TOKEN_EXPIRY=720h
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=true       # HTTPS-only cookies
//
// # Usage
//
//	svc := auth.NewService(users.NewRepository(db), cfg.Auth)
//	mw := auth.NewMiddleware(svc, sessions, cfg.Auth)
//	router.Use(mw.Handler())
//	admin := router.Group("/admin", mw.RequireAuth(), mw.RequireWriteAccess())
//
// Users are either admins (full access) or viewers (read-only admin).
package auth
