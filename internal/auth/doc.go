// Package auth provides session-based authentication for the API.
//
// A successful login stores the user id, username and a logged-in flag in an
// scs session. The session cookie is named "session". Sessions are kept in
// one of three stores, chosen by SESSION_STORE:
//
//	SESSION_STORE=sqlite  # sessions table in the main SQLite database (default)
//	SESSION_STORE=redis   # REDIS_ADDR, REDIS_PASSWORD, REDIS_DB
//	SESSION_STORE=memory  # lost on restart
//
// Other configuration:
//
//	AUTH_SESSION_SECRET=<base64-32-bytes>  # CSRF key, auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h              # Session duration
//	AUTH_BCRYPT_COST=12                    # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true               # HTTPS-only cookies
//	AUTH_CSRF_ENABLED=false                # Require X-CSRF-Token on writes
//
// # Usage
//
//	store, err := auth.NewSessionStore(ctx, cfg.Sessions, sqlDB)
//	sessions := auth.NewSessionManager(store, cfg.Auth)
//	router.Use(sessions.LoadAndSaveSession())
//	protected.Use(auth.NewGuard(sessions).RequireLogin())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c)  // 0 outside the guard
package auth
