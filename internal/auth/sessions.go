package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/redis/go-redis/v9"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Session data keys
const (
	SessionKeyUserID   = "user_id"
	SessionKeyUsername = "username"
	SessionKeyLoggedIn = "logged_in"
)

var ErrSQLiteStoreNeedsDB = errors.New("sqlite session store requires the sqlite database driver")

// NewSessionStore builds the scs store selected by cfg.Store.
// sqlDB is only used by the SQLite store and may be nil otherwise.
func NewSessionStore(ctx context.Context, cfg config.Sessions, sqlDB *sql.DB) (scs.Store, error) {
	switch cfg.Store {
	case config.SessionStoreSQLite, "":
		if sqlDB == nil {
			return nil, ErrSQLiteStoreNeedsDB
		}
		// Create sessions table if it doesn't exist
		_, err := sqlDB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
		if err != nil {
			return nil, fmt.Errorf("failed to create sessions table: %w", err)
		}
		return sqlite3store.New(sqlDB), nil
	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		return goredisstore.New(client), nil
	case config.SessionStoreMemory:
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.Store)
	}
}

// SessionManager wraps scs.SessionManager with application-specific methods.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager on top of store.
func NewSessionManager(store scs.Store, cfg config.Auth) *SessionManager {
	sm := scs.New()
	sm.Store = store

	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2 // Half of lifetime for inactivity

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}
}

// StartSession records a successful login. Any previous session data is replaced.
func (sm *SessionManager) StartSession(r *http.Request, user *entities.User) error {
	// Renew token to prevent session fixation
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}

	// Store user ID as int to match GetInt() retrieval
	sm.Put(r.Context(), SessionKeyUserID, int(user.ID))
	sm.Put(r.Context(), SessionKeyUsername, user.Username)
	sm.Put(r.Context(), SessionKeyLoggedIn, true)

	return nil
}

// DestroySession removes all session data and invalidates the session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// IsLoggedIn reports whether the session carries a completed login.
func (sm *SessionManager) IsLoggedIn(r *http.Request) bool {
	return sm.GetBool(r.Context(), SessionKeyLoggedIn)
}

// GetUserID retrieves the user ID from the session.
// Returns 0 if not authenticated.
func (sm *SessionManager) GetUserID(r *http.Request) uint {
	return uint(sm.GetInt(r.Context(), SessionKeyUserID))
}

// GetUsername retrieves the username from the session.
func (sm *SessionManager) GetUsername(r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyUsername)
}

// SessionData holds the session information for a request.
type SessionData struct {
	UserID   uint
	Username string
	LoggedIn bool
}

// GetSessionData retrieves all session data at once, or nil when nobody is logged in.
func (sm *SessionManager) GetSessionData(r *http.Request) *SessionData {
	if !sm.IsLoggedIn(r) {
		return nil
	}
	return &SessionData{
		UserID:   sm.GetUserID(r),
		Username: sm.GetUsername(r),
		LoggedIn: true,
	}
}
