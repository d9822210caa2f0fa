package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2/memstore"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func testAuthConfig() config.Auth {
	return config.Auth{
		SessionLifetime: 24 * time.Hour,
		SecureCookies:   false,
	}
}

func setupSessionManager(t *testing.T) *SessionManager {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "sessions.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get SQL DB: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	store, err := NewSessionStore(context.Background(), config.Sessions{Store: config.SessionStoreSQLite}, sqlDB)
	if err != nil {
		t.Fatalf("failed to create session store: %v", err)
	}

	return NewSessionManager(store, testAuthConfig())
}

func TestNewSessionManager(t *testing.T) {
	sm := setupSessionManager(t)

	if sm.SessionManager == nil {
		t.Fatal("inner session manager should not be nil")
	}

	// Verify cookie configuration
	if sm.Cookie.Name != "session" {
		t.Errorf("Expected cookie name 'session', got '%s'", sm.Cookie.Name)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("Cookie should be HttpOnly")
	}
	if sm.Cookie.Secure {
		t.Error("Cookie should not be Secure when SecureCookies is false")
	}
	if sm.Lifetime != 24*time.Hour {
		t.Errorf("Expected 24h lifetime, got %v", sm.Lifetime)
	}
}

func TestNewSessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, err := NewSessionStore(ctx, config.Sessions{Store: config.SessionStoreMemory}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := store.(*memstore.MemStore); !ok {
			t.Errorf("Expected *memstore.MemStore, got %T", store)
		}
	})

	t.Run("sqlite without database", func(t *testing.T) {
		_, err := NewSessionStore(ctx, config.Sessions{Store: config.SessionStoreSQLite}, nil)
		if err != ErrSQLiteStoreNeedsDB {
			t.Errorf("Expected ErrSQLiteStoreNeedsDB, got %v", err)
		}
	})

	t.Run("unknown store", func(t *testing.T) {
		_, err := NewSessionStore(ctx, config.Sessions{Store: "etcd"}, nil)
		if err == nil {
			t.Error("Expected error for unknown store")
		}
	})
}

func TestSessionManager_StartAndRetrieveSession(t *testing.T) {
	sm := setupSessionManager(t)

	user := &entities.User{
		ID:       123,
		Username: "testuser",
		Email:    "test@example.com",
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sm.IsLoggedIn(r) {
			t.Error("Should not be logged in before StartSession")
		}
		if data := sm.GetSessionData(r); data != nil {
			t.Errorf("Expected nil session data, got %+v", data)
		}

		if err := sm.StartSession(r, user); err != nil {
			t.Fatalf("failed to start session: %v", err)
		}

		if !sm.IsLoggedIn(r) {
			t.Error("Should be logged in after StartSession")
		}
		if userID := sm.GetUserID(r); userID != user.ID {
			t.Errorf("Expected user ID %d, got %d", user.ID, userID)
		}
		if username := sm.GetUsername(r); username != user.Username {
			t.Errorf("Expected username '%s', got '%s'", user.Username, username)
		}

		data := sm.GetSessionData(r)
		if data == nil || data.UserID != user.ID || !data.LoggedIn {
			t.Errorf("Unexpected session data %+v", data)
		}

		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestSessionManager_DestroySession(t *testing.T) {
	sm := setupSessionManager(t)

	user := &entities.User{ID: 789, Username: "destroyuser"}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := sm.StartSession(r, user); err != nil {
			t.Fatalf("failed to start session: %v", err)
		}

		if err := sm.DestroySession(r); err != nil {
			t.Fatalf("failed to destroy session: %v", err)
		}

		if sm.IsLoggedIn(r) {
			t.Error("Should not be logged in after session destroy")
		}
		if sm.GetUserID(r) != 0 {
			t.Error("User ID should be cleared after session destroy")
		}

		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(rr, req)
}
