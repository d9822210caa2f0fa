package audit

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	svc := NewService(auditRepo.NewRepository(db))
	t.Cleanup(func() {
		svc.Wait()
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return svc, db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventUser,
		Action:    "user_create",
		Status:    entities.AuditStatusSuccess,
	}

	err := svc.Log(context.Background(), event)
	require.NoError(t, err)

	var saved entities.AuditEvent
	err = db.First(&saved, event.ID).Error
	require.NoError(t, err)
	assert.Equal(t, "user_create", saved.Action)
}

func TestService_LogAuth(t *testing.T) {
	svc, db := setupTestService(t)
	info := RequestInfo{IPAddress: "10.0.0.1", UserAgent: "curl/8.0", RequestID: "req-1"}

	t.Run("successful login", func(t *testing.T) {
		svc.LogAuth(7, "login", info, nil)
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("action = ? AND user_id = ?", "login", 7).First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditEventAuth, event.EventType)
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
		assert.Equal(t, "10.0.0.1", event.IPAddress)
		assert.Equal(t, "req-1", event.RequestID)
	})

	t.Run("failed login", func(t *testing.T) {
		svc.LogAuth(0, "login_failed", info, errors.New("incorrect password"))
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("action = ?", "login_failed").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditStatusFailed, event.Status)
		assert.Equal(t, "incorrect password", event.ErrorMsg)
	})
}

func TestService_LogUserChange(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogUserChange(1, 2, "user_delete", "Deleted user 2", RequestInfo{UserAgent: strings.Repeat("x", 600)})
	svc.Wait()

	var event entities.AuditEvent
	err := db.Where("action = ?", "user_delete").First(&event).Error
	require.NoError(t, err)
	assert.Equal(t, uint(1), event.UserID)
	assert.Equal(t, "user", event.EntityType)
	require.NotNil(t, event.EntityID)
	assert.Equal(t, uint(2), *event.EntityID)
	assert.Len(t, event.UserAgent, 500)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{Action: "old", CreatedAt: time.Now().Add(-40 * 24 * time.Hour)}))
	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{Action: "new"}))

	deleted, err := svc.DeleteOldEvents(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var count int64
	db.Model(&entities.AuditEvent{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
