package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeleter struct {
	mu      sync.Mutex
	calls   []uint
	deleted int64
	err     error
	done    chan struct{}
}

func (f *fakeDeleter) DeleteByUser(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, userID)
	f.mu.Unlock()
	if f.done != nil {
		close(f.done)
		f.done = nil
	}
	return f.deleted, f.err
}

func (f *fakeDeleter) userIDs() []uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint(nil), f.calls...)
}

type fakeCleaner struct {
	retention time.Duration
	deleted   int64
	err       error
}

func (f *fakeCleaner) DeleteOldEvents(_ context.Context, retention time.Duration) (int64, error) {
	f.retention = retention
	return f.deleted, f.err
}

func TestPurgeUserContentProcessor(t *testing.T) {
	posts := &fakeDeleter{deleted: 3}
	books := &fakeDeleter{deleted: 1}
	process := PurgeUserContentProcessor(posts, books)

	err := process(context.Background(), PurgeUserContentTask{UserID: 7})

	require.NoError(t, err)
	assert.Equal(t, []uint{7}, posts.userIDs())
	assert.Equal(t, []uint{7}, books.userIDs())
}

func TestPurgeUserContentProcessor_Errors(t *testing.T) {
	t.Run("missing user id", func(t *testing.T) {
		err := PurgeUserContentProcessor(&fakeDeleter{})(context.Background(), PurgeUserContentTask{})
		assert.Error(t, err)
	})

	t.Run("deleter failure stops the purge", func(t *testing.T) {
		failing := &fakeDeleter{err: errors.New("database is locked")}
		after := &fakeDeleter{}

		err := PurgeUserContentProcessor(failing, after)(context.Background(), PurgeUserContentTask{UserID: 7})

		assert.ErrorContains(t, err, "database is locked")
		assert.Empty(t, after.userIDs())
	})
}

func TestPurgeUserContentTaskConfig(t *testing.T) {
	cfg := PurgeUserContentTask{UserID: 1}.Config()

	assert.Equal(t, "purge_user_content", cfg.Name)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.NotNil(t, cfg.Retention)
}

func TestCleanupAuditEvents(t *testing.T) {
	t.Run("uses task retention", func(t *testing.T) {
		cleaner := &fakeCleaner{deleted: 4}

		err := CleanupAuditEventsProcessor(cleaner)(context.Background(), CleanupAuditEventsTask{RetentionDays: 7})

		require.NoError(t, err)
		assert.Equal(t, 7*24*time.Hour, cleaner.retention)
	})

	t.Run("defaults to thirty days", func(t *testing.T) {
		cleaner := &fakeCleaner{}

		_, err := CleanupAuditEvents(context.Background(), cleaner, 0)

		require.NoError(t, err)
		assert.Equal(t, 30*24*time.Hour, cleaner.retention)
	})

	t.Run("nil cleaner", func(t *testing.T) {
		_, err := CleanupAuditEvents(context.Background(), nil, 7)
		assert.Error(t, err)
	})
}
