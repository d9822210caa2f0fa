package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// UserContentDeleter removes everything one user owns of a single kind.
// Implemented by posts.Repository and books.Repository.
type UserContentDeleter interface {
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

// PurgeUserContentTask deletes the posts and books of a deleted user.
type PurgeUserContentTask struct {
	UserID uint `json:"user_id"`
}

// Config returns the queue configuration for purge tasks.
func (t PurgeUserContentTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_user_content",
		MaxAttempts: 5,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PurgeUserContentProcessor creates a processor function for PurgeUserContentTask.
func PurgeUserContentProcessor(deleters ...UserContentDeleter) backlite.QueueProcessor[PurgeUserContentTask] {
	return func(ctx context.Context, task PurgeUserContentTask) error {
		if task.UserID == 0 {
			return fmt.Errorf("purge user content: missing user id")
		}

		var total int64
		for _, d := range deleters {
			n, err := d.DeleteByUser(ctx, task.UserID)
			if err != nil {
				return fmt.Errorf("purge user content for user %d: %w", task.UserID, err)
			}
			total += n
		}

		log.Printf("[TASK] Purged %d records owned by deleted user %d", total, task.UserID)
		return nil
	}
}

// NewPurgeUserContentQueue creates a backlite queue for purge tasks.
func NewPurgeUserContentQueue(deleters ...UserContentDeleter) backlite.Queue {
	return backlite.NewQueue(PurgeUserContentProcessor(deleters...))
}
