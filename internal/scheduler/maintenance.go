package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookshelf/internal/tasks"
)

// OrphanSweeper deletes records whose owner no longer exists.
// Implemented by posts.Repository and books.Repository.
type OrphanSweeper interface {
	DeleteOrphans(ctx context.Context) (int64, error)
}

// AuditCleanupEnqueuer hands audit cleanup to the task queue. Implemented by tasks.Client.
type AuditCleanupEnqueuer interface {
	EnqueueAuditCleanup(ctx context.Context, retentionDays int) error
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a standard five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// MaintenanceScheduler periodically removes orphaned posts and books and
// expires old audit events.
type MaintenanceScheduler struct {
	schedule      string
	retentionDays int
	sweepers      []OrphanSweeper
	enqueuer      AuditCleanupEnqueuer    // optional
	cleaner       tasks.AuditEventCleaner // used when enqueuer is nil

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewMaintenanceScheduler creates a new scheduler instance. Audit cleanup goes
// through enqueuer when set, otherwise it runs inline against cleaner.
func NewMaintenanceScheduler(schedule string, retentionDays int, enqueuer AuditCleanupEnqueuer, cleaner tasks.AuditEventCleaner, sweepers ...OrphanSweeper) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		schedule:      schedule,
		retentionDays: retentionDays,
		sweepers:      sweepers,
		enqueuer:      enqueuer,
		cleaner:       cleaner,
		cron:          cron.New(cron.WithParser(cronParser)),
	}
}

// Start begins the scheduler
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.RunNow(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("[SCHEDULER] Maintenance started with schedule '%s'. Next run: %v", s.schedule, s.nextRunLocked())

	// Monitor for context cancellation
	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("[SCHEDULER] Maintenance stopped")
}

// IsRunning returns whether the scheduler is active
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next run will occur
func (s *MaintenanceScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	t := s.nextRunLocked()
	if t.IsZero() {
		return nil
	}
	return &t
}

func (s *MaintenanceScheduler) nextRunLocked() time.Time {
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			return entry.Next
		}
	}
	return time.Time{}
}

// RunNow performs one maintenance pass and returns the number of orphans removed.
func (s *MaintenanceScheduler) RunNow(ctx context.Context) int64 {
	startTime := time.Now()
	orphans := SweepOrphans(ctx, s.sweepers...)

	switch {
	case s.enqueuer != nil:
		if err := s.enqueuer.EnqueueAuditCleanup(ctx, s.retentionDays); err != nil {
			log.Printf("[SCHEDULER] Failed to enqueue audit cleanup: %v", err)
		}
	case s.cleaner != nil:
		if _, err := tasks.CleanupAuditEvents(ctx, s.cleaner, s.retentionDays); err != nil {
			log.Printf("[SCHEDULER] Audit cleanup failed: %v", err)
		}
	}

	log.Printf("[SCHEDULER] Maintenance finished in %v: %d orphaned records removed",
		time.Since(startTime).Round(time.Millisecond), orphans)
	return orphans
}

// SweepOrphans runs every sweeper and returns the total removed. Failures are
// logged and do not stop the remaining sweepers.
func SweepOrphans(ctx context.Context, sweepers ...OrphanSweeper) int64 {
	var total int64
	for _, sweeper := range sweepers {
		n, err := sweeper.DeleteOrphans(ctx)
		if err != nil {
			log.Printf("[SCHEDULER] Orphan sweep failed: %v", err)
			continue
		}
		total += n
	}
	return total
}
