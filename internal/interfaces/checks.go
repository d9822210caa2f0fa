package interfaces

// This file contains compile-time interface implementation checks.
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/posts"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.UserStore = (*users.Repository)(nil)
var _ http.PostStore = (*posts.Repository)(nil)
var _ http.BookStore = (*books.Repository)(nil)
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Audit
// =============================================================================

var _ http.AuditLogger = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

// UserContentDeleter implementations
var _ tasks.UserContentDeleter = (*posts.Repository)(nil)
var _ tasks.UserContentDeleter = (*books.Repository)(nil)

// OrphanSweeper implementations
var _ scheduler.OrphanSweeper = (*posts.Repository)(nil)
var _ scheduler.OrphanSweeper = (*books.Repository)(nil)

// Scheduler status for /health
var _ http.MaintenanceStatus = (*scheduler.MaintenanceScheduler)(nil)

// Task client entry points
var _ http.UserContentPurger = (*tasks.Client)(nil)
var _ scheduler.AuditCleanupEnqueuer = (*tasks.Client)(nil)
