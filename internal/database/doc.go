// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (SQLite or Postgres), migrations
//	├── users/           # User CRUD, password hashing on write
//	├── posts/           # Reading notes owned by users
//	├── books/           # Books owned by users
//	└── audit/           # Audit event log
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	usersRepo := users.NewRepository(db.DB, cfg.Auth.BcryptCost)
//	postsRepo := posts.NewRepository(db.DB)
//
//	user, err := usersRepo.GetUserByID(ctx, 42)
//
// Foreign key constraints are not created at migration time. Ownership is
// checked by the repositories when content is written, and content left by a
// deleted user is purged by a background task and the maintenance sweep.
package database
