// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces (internal/http/stores.go)
//
//   - UserStore: account CRUD and lookup by email
//   - PostStore: posts, writes scoped to the owner
//   - BookStore: books, writes scoped to the owner
//   - Pinger: database liveness for /health
//
// ## Cross-cutting Interfaces
//
//   - AuditLogger: auth and account events (internal/http/stores.go)
//   - UserContentPurger: schedules removal of a deleted user's content
//   - UserContentDeleter, AuditEventCleaner: task processors (internal/tasks)
//   - OrphanSweeper, AuditCleanupEnqueuer: maintenance job (internal/scheduler)
//
// # Adding a Store
//
//  1. Declare the interface next to its consumer.
//  2. Implement it in a repository under internal/database/<name>.
//  3. Add a compile-time check to checks.go.
//  4. Wire the repository in internal/entrypoint.
//
// Optional dependencies are interfaces on the router config. Only assign them
// when the concrete value is non-nil, a typed nil pointer makes the interface
// non-nil and the controller would call into it.
package interfaces
