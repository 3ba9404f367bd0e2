// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// The application uses several categories of interfaces:
//
// ## Data Access Interfaces
//
//   - BookReader: Read-only access to books (internal/http/books.go)
//   - CollectionReader: Shelf-backed collection access (internal/http/collections.go)
//   - SessionReader/SessionRecorder: Import session tracking (internal/http)
//   - BookStore: Persistence surface of the import pipeline (internal/importer/coordinator.go)
//
// ## External Source Interfaces
//
//   - Adapter: One metadata source (internal/sources/adapter.go)
//
// ## Background Work Interfaces
//
//   - FlaggedLister/TaskQueue: Re-verification sweep inputs (internal/scheduler)
//   - BookStore: Task-side book access (internal/tasks/reenrich_book.go)
//
// # Adding a New Metadata Source
//
// To add a new source of book metadata (e.g., LibraryThing):
//
//  1. Implement Adapter in internal/sources/
//
//     type LibraryThingClient struct {
//         cfg  ClientConfig
//         http *http.Client
//     }
//
//     func (c *LibraryThingClient) Name() string
//     func (c *LibraryThingClient) Fetch(ctx context.Context, isbn, title, author string) ([]Candidate, error)
//
//     var _ Adapter = (*LibraryThingClient)(nil)
//
//  2. Give it a priority in internal/sources/adapter.go so the fusion
//     engine knows where its fields rank.
//
//  3. Add it to the adapter list in entrypoint.NewEnricher.
//
// # Adding a New Database Domain
//
// To add a new data domain (e.g., reading goals):
//
//  1. Create sub-package: internal/database/goals/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Implement interface methods
//
//  4. Add compile-time check in this package's checks.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
