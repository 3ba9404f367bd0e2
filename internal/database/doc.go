// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, user resolution
//	├── books/           # Book CRUD, enrichment updates, flagged lookups
//	├── collections/     # Shelf-backed collections and book links
//	└── sessions/        # Import session bookkeeping
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./app.db")
//
//	// Create domain-specific repositories
//	booksRepo := books.NewRepository(db.DB)
//	collectionsRepo := collections.NewRepository(db.DB)
//
//	// Use repositories
//	book, err := booksRepo.GetByID(123)
//	shelves, err := collectionsRepo.ListByUser(userID)
//
// # Interface Implementations
//
// Each sub-package implements the narrow interfaces its consumers declare;
// the full list of compile-time checks lives in internal/interfaces.
//
// # Adding a New Domain
//
// To add a new domain (e.g., reading goals):
//
//  1. Create a new sub-package: internal/database/goals/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add a compile-time check in internal/interfaces/checks.go
package database
