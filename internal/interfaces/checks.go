package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"librarium/internal/database"
	"librarium/internal/database/books"
	"librarium/internal/database/collections"
	"librarium/internal/database/sessions"
	"librarium/internal/http"
	"librarium/internal/importer"
	"librarium/internal/scheduler"
	"librarium/internal/sources"
	"librarium/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Books repository serves the HTTP layer, the import pipeline, the task
// processors and the re-verification sweep.
var _ http.BookReader = (*books.Repository)(nil)
var _ importer.BookStore = (*books.Repository)(nil)
var _ tasks.BookStore = (*books.Repository)(nil)
var _ scheduler.FlaggedLister = (*books.Repository)(nil)

// CollectionReader implementations
var _ http.CollectionReader = (*collections.Repository)(nil)

// Import session tracking
var _ http.SessionReader = (*sessions.Repository)(nil)
var _ http.SessionRecorder = (*sessions.Repository)(nil)

// Database root doubles as user resolver and health probe
var _ http.UserResolver = (*database.Database)(nil)
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Import Pipeline
// =============================================================================

var _ http.ImportRunner = (*importer.Runner)(nil)
var _ importer.Enricher = (*importer.SourceEnricher)(nil)
var _ tasks.Enricher = (*importer.SourceEnricher)(nil)

// =============================================================================
// External Sources
// =============================================================================

var _ sources.Adapter = (*sources.HardcoverClient)(nil)
var _ sources.Adapter = (*sources.GoogleBooksClient)(nil)
var _ sources.Adapter = (*sources.OpenLibraryClient)(nil)
var _ sources.Adapter = (*sources.WorldCatClient)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ scheduler.TaskQueue = (*tasks.Client)(nil)
