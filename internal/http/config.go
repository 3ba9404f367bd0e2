package http

import (
	"librarium/internal/importer"
	"librarium/internal/tasks"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	BookReader       BookReader
	CollectionReader CollectionReader
	SessionReader    SessionReader
	SessionRecorder  SessionRecorder
	UserResolver     UserResolver
	ImportRunner     ImportRunner
	Health           Pinger

	// Import defaults from configuration
	ImportDefaults importer.Options
	FastBatchSize  int

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
