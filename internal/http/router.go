package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Health, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Everything below is scoped to the caller identified by the header.
	api := router.Group("/api")
	api.Use(UserMiddleware(cfg.UserResolver))

	importController := NewGoodreadsImportController(cfg.ImportRunner, cfg.SessionRecorder, cfg.ImportDefaults, cfg.FastBatchSize)
	api.POST("/import/goodreads", importController.Import)

	sessionsController := NewSessionsController(cfg.SessionReader)
	api.GET("/imports", sessionsController.List)
	api.GET("/imports/:id", sessionsController.Get)

	booksController := NewBooksController(cfg.BookReader)
	api.GET("/books", booksController.List)
	api.GET("/books/stats", booksController.Stats)
	api.GET("/books/flagged", booksController.Flagged)
	api.GET("/books/:id", booksController.Get)

	collectionsController := NewCollectionsController(cfg.CollectionReader)
	api.GET("/collections", collectionsController.List)
	api.GET("/collections/:id", collectionsController.Get)

	if cfg.TaskClient != nil {
		enrichController := NewEnrichController(cfg.BookReader, cfg.TaskClient)
		api.POST("/books/:id/enrich", enrichController.EnrichBook)
		api.POST("/books/enrich-flagged", enrichController.EnrichFlagged)
	}

	return router
}
