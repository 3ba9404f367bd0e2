// Package entrypoint wires the application together and runs the HTTP
// server with graceful shutdown.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"librarium/internal/config"
	"librarium/internal/database"
	"librarium/internal/database/books"
	"librarium/internal/database/collections"
	"librarium/internal/database/sessions"
	"librarium/internal/fusion"
	http_controllers "librarium/internal/http"
	"librarium/internal/importer"
	"librarium/internal/match"
	"librarium/internal/scheduler"
	"librarium/internal/sources"
	"librarium/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener so in-flight imports can
	// still stream their final events.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// NewEnricher builds the source-backed enricher from configuration. Shared
// by the server, the CLI, and the task processors.
func NewEnricher(cfg *config.Config) *importer.SourceEnricher {
	clientCfg := sources.ClientConfig{
		MaxRetries:  cfg.Adapters.MaxRetries,
		BackoffBase: cfg.Adapters.BackoffBase,
		CallTimeout: cfg.Adapters.CallTimeout,
	}

	adapters := []sources.Adapter{
		sources.NewHardcoverClient(cfg.Hardcover.Token, clientCfg),
		sources.NewGoogleBooksClient(clientCfg),
		sources.NewOpenLibraryClient(clientCfg),
		sources.NewWorldCatClient(clientCfg),
	}

	scorer := match.NewScorer(match.Thresholds{
		Title:          cfg.Match.TitleThreshold,
		Author:         cfg.Match.AuthorThreshold,
		FallbackTitle:  cfg.Match.FallbackTitleThreshold,
		FallbackAuthor: cfg.Match.FallbackAuthorThreshold,
	})
	engine := fusion.NewEngine(cfg.Genres.MaxTags)

	return importer.NewSourceEnricher(adapters, scorer, engine, cfg.Match.TitleThreshold)
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Librarium v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	bookRepo := books.NewRepository(db.DB)
	collectionRepo := collections.NewRepository(db.DB)
	sessionRepo := sessions.NewRepository(db.DB)

	enricher := NewEnricher(cfg)
	runner := importer.NewRunner(bookRepo, enricher)

	// Task queue for background re-enrichment
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:           cfg.Tasks.Workers,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewReenrichBookQueue(bookRepo, enricher),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Periodic sweep that retries flagged books
	var sweep *scheduler.ReverifySweep
	if cfg.Scheduler.ReverifyEnabled && taskClient != nil {
		sweep = scheduler.NewReverifySweep(bookRepo, taskClient, cfg.Scheduler.ReverifySchedule)
		if err := sweep.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start re-verification sweep: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		BookReader:       bookRepo,
		CollectionReader: collectionRepo,
		SessionReader:    sessionRepo,
		SessionRecorder:  sessionRepo,
		UserResolver:     db,
		ImportRunner:     runner,
		Health:           db,
		ImportDefaults: importer.Options{
			Mode:           importer.ModeFull,
			SkipDuplicates: true,
			BatchSize:      cfg.Import.BatchSize,
			GroupDelay:     cfg.Import.GroupDelay,
		},
		FastBatchSize: cfg.Import.FastBatchSize,
		TaskClient:    taskClient,
		Version:       version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if sweep != nil {
			sweep.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
