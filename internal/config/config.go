package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Import
		Adapters
		Hardcover
		Match
		Genres
		Tasks
		Scheduler
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Import struct {
		BatchSize     int           // Records enriched concurrently per group
		FastBatchSize int           // Group size when enrichment is skipped
		GroupDelay    time.Duration // Pause between groups, keeps sources happy
	}
	Adapters struct {
		MaxRetries  int
		BackoffBase time.Duration
		CallTimeout time.Duration
	}
	Hardcover struct {
		Token string // Optional bearer token for the Hardcover API
	}
	Match struct {
		TitleThreshold          float64
		AuthorThreshold         float64
		FallbackTitleThreshold  float64
		FallbackAuthorThreshold float64
	}
	Genres struct {
		MaxTags int
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Scheduler struct {
		ReverifyEnabled  bool
		ReverifySchedule string // Cron format
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8288)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Import batching defaults
	v.SetDefault("import_batch_size", 10)
	v.SetDefault("import_fast_batch_size", 25)
	v.SetDefault("import_group_delay", "1s")

	// Adapter retry defaults
	v.SetDefault("adapter_max_retries", 3)
	v.SetDefault("adapter_backoff_base", "800ms")
	v.SetDefault("adapter_call_timeout", "10s")

	// Matcher thresholds. Empirically tuned; the author thresholds in
	// particular may over/under-accept on transliterated names.
	v.SetDefault("match_title_threshold", 0.7)
	v.SetDefault("match_author_threshold", 0.5)
	v.SetDefault("match_fallback_title_threshold", 0.95)
	v.SetDefault("match_fallback_author_threshold", 0.3)

	v.SetDefault("genre_max_tags", 3)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Re-verification sweep defaults
	v.SetDefault("reverify_enabled", false)
	v.SetDefault("reverify_schedule", "0 3 * * *") // Daily at 03:00

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Import: Import{
			BatchSize:     v.GetInt("IMPORT_BATCH_SIZE"),
			FastBatchSize: v.GetInt("IMPORT_FAST_BATCH_SIZE"),
			GroupDelay:    v.GetDuration("IMPORT_GROUP_DELAY"),
		},
		Adapters: Adapters{
			MaxRetries:  v.GetInt("ADAPTER_MAX_RETRIES"),
			BackoffBase: v.GetDuration("ADAPTER_BACKOFF_BASE"),
			CallTimeout: v.GetDuration("ADAPTER_CALL_TIMEOUT"),
		},
		Hardcover: Hardcover{
			Token: v.GetString("HARDCOVER_TOKEN"),
		},
		Match: Match{
			TitleThreshold:          v.GetFloat64("MATCH_TITLE_THRESHOLD"),
			AuthorThreshold:         v.GetFloat64("MATCH_AUTHOR_THRESHOLD"),
			FallbackTitleThreshold:  v.GetFloat64("MATCH_FALLBACK_TITLE_THRESHOLD"),
			FallbackAuthorThreshold: v.GetFloat64("MATCH_FALLBACK_AUTHOR_THRESHOLD"),
		},
		Genres: Genres{
			MaxTags: v.GetInt("GENRE_MAX_TAGS"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Scheduler: Scheduler{
			ReverifyEnabled:  v.GetBool("REVERIFY_ENABLED"),
			ReverifySchedule: v.GetString("REVERIFY_SCHEDULE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
