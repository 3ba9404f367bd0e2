package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"librarium/internal/config"
	"librarium/internal/database"
	"librarium/internal/database/books"
	"librarium/internal/entrypoint"
	"librarium/internal/goodreads"
	"librarium/internal/importer"
)

// GoodreadsImportCommand handles one-shot imports of a Goodreads library
// export CSV from the command line.
type GoodreadsImportCommand struct {
	ExportPath   string
	DatabasePath string
	Username     string
	Mode         string
	KeepDupes    bool
	Verbose      bool
	DryRun       bool
}

func NewGoodreadsImportCommand() *GoodreadsImportCommand {
	return &GoodreadsImportCommand{}
}

func (cmd *GoodreadsImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.ExportPath, "file", "", "Path to the Goodreads library export CSV (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.StringVar(&cmd.Username, "user", "default", "Username to import the library under")
	fs.StringVar(&cmd.Mode, "mode", "full", "Import mode: 'full' enriches from all metadata sources, 'hardcover' from the primary source only, 'fast' only persists")
	fs.BoolVar(&cmd.KeepDupes, "keep-duplicates", false, "Import records that already exist in the library")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import a Goodreads library export into the local database.\n\n")
		fmt.Fprintf(os.Stderr, "Export your library at:\n")
		fmt.Fprintf(os.Stderr, "  https://www.goodreads.com/review/import\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import with metadata enrichment:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file goodreads_library_export.csv\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Quick import without calling metadata sources:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file goodreads_library_export.csv -mode fast\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Preview what would be imported:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file goodreads_library_export.csv -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.ExportPath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	if cmd.Mode != "full" && cmd.Mode != "hardcover" && cmd.Mode != "fast" {
		return fmt.Errorf("unknown mode %q, expected 'full', 'hardcover' or 'fast'", cmd.Mode)
	}

	return nil
}

func (cmd *GoodreadsImportCommand) Run() error {
	fmt.Println("Goodreads Import")
	fmt.Println("================")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	if _, err := os.Stat(cmd.ExportPath); os.IsNotExist(err) {
		return fmt.Errorf("export file not found: %s", cmd.ExportPath)
	}

	fmt.Printf("File: %s\n", cmd.ExportPath)
	fmt.Println("\nParsing Goodreads export...")

	file, err := os.Open(cmd.ExportPath)
	if err != nil {
		return fmt.Errorf("failed to open export file: %w", err)
	}
	defer file.Close()

	parsed, err := goodreads.ParseExport(file)
	if err != nil {
		return fmt.Errorf("failed to parse export: %w", err)
	}

	fmt.Printf("Found %d books (%d rows rejected, %d warnings)\n",
		len(parsed.Books), len(parsed.Errors), len(parsed.Warnings))

	for _, rowErr := range parsed.Errors {
		fmt.Printf("  [ERROR] %s\n", rowErr)
	}
	if cmd.Verbose {
		for _, warning := range parsed.Warnings {
			fmt.Printf("  [WARN] %s\n", warning)
		}
	}

	if len(parsed.Books) == 0 {
		fmt.Println("Nothing to import")
		return nil
	}

	if cmd.Verbose {
		fmt.Println("\n=== Books Found ===")
		for i, book := range parsed.Books {
			fmt.Printf("%d. \"%s\" by %s [%s]\n", i+1, book.Title, book.Author, book.ReadingStatus)
		}
	}

	if cmd.DryRun {
		fmt.Println("\nDry run complete. Use without -dry-run to import.")
		return nil
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	fmt.Printf("\nSaving to database: %s\n", cmd.DatabasePath)

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	user, err := db.GetOrCreateUser(cmd.Username)
	if err != nil {
		return fmt.Errorf("failed to resolve user %q: %w", cmd.Username, err)
	}

	cfg := config.NewConfig()
	cfg.Database.Path = cmd.DatabasePath

	opts := importer.Options{
		Mode:           importer.ModeFull,
		SkipDuplicates: !cmd.KeepDupes,
		BatchSize:      cfg.Import.BatchSize,
		GroupDelay:     cfg.Import.GroupDelay,
	}
	switch cmd.Mode {
	case "fast":
		opts.Mode = importer.ModeFast
		opts.BatchSize = cfg.Import.FastBatchSize
	case "hardcover":
		opts.Mode = importer.ModeHardcoverOnly
	}

	runner := importer.NewRunner(books.NewRepository(db.DB), entrypoint.NewEnricher(cfg))

	fmt.Println("\nImporting books...")

	events := make(chan importer.Event, 32)
	done := make(chan importer.Result, 1)
	go func() {
		done <- runner.Run(context.Background(), user.ID, parsed.Books, opts, events)
	}()

	for event := range events {
		switch event.Type {
		case importer.EventProgress:
			if cmd.Verbose && event.CurrentBook != "" {
				fmt.Printf("  -> [%d/%d] %s\n", event.Current, event.Total, event.CurrentBook)
			}
		case importer.EventError:
			fmt.Printf("  [ERROR] %s\n", event.Error)
		}
	}
	result := <-done

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Processed: %d\n", result.TotalProcessed)
	fmt.Printf("Imported: %d\n", result.Imported)
	fmt.Printf("Skipped (duplicates): %d\n", result.Skipped)
	fmt.Printf("Failed: %d\n", result.Failed)
	fmt.Printf("Needs verification: %d\n", len(result.NeedsVerification))
	fmt.Printf("Collections created: %d\n", len(result.CollectionsCreated))

	if cmd.Verbose {
		for _, flagged := range result.NeedsVerification {
			fmt.Printf("  [VERIFY] \"%s\" by %s: %s\n", flagged.Title, flagged.Author, flagged.Reason)
		}
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\n%d errors occurred:\n", len(result.Errors))
		for _, rowErr := range result.Errors {
			fmt.Printf("  [ERROR] %s\n", rowErr)
		}
	}

	fmt.Println("\nImport complete!")
	return nil
}
