package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"librarium/internal/entities"
	"librarium/internal/goodreads"
	"librarium/internal/importer"
)

// ImportRunner starts one import run. The runner closes the events channel
// when the run finishes.
type ImportRunner interface {
	Run(ctx context.Context, userID uint, books []goodreads.ParsedBook, opts importer.Options, events chan<- importer.Event) importer.Result
}

// SessionRecorder keeps the audit trail of import runs.
type SessionRecorder interface {
	Start(userID uint) (*entities.ImportSession, error)
	Finish(session *entities.ImportSession, processed, imported, skipped, failed int, rowErrors []goodreads.RowError) error
	MarkFailed(session *entities.ImportSession, reason string) error
}

// GoodreadsImportController accepts a library export upload and streams
// progress back as NDJSON while the import runs.
type GoodreadsImportController struct {
	runner   ImportRunner
	sessions SessionRecorder
	defaults importer.Options
	fastSize int
}

func NewGoodreadsImportController(runner ImportRunner, sessions SessionRecorder, defaults importer.Options, fastBatchSize int) *GoodreadsImportController {
	return &GoodreadsImportController{
		runner:   runner,
		sessions: sessions,
		defaults: defaults,
		fastSize: fastBatchSize,
	}
}

// Import handles POST /api/import/goodreads. The multipart field is
// "export_file"; mode and skip_duplicates arrive as query parameters.
func (ctrl *GoodreadsImportController) Import(c *gin.Context) {
	file, _, err := c.Request.FormFile("export_file")
	if err != nil {
		respondBadRequest(c, "no export file provided")
		return
	}
	defer file.Close()

	opts := ctrl.defaults
	switch c.DefaultQuery("mode", string(importer.ModeFull)) {
	case string(importer.ModeFast):
		opts.Mode = importer.ModeFast
		// Without source calls per record, bigger groups are fine.
		if ctrl.fastSize > 0 {
			opts.BatchSize = ctrl.fastSize
		}
	case string(importer.ModeHardcoverOnly):
		opts.Mode = importer.ModeHardcoverOnly
	case string(importer.ModeFull):
		opts.Mode = importer.ModeFull
	default:
		respondBadRequest(c, "mode must be full, hardcover or fast")
		return
	}
	if c.Query("skip_duplicates") == "false" {
		opts.SkipDuplicates = false
	}

	userID := GetUserID(c)
	session, err := ctrl.sessions.Start(userID)
	if err != nil {
		respondInternalError(c, err, "starting import session")
		return
	}

	parsed, err := goodreads.ParseExport(file)
	if err != nil {
		if err := ctrl.sessions.MarkFailed(session, err.Error()); err != nil {
			log.Printf("[import] failed to mark session %d failed: %v", session.ID, err)
		}
		respondBadRequest(c, fmt.Sprintf("failed to parse export: %v", err))
		return
	}

	c.Writer.Header().Set("Content-Type", "application/x-ndjson")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.WriteHeader(http.StatusOK)

	events := make(chan importer.Event, 32)
	done := make(chan importer.Result, 1)
	go func() {
		done <- ctrl.runner.Run(c.Request.Context(), userID, parsed.Books, opts, events)
	}()

	encoder := json.NewEncoder(c.Writer)
	flusher, _ := c.Writer.(http.Flusher)

	for _, warning := range parsed.Warnings {
		writeEvent(encoder, flusher, importer.Event{Type: importer.EventProgress, Message: warning})
	}
	for _, rowErr := range parsed.Errors {
		writeEvent(encoder, flusher, importer.Event{Type: importer.EventError, CurrentBook: rowErr.Book, Error: rowErr.String()})
	}

	// The run's own complete event is withheld; the final one below carries
	// the tally with the parse-time failures folded in.
	for event := range events {
		if event.Type == importer.EventComplete {
			continue
		}
		writeEvent(encoder, flusher, event)
	}

	result := <-done
	mergeParseErrors(&result, parsed.Errors)
	writeEvent(encoder, flusher, importer.Event{
		Type:    importer.EventComplete,
		Current: result.TotalProcessed,
		Total:   result.TotalProcessed,
		Result:  &result,
	})

	if err := ctrl.sessions.Finish(session, result.TotalProcessed, result.Imported, result.Skipped, result.Failed, result.Errors); err != nil {
		// The import itself succeeded; only the bookkeeping failed.
		log.Printf("[import] failed to finish session %d: %v", session.ID, err)
	}
}

// mergeParseErrors folds rows the parser rejected into the run tally so the
// client sees one consistent result.
func mergeParseErrors(result *importer.Result, parseErrors []goodreads.RowError) {
	if len(parseErrors) == 0 {
		return
	}
	result.Failed += len(parseErrors)
	result.TotalProcessed += len(parseErrors)
	result.Errors = append(append([]goodreads.RowError{}, parseErrors...), result.Errors...)
}

func writeEvent(encoder *json.Encoder, flusher http.Flusher, event importer.Event) {
	if err := encoder.Encode(event); err != nil {
		return
	}
	if flusher != nil {
		flusher.Flush()
	}
}
