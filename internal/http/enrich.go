package http

import (
	"github.com/gin-gonic/gin"

	"librarium/internal/tasks"
)

// EnrichController queues background re-enrichment work.
type EnrichController struct {
	books      BookReader
	taskClient *tasks.Client
}

func NewEnrichController(books BookReader, taskClient *tasks.Client) *EnrichController {
	return &EnrichController{books: books, taskClient: taskClient}
}

// EnrichBook handles POST /api/books/:id/enrich: queue one book for a fresh
// pass against the sources.
func (ctrl *EnrichController) EnrichBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := ctrl.books.GetByID(id)
	if err != nil || book.UserID != GetUserID(c) {
		respondNotFound(c, "book")
		return
	}

	if _, err := ctrl.taskClient.Add(tasks.ReenrichBookTask{BookID: book.ID}).Save(); err != nil {
		respondInternalError(c, err, "queueing enrichment")
		return
	}
	respondAccepted(c, "enrichment queued", gin.H{"book_id": book.ID})
}

// EnrichFlagged handles POST /api/books/enrich-flagged: queue every book of
// the caller that still needs verification.
func (ctrl *EnrichController) EnrichFlagged(c *gin.Context) {
	books, err := ctrl.books.FindFlagged(GetUserID(c), 0)
	if err != nil {
		respondInternalError(c, err, "listing flagged books")
		return
	}

	queued := 0
	for _, book := range books {
		if _, err := ctrl.taskClient.Add(tasks.ReenrichBookTask{BookID: book.ID}).Save(); err != nil {
			respondInternalError(c, err, "queueing enrichment")
			return
		}
		queued++
	}
	respondAccepted(c, "enrichment queued", gin.H{"queued": queued})
}
