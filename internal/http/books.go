package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"librarium/internal/entities"
)

// BookReader is the read surface the book endpoints need.
type BookReader interface {
	GetByID(id uint) (*entities.Book, error)
	ListByUser(userID uint) ([]entities.Book, error)
	ListByUserAndStatus(userID uint, status entities.ReadingStatus) ([]entities.Book, error)
	Search(userID uint, query string) ([]entities.Book, error)
	FindFlagged(userID uint, limit int) ([]entities.Book, error)
	CountByUser(userID uint) (int64, error)
}

// BooksController serves the library read API.
type BooksController struct {
	books BookReader
}

func NewBooksController(books BookReader) *BooksController {
	return &BooksController{books: books}
}

// List handles GET /api/books with optional status and q filters.
func (ctrl *BooksController) List(c *gin.Context) {
	userID := GetUserID(c)

	if query := c.Query("q"); query != "" {
		books, err := ctrl.books.Search(userID, query)
		if err != nil {
			respondInternalError(c, err, "searching books")
			return
		}
		c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
		return
	}

	var (
		books []entities.Book
		err   error
	)
	switch status := c.Query("status"); status {
	case "":
		books, err = ctrl.books.ListByUser(userID)
	case string(entities.ReadingStatusWantToRead),
		string(entities.ReadingStatusCurrentlyReading),
		string(entities.ReadingStatusFinished):
		books, err = ctrl.books.ListByUserAndStatus(userID, entities.ReadingStatus(status))
	default:
		respondBadRequest(c, "unknown reading status: "+status)
		return
	}
	if err != nil {
		respondInternalError(c, err, "listing books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// Get handles GET /api/books/:id.
func (ctrl *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := ctrl.books.GetByID(id)
	if err != nil {
		respondNotFound(c, "book")
		return
	}
	if book.UserID != GetUserID(c) {
		respondNotFound(c, "book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Flagged handles GET /api/books/flagged: books awaiting verification.
func (ctrl *BooksController) Flagged(c *gin.Context) {
	books, err := ctrl.books.FindFlagged(GetUserID(c), 0)
	if err != nil {
		respondInternalError(c, err, "listing flagged books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// Stats handles GET /api/books/stats.
func (ctrl *BooksController) Stats(c *gin.Context) {
	count, err := ctrl.books.CountByUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "counting books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_books": count})
}
