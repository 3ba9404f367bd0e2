package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"librarium/internal/entities"
)

// CollectionReader is the read surface the collection endpoints need.
type CollectionReader interface {
	ListByUser(userID uint) ([]entities.Collection, error)
	GetByID(id uint) (*entities.Collection, error)
	CountBooks(collectionID uint) (int64, error)
}

// CollectionsController serves the collections read API.
type CollectionsController struct {
	collections CollectionReader
}

func NewCollectionsController(collections CollectionReader) *CollectionsController {
	return &CollectionsController{collections: collections}
}

type collectionSummary struct {
	entities.Collection
	BookCount int64 `json:"book_count"`
}

// List handles GET /api/collections.
func (ctrl *CollectionsController) List(c *gin.Context) {
	collections, err := ctrl.collections.ListByUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "listing collections")
		return
	}

	summaries := make([]collectionSummary, 0, len(collections))
	for _, collection := range collections {
		count, err := ctrl.collections.CountBooks(collection.ID)
		if err != nil {
			respondInternalError(c, err, "counting collection books")
			return
		}
		summaries = append(summaries, collectionSummary{Collection: collection, BookCount: count})
	}
	c.JSON(http.StatusOK, gin.H{"collections": summaries, "count": len(summaries)})
}

// Get handles GET /api/collections/:id with the collection's books.
func (ctrl *CollectionsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	collection, err := ctrl.collections.GetByID(id)
	if err != nil {
		respondNotFound(c, "collection")
		return
	}
	if collection.UserID != GetUserID(c) {
		respondNotFound(c, "collection")
		return
	}
	c.JSON(http.StatusOK, collection)
}
