// Package books provides database operations for the book library.
//
// This package implements the BookStore interface consumed by the import
// coordinator and the read handlers:
//
//	var _ importer.BookStore = (*Repository)(nil)
package books

import (
	"gorm.io/gorm"

	"librarium/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a book with its collections.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Collections").First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListByUser retrieves every book of one user, newest first.
func (r *Repository) ListByUser(userID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Collections").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&books).Error
	return books, err
}

// ListByUserAndStatus filters the library by reading status.
func (r *Repository) ListByUserAndStatus(userID uint, status entities.ReadingStatus) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Collections").
		Where("user_id = ? AND reading_status = ?", userID, status).
		Order("created_at DESC").
		Find(&books).Error
	return books, err
}

// Search matches title or author, case-insensitive partial match.
func (r *Repository) Search(userID uint, query string) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + query + "%"
	err := r.db.Preload("Collections").
		Where("user_id = ? AND (LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?))", userID, pattern, pattern).
		Find(&books).Error
	return books, err
}

// FindFlagged returns the books awaiting verification, oldest first so the
// re-enrichment sweep retries them in import order.
func (r *Repository) FindFlagged(userID uint, limit int) ([]entities.Book, error) {
	var books []entities.Book
	q := r.db.Where("needs_verification = ?", true).Order("created_at ASC")
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&books).Error
	return books, err
}

// CreateWithCollections persists one book and links it to its shelves in a
// single transaction. Collections are created on first use and reused after,
// so re-importing never duplicates them. Returns the names of the newly
// created collections.
func (r *Repository) CreateWithCollections(book *entities.Book, shelves []string) ([]string, error) {
	var created []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		collections := make([]entities.Collection, 0, len(shelves))
		for _, name := range shelves {
			var collection entities.Collection
			result := tx.Where("user_id = ? AND name = ?", book.UserID, name).First(&collection)
			if result.Error == gorm.ErrRecordNotFound {
				collection = entities.Collection{UserID: book.UserID, Name: name}
				if err := tx.Create(&collection).Error; err != nil {
					return err
				}
				created = append(created, name)
			} else if result.Error != nil {
				return result.Error
			}
			collections = append(collections, collection)
		}

		book.Collections = collections
		// Omit stops gorm from re-saving the collection rows; only the
		// join records are written.
		return tx.Omit("Collections.*").Create(book).Error
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateEnrichment replaces the enriched metadata after a re-enrichment pass
// and clears the verification flag.
func (r *Repository) UpdateEnrichment(bookID uint, coverURL, description, genre, publisher, publishedDate string, pageCount int) error {
	updates := map[string]interface{}{
		"needs_verification": false,
		"verify_reason":      "",
	}
	if coverURL != "" {
		updates["cover_url"] = coverURL
	}
	if description != "" {
		updates["description"] = description
	}
	if genre != "" {
		updates["genre"] = genre
	}
	if publisher != "" {
		updates["publisher"] = publisher
	}
	if publishedDate != "" {
		updates["published_date"] = publishedDate
	}
	if pageCount > 0 {
		updates["page_count"] = pageCount
	}
	return r.db.Model(&entities.Book{}).Where("id = ?", bookID).Updates(updates).Error
}

// Delete soft-deletes a book; the join rows stay but stop resolving.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Book{}, id).Error
}

// CountByUser returns library size, used by the stats endpoint.
func (r *Repository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
