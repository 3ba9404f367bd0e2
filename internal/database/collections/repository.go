// Package collections provides database operations for user-defined book
// groupings materialized from export shelves.
package collections

import (
	"gorm.io/gorm"

	"librarium/internal/entities"
)

// Repository handles all collection database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new collections repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindOrCreate returns the user's collection with the given name, creating
// it when absent. Name is the natural key within a user.
func (r *Repository) FindOrCreate(userID uint, name string) (*entities.Collection, error) {
	var collection entities.Collection
	err := r.db.Where("user_id = ? AND name = ?", userID, name).First(&collection).Error
	if err == gorm.ErrRecordNotFound {
		collection = entities.Collection{UserID: userID, Name: name}
		if err := r.db.Create(&collection).Error; err != nil {
			return nil, err
		}
		return &collection, nil
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// ListByUser retrieves the user's collections with book counts.
func (r *Repository) ListByUser(userID uint) ([]entities.Collection, error) {
	var collections []entities.Collection
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&collections).Error
	return collections, err
}

// GetByID retrieves one collection with its books.
func (r *Repository) GetByID(id uint) (*entities.Collection, error) {
	var collection entities.Collection
	err := r.db.Preload("Books").First(&collection, id).Error
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// Link attaches a book to a collection. Appending an already linked book is
// a no-op, so re-imports stay idempotent.
func (r *Repository) Link(collectionID, bookID uint) error {
	var collection entities.Collection
	if err := r.db.First(&collection, collectionID).Error; err != nil {
		return err
	}
	var book entities.Book
	if err := r.db.First(&book, bookID).Error; err != nil {
		return err
	}
	return r.db.Model(&collection).Association("Books").Append(&book)
}

// CountBooks returns how many books a collection holds.
func (r *Repository) CountBooks(collectionID uint) (int64, error) {
	count := r.db.Model(&entities.Collection{ID: collectionID}).Association("Books").Count()
	return count, nil
}

// Delete removes a collection; its books survive.
func (r *Repository) Delete(id uint) error {
	return r.db.Select("Books").Delete(&entities.Collection{ID: id}).Error
}
