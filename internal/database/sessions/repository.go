// Package sessions provides database operations for import session
// bookkeeping, so past imports stay auditable.
package sessions

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"librarium/internal/entities"
	"librarium/internal/goodreads"
)

// Repository handles all import session database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sessions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Start records the beginning of an import run.
func (r *Repository) Start(userID uint) (*entities.ImportSession, error) {
	session := &entities.ImportSession{
		UserID:    userID,
		Status:    entities.ImportStatusRunning,
		StartedAt: time.Now(),
	}
	if err := r.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// Finish closes a session with its final counters. Row errors are stored as
// a JSON array so the API can replay them verbatim.
func (r *Repository) Finish(session *entities.ImportSession, processed, imported, skipped, failed int, rowErrors []goodreads.RowError) error {
	session.TotalProcessed = processed
	session.Imported = imported
	session.Skipped = skipped
	session.Failed = failed
	session.Status = entities.ImportStatusCompleted
	if failed > 0 && imported == 0 {
		session.Status = entities.ImportStatusFailed
	}
	if len(rowErrors) > 0 {
		if encoded, err := json.Marshal(rowErrors); err == nil {
			session.Errors = string(encoded)
		}
	}
	now := time.Now()
	session.CompletedAt = &now
	return r.db.Save(session).Error
}

// MarkFailed closes a session that never got to process records.
func (r *Repository) MarkFailed(session *entities.ImportSession, reason string) error {
	session.Status = entities.ImportStatusFailed
	if encoded, err := json.Marshal([]goodreads.RowError{{Error: reason}}); err == nil {
		session.Errors = string(encoded)
	}
	now := time.Now()
	session.CompletedAt = &now
	return r.db.Save(session).Error
}

// GetByID retrieves one session.
func (r *Repository) GetByID(id uint) (*entities.ImportSession, error) {
	var session entities.ImportSession
	if err := r.db.First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByUser retrieves a user's sessions, newest first.
func (r *Repository) ListByUser(userID uint) ([]entities.ImportSession, error) {
	var sessions []entities.ImportSession
	err := r.db.Where("user_id = ?", userID).Order("started_at DESC").Find(&sessions).Error
	return sessions, err
}
