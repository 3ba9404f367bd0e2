package entities

import (
	"time"

	"gorm.io/gorm"
)

type ReadingStatus string

const (
	ReadingStatusWantToRead       ReadingStatus = "want_to_read"
	ReadingStatusCurrentlyReading ReadingStatus = "currently_reading"
	ReadingStatusFinished         ReadingStatus = "finished"
)

type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100" json:"username"`
	Email     string         `gorm:"size:255" json:"email"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Book struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     uint   `gorm:"index" json:"user_id"`
	Title      string `gorm:"index;size:512" json:"title"`
	Author     string `gorm:"index;size:256" json:"author"`
	ISBN       string `gorm:"index;size:20" json:"isbn,omitempty"`
	ExternalID string `gorm:"index;size:64" json:"external_id,omitempty"`

	// Enriched metadata
	CoverURL      string `gorm:"size:2048" json:"cover_url,omitempty"`
	Description   string `gorm:"type:text" json:"description,omitempty"`
	Genre         string `gorm:"size:256" json:"genre,omitempty"`
	Publisher     string `gorm:"size:256" json:"publisher,omitempty"`
	PublishedDate string `gorm:"size:32" json:"published_date,omitempty"`
	PageCount     int    `json:"page_count,omitempty"`

	// Reading state from the export
	Rating        float64       `json:"rating,omitempty"`
	Review        string        `gorm:"type:text" json:"review,omitempty"`
	ReadingStatus ReadingStatus `gorm:"size:20;default:'want_to_read'" json:"reading_status"`
	DateAdded     time.Time     `json:"date_added,omitempty"`
	DateFinished  *time.Time    `json:"date_finished,omitempty"`

	// Enrichment follow-up
	NeedsVerification bool   `gorm:"index;default:false" json:"needs_verification"`
	VerifyReason      string `gorm:"size:256" json:"verify_reason,omitempty"`

	User        User         `gorm:"foreignKey:UserID" json:"-"`
	Collections []Collection `gorm:"many2many:book_collections;" json:"collections,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Collection is a user-defined grouping materialized from an export shelf.
// Name is the natural key within a user; imports reuse existing collections
// instead of creating duplicates.
type Collection struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index:idx_collections_user_name,unique" json:"user_id"`
	Name        string    `gorm:"index:idx_collections_user_name,unique;size:100" json:"name"`
	Description string    `gorm:"size:512" json:"description,omitempty"`
	Color       string    `gorm:"size:10" json:"color,omitempty"`
	Icon        string    `gorm:"size:50" json:"icon,omitempty"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
	Books       []Book    `gorm:"many2many:book_collections;" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

type ImportSession struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	UserID         uint         `gorm:"index" json:"user_id"`
	Status         ImportStatus `gorm:"size:20;default:'pending'" json:"status"`
	TotalProcessed int          `json:"total_processed"`
	Imported       int          `json:"imported"`
	Skipped        int          `json:"skipped"`
	Failed         int          `json:"failed"`
	Errors         string       `gorm:"type:text" json:"errors,omitempty"` // JSON array of row errors
	StartedAt      time.Time    `json:"started_at"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	User           User         `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (Collection) TableName() string {
	return "collections"
}

func (ImportSession) TableName() string {
	return "import_sessions"
}
