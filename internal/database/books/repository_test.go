package books

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"librarium/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_books_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.Collection{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, db, cleanup
}

func TestRepository_CreateWithCollections(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{UserID: 1, Title: "Dune", Author: "Frank Herbert"}
	created, err := repo.CreateWithCollections(book, []string{"sci-fi", "favorites"})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sci-fi", "favorites"}, created)
	assert.NotZero(t, book.ID)

	loaded, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Collections, 2)
}

// Importing a second book onto an existing shelf must reuse the collection.
func TestRepository_CreateWithCollections_ReusesExisting(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	first := &entities.Book{UserID: 1, Title: "Dune", Author: "Frank Herbert"}
	_, err := repo.CreateWithCollections(first, []string{"sci-fi"})
	require.NoError(t, err)

	second := &entities.Book{UserID: 1, Title: "Hyperion", Author: "Dan Simmons"}
	created, err := repo.CreateWithCollections(second, []string{"sci-fi"})
	require.NoError(t, err)
	assert.Empty(t, created, "existing collection must be reused")

	var count int64
	require.NoError(t, db.Model(&entities.Collection{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// The same shelf name belongs to different users independently.
func TestRepository_CreateWithCollections_PerUser(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.CreateWithCollections(&entities.Book{UserID: 1, Title: "A", Author: "B"}, []string{"favorites"})
	require.NoError(t, err)
	created, err := repo.CreateWithCollections(&entities.Book{UserID: 2, Title: "A", Author: "B"}, []string{"favorites"})
	require.NoError(t, err)

	assert.Equal(t, []string{"favorites"}, created)
	var count int64
	require.NoError(t, db.Model(&entities.Collection{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestRepository_ListByUser(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.CreateWithCollections(&entities.Book{UserID: 1, Title: "Mine", Author: "X"}, nil)
	require.NoError(t, err)
	_, err = repo.CreateWithCollections(&entities.Book{UserID: 2, Title: "Theirs", Author: "Y"}, nil)
	require.NoError(t, err)

	books, err := repo.ListByUser(1)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Mine", books[0].Title)
}

func TestRepository_FindFlagged(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.CreateWithCollections(&entities.Book{UserID: 1, Title: "Fine", Author: "X"}, nil)
	require.NoError(t, err)
	flagged := &entities.Book{UserID: 1, Title: "Needs Work", Author: "Y", NeedsVerification: true, VerifyReason: "no metadata match"}
	_, err = repo.CreateWithCollections(flagged, nil)
	require.NoError(t, err)

	books, err := repo.FindFlagged(1, 10)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Needs Work", books[0].Title)
}

func TestRepository_UpdateEnrichment(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{UserID: 1, Title: "Needs Work", Author: "Y", NeedsVerification: true}
	_, err := repo.CreateWithCollections(book, nil)
	require.NoError(t, err)

	err = repo.UpdateEnrichment(book.ID, "https://example.com/c.jpg", "A proper description of respectable length for the record.", "Fantasy", "Tor", "1996", 694)
	require.NoError(t, err)

	loaded, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.False(t, loaded.NeedsVerification)
	assert.Empty(t, loaded.VerifyReason)
	assert.Equal(t, "https://example.com/c.jpg", loaded.CoverURL)
	assert.Equal(t, 694, loaded.PageCount)
}

func TestRepository_Search(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.CreateWithCollections(&entities.Book{UserID: 1, Title: "Atomic Habits", Author: "James Clear"}, nil)
	require.NoError(t, err)

	books, err := repo.Search(1, "atomic")
	require.NoError(t, err)
	assert.Len(t, books, 1)

	books, err = repo.Search(1, "clear")
	require.NoError(t, err)
	assert.Len(t, books, 1)

	books, err = repo.Search(1, "nothing")
	require.NoError(t, err)
	assert.Empty(t, books)
}
