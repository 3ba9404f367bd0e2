package sessions

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"librarium/internal/entities"
	"librarium/internal/goodreads"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_sessions_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}, &entities.ImportSession{}))

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return NewRepository(db), cleanup
}

func TestRepository_StartAndFinish(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	session, err := repo.Start(1)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusRunning, session.Status)
	assert.NotZero(t, session.ID)

	rowErrors := []goodreads.RowError{
		{Row: 3, Book: "Hyperion", Error: "disk full"},
	}
	require.NoError(t, repo.Finish(session, 10, 8, 1, 1, rowErrors))

	loaded, err := repo.GetByID(session.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusCompleted, loaded.Status)
	assert.Equal(t, 10, loaded.TotalProcessed)
	assert.Equal(t, 8, loaded.Imported)
	require.NotNil(t, loaded.CompletedAt)

	// Row errors round-trip through the stored JSON with their fields intact.
	var stored []goodreads.RowError
	require.NoError(t, json.Unmarshal([]byte(loaded.Errors), &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, 3, stored[0].Row)
	assert.Equal(t, "Hyperion", stored[0].Book)
	assert.Equal(t, "disk full", stored[0].Error)
}

// A run where everything failed is a failed session.
func TestRepository_FinishAllFailed(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	session, err := repo.Start(1)
	require.NoError(t, err)
	require.NoError(t, repo.Finish(session, 2, 0, 0, 2, nil))

	loaded, err := repo.GetByID(session.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusFailed, loaded.Status)
}

func TestRepository_MarkFailed(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	session, err := repo.Start(1)
	require.NoError(t, err)
	require.NoError(t, repo.MarkFailed(session, "missing required header: title"))

	loaded, err := repo.GetByID(session.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ImportStatusFailed, loaded.Status)
	assert.Contains(t, loaded.Errors, "missing required header")
	require.NotNil(t, loaded.CompletedAt)
}

func TestRepository_ListByUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Start(1)
	require.NoError(t, err)
	_, err = repo.Start(1)
	require.NoError(t, err)
	_, err = repo.Start(2)
	require.NoError(t, err)

	sessions, err := repo.ListByUser(1)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
