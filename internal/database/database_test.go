package database

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) (*Database, func()) {
	t.Helper()
	dbPath := "./test_" + t.Name() + ".db"
	db, err := NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestUserOperations(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	t.Run("CreateUser creates user", func(t *testing.T) {
		user, err := db.CreateUser("testuser", "test@example.com")
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "testuser", user.Username)
		assert.Equal(t, "test@example.com", user.Email)
	})

	t.Run("GetUserByID retrieves user", func(t *testing.T) {
		user, err := db.CreateUser("iduser", "id@example.com")
		require.NoError(t, err)

		retrieved, err := db.GetUserByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Username, retrieved.Username)
	})

	t.Run("GetUserByID returns error for nonexistent ID", func(t *testing.T) {
		_, err := db.GetUserByID(99999)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("CreateUser fails for duplicate username", func(t *testing.T) {
		_, err := db.CreateUser("dupuser", "dup1@example.com")
		require.NoError(t, err)

		_, err = db.CreateUser("dupuser", "dup2@example.com")
		assert.Error(t, err)
	})
}

func TestGetOrCreateUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	t.Run("creates user on first sight", func(t *testing.T) {
		user, err := db.GetOrCreateUser("alice")
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("resolves existing user", func(t *testing.T) {
		first, err := db.GetOrCreateUser("bob")
		require.NoError(t, err)

		second, err := db.GetOrCreateUser("bob")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("different identifiers get different users", func(t *testing.T) {
		alice, err := db.GetOrCreateUser("alice")
		require.NoError(t, err)
		carol, err := db.GetOrCreateUser("carol")
		require.NoError(t, err)
		assert.NotEqual(t, alice.ID, carol.ID)
	})
}

func TestDatabaseInitialization(t *testing.T) {
	t.Run("NewDatabase creates database file", func(t *testing.T) {
		dbPath := "./init_test.db"
		defer os.Remove(dbPath)

		db, err := NewDatabase(dbPath)
		require.NoError(t, err)
		defer db.Close()

		// File should exist
		_, err = os.Stat(dbPath)
		assert.NoError(t, err)
	})

	t.Run("Ping succeeds on open database", func(t *testing.T) {
		dbPath := "./ping_test.db"
		defer os.Remove(dbPath)

		db, err := NewDatabase(dbPath)
		require.NoError(t, err)
		defer db.Close()

		assert.NoError(t, db.Ping())
	})

	t.Run("Close closes database connection", func(t *testing.T) {
		dbPath := "./close_test.db"
		defer os.Remove(dbPath)

		db, err := NewDatabase(dbPath)
		require.NoError(t, err)

		err = db.Close()
		assert.NoError(t, err)
	})
}
