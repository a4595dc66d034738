package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"lostfound/internal/domain"
)

// newTestDB opens a throwaway database in the test's temp dir and
// applies the schema. A single connection keeps sqlite's locking out
// of the way while still exercising real SQL.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	db.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	return db
}

// createTestUser inserts a user and returns it.
func createTestUser(t *testing.T, db *sql.DB, username, email string, isAdmin bool) *domain.User {
	t.Helper()

	u := &domain.User{
		Username:       username,
		Email:          email,
		HashedPassword: "x",
		IsAdmin:        isAdmin,
		IsVerified:     true,
	}
	require.NoError(t, NewUserRepo(db).Create(context.Background(), u))
	return u
}

// createTestItem inserts an item owned by creatorID and returns it.
func createTestItem(t *testing.T, db *sql.DB, creatorID int64) *domain.Item {
	t.Helper()

	it := &domain.Item{
		Title:       "Black umbrella",
		Description: "Left near the main entrance",
		Location:    "Building A lobby",
		Status:      domain.StatusLost,
		CreatedBy:   creatorID,
	}
	require.NoError(t, NewItemRepo(db).Create(context.Background(), it))
	return it
}
