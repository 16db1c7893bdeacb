package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testTime() time.Time {
	return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
}

// NewTestDB opens a migrated in-memory database closed at test cleanup.
func NewTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })
	return db
}
