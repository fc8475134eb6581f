// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"testing"
	"time"

	"github.com/Dosada05/tournament-api/db"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// Open creates an in-memory sqlite database with all migrations applied.
// The database is closed when the test finishes.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Connect(db.DriverSQLite, "file::memory:", 5*time.Second)
	require.NoError(t, err, "failed to connect to in-memory DB")

	require.NoError(t, db.Migrate(database), "failed to apply migrations")

	t.Cleanup(func() { _ = database.Close() })
	return database
}
