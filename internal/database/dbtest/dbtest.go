// Package dbtest opens a migrated Postgres database for store tests.
package dbtest

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/costree/internal/database"
)

// EnvURL names the connection string variable. Tests skip when it is unset.
const EnvURL = "TEST_DATABASE_URL"

// Open connects to the database in TEST_DATABASE_URL, applies migrations and
// empties the given tables. The connection is closed when the test ends.
// Packages truncate only their own tables so they can run in parallel.
func Open(t *testing.T, tables ...string) *sql.DB {
	t.Helper()

	connStr := os.Getenv(EnvURL)
	if connStr == "" {
		t.Skipf("%s not set", EnvURL)
	}

	db, err := database.Open(context.Background(), connStr)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))

	for _, table := range tables {
		_, err := db.Exec("TRUNCATE " + table)
		require.NoError(t, err)
	}

	return db
}
