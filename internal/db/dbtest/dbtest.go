// Package dbtest provides a migrated in-memory sqlite store for tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/waitlist-api/internal/db"
)

func New(t *testing.T) *sql.DB {
	t.Helper()

	source := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_time_format=sqlite"
	conn, err := db.Open(context.Background(), db.DialectSQLite, source)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn, db.DialectSQLite))

	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}
