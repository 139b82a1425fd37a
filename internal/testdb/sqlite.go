package testdb

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var (
	sharedDB   *bun.DB
	sharedOnce sync.Once
)

// SetupSharedSQLite opens a single in-memory SQLite database shared across all
// tests in the package - much faster than a database per test.
//
// IMPORTANT: Tests using the shared database CANNOT run in parallel!
//
// Usage:
//
//	func TestMyService(t *testing.T) {
//	    db := testdb.SetupSharedSQLite(t)
//	    testdb.RunMigrations(t, db, (*MyModel)(nil))
//
//	    t.Run("Test1", func(t *testing.T) {
//	        testdb.CleanupTables(t, db, "my_table")
//	        // ... test
//	    })
//	}
func SetupSharedSQLite(t *testing.T) *bun.DB {
	t.Helper()

	sharedOnce.Do(func() {
		sqldb, err := sql.Open(sqliteshim.ShimName, "file:testdb?mode=memory&cache=shared")
		require.NoError(t, err)

		// A single connection keeps the in-memory database alive
		sqldb.SetMaxOpenConns(1)
		sqldb.SetMaxIdleConns(1)
		sqldb.SetConnMaxLifetime(0)

		db := bun.NewDB(sqldb, sqlitedialect.New())
		require.NoError(t, db.Ping())

		sharedDB = db
	})

	return sharedDB
}

func RunMigrations(t *testing.T, db *bun.DB, models ...interface{}) {
	t.Helper()
	ctx := context.Background()

	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		require.NoError(t, err, "failed to create table")
	}
}

func CleanupTables(t *testing.T, db *bun.DB, tables ...string) {
	t.Helper()

	ctx := context.Background()

	for _, table := range tables {
		_, err := db.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err, "failed to clean table: %s", table)
		// Reset the autoincrement counter; the table may not have one yet
		_, _ = db.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = ?", table)
	}
}
