//go:build integration

package repository

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/lib/pq"

	"github.com/rosterd/rosterd/internal/testutil"
)

// Migration tests go through database/sql with the pq driver, separate
// from the pgx pool the application uses, to confirm the applied schema
// is usable by any standard client.
func newMigrationTestEnv(t *testing.T) (context.Context, *sql.DB) {
	t.Helper()

	databaseURL := testutil.RequireEnv(t, "DATABASE_URL")
	ctx := context.Background()

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping database: %v", err)
	}

	return ctx, db
}

func TestIntegrationMigration_TablesExist(t *testing.T) {
	ctx, db := newMigrationTestEnv(t)

	for _, table := range []string{"users", "students"} {
		t.Run(table, func(t *testing.T) {
			var exists bool
			err := db.QueryRowContext(ctx, `
				SELECT EXISTS (
					SELECT 1 FROM information_schema.tables
					WHERE table_schema = 'public' AND table_name = $1
				)
			`, table).Scan(&exists)
			if err != nil {
				t.Fatalf("query table existence: %v", err)
			}
			if !exists {
				t.Errorf("table %q should exist after migrations", table)
			}
		})
	}
}

func TestIntegrationMigration_StudentsEmailUnique(t *testing.T) {
	ctx, db := newMigrationTestEnv(t)

	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pg_indexes
			WHERE schemaname = 'public'
			  AND tablename = 'students'
			  AND indexname = 'students_email_unique'
		)
	`).Scan(&exists)
	if err != nil {
		t.Fatalf("query index existence: %v", err)
	}
	if !exists {
		t.Error("unique email index should exist on students")
	}
}
