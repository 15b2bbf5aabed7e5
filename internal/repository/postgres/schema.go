package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the folder and document tables and their indexes if
// they do not exist. Safe to run on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				name TEXT NOT NULL,
				description TEXT,
				group_id UUID,
				parent_id UUID REFERENCES %[1]s(id) ON DELETE SET NULL,
				created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				lastchange TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				dspace_id UUID UNIQUE,
				name TEXT NOT NULL,
				description TEXT,
				author_id UUID,
				group_id UUID,
				folder_id UUID REFERENCES %s(id) ON DELETE SET NULL,
				document_type TEXT,
				changedby_id UUID,
				created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				lastchange TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Documents, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sfolders_parent ON %s(parent_id)`, tables.Prefix, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sfolders_group ON %s(group_id)`, tables.Prefix, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sdocuments_folder ON %s(folder_id)`, tables.Prefix, tables.Documents),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sdocuments_group ON %s(group_id)`, tables.Prefix, tables.Documents),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sdocuments_author ON %s(author_id)`, tables.Prefix, tables.Documents),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops both tables, documents first to respect foreign keys.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range []string{tables.Documents, tables.Folders} {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// ClearData deletes every row but keeps the schema.
func ClearData(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range []string{tables.Documents, tables.Folders} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
