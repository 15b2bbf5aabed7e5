package postgres

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorClassification(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})
	notNull := &pgconn.PgError{Code: "23502"}
	noRows := fmt.Errorf("select: %w", pgx.ErrNoRows)

	assert.True(t, IsPgDuplicateError(dup))
	assert.False(t, IsPgDuplicateError(fk))
	assert.True(t, IsPgForeignKeyError(fk))
	assert.True(t, IsPgNotNullError(notNull))
	assert.True(t, IsPgNoRowsError(noRows))
	assert.False(t, IsPgNoRowsError(dup))
	assert.False(t, IsPgForeignKeyError(nil))
}

func TestNewTableNames(t *testing.T) {
	tables := NewTableNames("dev_")
	assert.Equal(t, "dev_documents", tables.Documents)
	assert.Equal(t, "dev_document_folders", tables.Folders)

	bare := NewTableNames("")
	assert.Equal(t, "documents", bare.Documents)
	assert.Equal(t, "document_folders", bare.Folders)
}
