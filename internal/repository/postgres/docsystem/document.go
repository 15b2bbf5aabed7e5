package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docsgraph/internal/domain"
	models "docsgraph/internal/domain/models/docsystem"
	docsysRepo "docsgraph/internal/domain/repositories/docsystem"
	"docsgraph/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentColumns = `id, dspace_id, name, description, author_id, group_id, folder_id, document_type, changedby_id, created, lastchange`

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) docsysRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner, doc *models.Document) error {
	return row.Scan(
		&doc.ID,
		&doc.DSpaceID,
		&doc.Name,
		&doc.Description,
		&doc.AuthorID,
		&doc.GroupID,
		&doc.FolderID,
		&doc.DocumentType,
		&doc.ChangedBy,
		&doc.Created,
		&doc.Lastchange,
	)
}

// Create inserts a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, dspace_id, name, description, author_id, group_id, folder_id, document_type, changedby_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created, lastchange
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.ID,
		doc.DSpaceID,
		doc.Name,
		doc.Description,
		doc.AuthorID,
		doc.GroupID,
		doc.FolderID,
		doc.DocumentType,
		doc.ChangedBy,
	).Scan(&doc.Created, &doc.Lastchange)

	if err != nil {
		return r.mapWriteError(err, doc)
	}
	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, documentColumns, r.tables.Documents)

	var doc models.Document
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanDocument(executor.QueryRow(ctx, query, id), &doc); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// GetByIDs retrieves all existing documents among ids
func (r *PostgresDocumentRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ANY($1::uuid[])`, documentColumns, r.tables.Documents)
	return r.query(ctx, "get documents", query, keys)
}

// List returns one page of documents
func (r *PostgresDocumentRepository) List(ctx context.Context, page models.PageOptions) ([]models.Document, error) {
	page.ApplyDefaults()
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		ORDER BY created ASC, id ASC
		OFFSET $1 LIMIT $2
	`, documentColumns, r.tables.Documents)
	return r.query(ctx, "list documents", query, page.Offset, page.Limit)
}

// FilterBy returns documents whose column equals value; a nil value matches NULL
func (r *PostgresDocumentRepository) FilterBy(ctx context.Context, field string, value any) ([]models.Document, error) {
	if !models.DocumentFilterFields[field] {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("cannot filter documents by %q", field)}
	}

	if isNil(value) {
		query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s IS NULL ORDER BY created ASC`, documentColumns, r.tables.Documents, field)
		return r.query(ctx, "filter documents", query)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY created ASC`, documentColumns, r.tables.Documents, field)
	return r.query(ctx, "filter documents", query, value)
}

// Update persists the mutable fields. dspace_id and created are never written here.
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document, expected *time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, author_id = $3, group_id = $4, folder_id = $5,
		    document_type = $6, changedby_id = $7,
		    lastchange = GREATEST(clock_timestamp(), lastchange + interval '1 microsecond')
		WHERE id = $8 AND ($9::timestamptz IS NULL OR lastchange = $9)
		RETURNING created, lastchange
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.Name,
		doc.Description,
		doc.AuthorID,
		doc.GroupID,
		doc.FolderID,
		doc.DocumentType,
		doc.ChangedBy,
		doc.ID,
		expected,
	).Scan(&doc.Created, &doc.Lastchange)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return r.missingOrStale(ctx, doc.ID)
		}
		return r.mapWriteError(err, doc)
	}
	return nil
}

// Delete removes a document row
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresDocumentRepository) query(ctx context.Context, op, query string, args ...any) ([]models.Document, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	documents := make([]models.Document, 0)
	for rows.Next() {
		var doc models.Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return documents, nil
}

// missingOrStale tells a vanished row from a lastchange mismatch after an
// update matched nothing.
func (r *PostgresDocumentRepository) missingOrStale(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return &domain.ConflictError{
		Message:      fmt.Sprintf("document %s was changed concurrently", id),
		ResourceType: "document",
		ResourceID:   id.String(),
	}
}

func (r *PostgresDocumentRepository) mapWriteError(err error, doc *models.Document) error {
	switch {
	case postgres.IsPgDuplicateError(err):
		return &domain.ConflictError{
			Message:      fmt.Sprintf("document %s already exists", doc.ID),
			ResourceType: "document",
			ResourceID:   doc.ID.String(),
		}
	case postgres.IsPgForeignKeyError(err):
		return &domain.ValidationError{Message: fmt.Sprintf("document %s references a missing folder", doc.ID)}
	case postgres.IsPgNotNullError(err):
		return &domain.ValidationError{Message: fmt.Sprintf("document %s is missing a required field", doc.ID)}
	}
	return fmt.Errorf("write document: %w", err)
}

func isNil(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case *uuid.UUID:
		return v == nil
	case *string:
		return v == nil
	}
	return false
}

