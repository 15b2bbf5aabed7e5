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

const folderColumns = `id, name, description, group_id, parent_id, created, lastchange`

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) docsysRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanFolder(row scanner, folder *models.Folder) error {
	return row.Scan(
		&folder.ID,
		&folder.Name,
		&folder.Description,
		&folder.GroupID,
		&folder.ParentID,
		&folder.Created,
		&folder.Lastchange,
	)
}

// Create inserts a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == uuid.Nil {
		folder.ID = uuid.New()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, description, group_id, parent_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created, lastchange
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.ID,
		folder.Name,
		folder.Description,
		folder.GroupID,
		folder.ParentID,
	).Scan(&folder.Created, &folder.Lastchange)

	if err != nil {
		return mapFolderWriteError(err, folder)
	}
	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	var folder models.Folder
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanFolder(executor.QueryRow(ctx, query, id), &folder); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return &folder, nil
}

// GetByIDs retrieves all existing folders among ids
func (r *PostgresFolderRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Folder, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ANY($1::uuid[])`, folderColumns, r.tables.Folders)
	return r.query(ctx, "get folders", query, keys)
}

// List returns one page of folders
func (r *PostgresFolderRepository) List(ctx context.Context, page models.PageOptions) ([]models.Folder, error) {
	page.ApplyDefaults()
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		ORDER BY created ASC, id ASC
		OFFSET $1 LIMIT $2
	`, folderColumns, r.tables.Folders)
	return r.query(ctx, "list folders", query, page.Offset, page.Limit)
}

// FilterBy returns folders whose column equals value; a nil value matches NULL
func (r *PostgresFolderRepository) FilterBy(ctx context.Context, field string, value any) ([]models.Folder, error) {
	if !models.FolderFilterFields[field] {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("cannot filter folders by %q", field)}
	}

	if isNil(value) {
		query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s IS NULL ORDER BY created ASC`, folderColumns, r.tables.Folders, field)
		return r.query(ctx, "filter folders", query)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY created ASC`, folderColumns, r.tables.Folders, field)
	return r.query(ctx, "filter folders", query, value)
}

// Update persists the mutable fields and bumps lastchange
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder, expected *time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, group_id = $3, parent_id = $4,
		    lastchange = GREATEST(clock_timestamp(), lastchange + interval '1 microsecond')
		WHERE id = $5 AND ($6::timestamptz IS NULL OR lastchange = $6)
		RETURNING created, lastchange
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.Name,
		folder.Description,
		folder.GroupID,
		folder.ParentID,
		folder.ID,
		expected,
	).Scan(&folder.Created, &folder.Lastchange)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			if _, getErr := r.GetByID(ctx, folder.ID); getErr != nil {
				return getErr
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder %s was changed concurrently", folder.ID),
				ResourceType: "document_folder",
				ResourceID:   folder.ID.String(),
			}
		}
		return mapFolderWriteError(err, folder)
	}
	return nil
}

func (r *PostgresFolderRepository) query(ctx context.Context, op, query string, args ...any) ([]models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	folders := make([]models.Folder, 0)
	for rows.Next() {
		var folder models.Folder
		if err := scanFolder(rows, &folder); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return folders, nil
}

func mapFolderWriteError(err error, folder *models.Folder) error {
	switch {
	case postgres.IsPgDuplicateError(err):
		return &domain.ConflictError{
			Message:      fmt.Sprintf("folder %s already exists", folder.ID),
			ResourceType: "document_folder",
			ResourceID:   folder.ID.String(),
		}
	case postgres.IsPgForeignKeyError(err):
		return &domain.ValidationError{Message: fmt.Sprintf("parent folder of %s does not exist", folder.ID)}
	}
	return fmt.Errorf("write folder: %w", err)
}
