package docsystem

import (
	"context"
	"time"

	"docsgraph/internal/domain/models/docsystem"

	"github.com/google/uuid"
)

// FolderRepository defines data access operations for document folders
type FolderRepository interface {
	// Create inserts a folder; a non-nil ParentID must reference an existing folder
	Create(ctx context.Context, folder *docsystem.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id uuid.UUID) (*docsystem.Folder, error)

	// GetByIDs retrieves the folders that exist among ids
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]docsystem.Folder, error)

	// List returns a page of folders ordered by creation time
	List(ctx context.Context, page docsystem.PageOptions) ([]docsystem.Folder, error)

	// FilterBy returns folders whose column equals value (see FolderFilterFields)
	FilterBy(ctx context.Context, field string, value any) ([]docsystem.Folder, error)

	// Update persists mutable fields and bumps Lastchange
	Update(ctx context.Context, folder *docsystem.Folder, expected *time.Time) error
}
