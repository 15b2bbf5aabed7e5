package docsystem

import (
	"context"
	"time"

	"docsgraph/internal/domain/models/docsystem"

	"github.com/google/uuid"
)

// DocumentRepository defines data access operations for documents
type DocumentRepository interface {
	// Create inserts a document; ID, Created and Lastchange are assigned by the store
	Create(ctx context.Context, doc *docsystem.Document) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, id uuid.UUID) (*docsystem.Document, error)

	// GetByIDs retrieves the documents that exist among ids (missing ids are skipped)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]docsystem.Document, error)

	// List returns a page of documents ordered by creation time
	List(ctx context.Context, page docsystem.PageOptions) ([]docsystem.Document, error)

	// FilterBy returns documents whose column equals value (see DocumentFilterFields)
	FilterBy(ctx context.Context, field string, value any) ([]docsystem.Document, error)

	// Update persists mutable fields and bumps Lastchange.
	// If expected is non-nil the row must still carry that lastchange.
	Update(ctx context.Context, doc *docsystem.Document, expected *time.Time) error

	// Delete removes a document
	Delete(ctx context.Context, id uuid.UUID) error
}
