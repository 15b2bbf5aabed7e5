package docsystem

import (
	"context"
	"time"

	"docsgraph/internal/domain/models/docsystem"

	"github.com/google/uuid"
)

// DocumentService keeps documents and their DSpace items in step.
// Local not-found conditions come back as a Fail result; only transport and
// store failures are returned as errors.
type DocumentService interface {
	// GetDocument loads a document and its live DSpace item.
	GetDocument(ctx context.Context, id uuid.UUID) (*docsystem.DocumentResult, error)

	// FindDocuments loads documents in id order with one store round trip,
	// without touching DSpace. Missing ids yield nil.
	FindDocuments(ctx context.Context, ids []uuid.UUID) ([]*docsystem.Document, error)

	// ListDocuments returns one page ordered by creation time.
	ListDocuments(ctx context.Context, page docsystem.PageOptions) ([]*docsystem.Document, error)

	// DocumentsInFolder returns the documents whose folder is folderID.
	DocumentsInFolder(ctx context.Context, folderID uuid.UUID) ([]*docsystem.Document, error)

	// InsertDocument creates the DSpace item first and the local row second.
	InsertDocument(ctx context.Context, req *InsertDocumentRequest) (*docsystem.DocumentResult, error)

	// UpdateDocument mirrors title and description changes before saving.
	UpdateDocument(ctx context.Context, req *UpdateDocumentRequest) (*docsystem.DocumentResult, error)

	// DeleteDocument withdraws the item and deletes the row only on success.
	DeleteDocument(ctx context.Context, req *DocumentRef) (*docsystem.DocumentResult, error)

	// AddBitstream uploads a staged file to the document's bundle.
	AddBitstream(ctx context.Context, req *AddBitstreamRequest) (*docsystem.DSpaceResult, error)

	// GetBitstream downloads the first bitstream of the document's bundle.
	GetBitstream(ctx context.Context, id uuid.UUID) (*docsystem.DSpaceResult, error)
}

// InsertDocumentRequest creates a document in a DSpace collection.
type InsertDocumentRequest struct {
	Name         string     `json:"name"`
	Description  *string    `json:"description,omitempty"`
	AuthorID     *uuid.UUID `json:"author_id,omitempty"`
	GroupID      *uuid.UUID `json:"group_id,omitempty"`
	FolderID     *uuid.UUID `json:"folder_id,omitempty"`
	CollectionID uuid.UUID  `json:"collection_id"`
	Type         *string    `json:"type,omitempty"`     // dc.type and document_type
	Language     *string    `json:"language,omitempty"` // metadata language override
	UserID       *uuid.UUID `json:"-"`                  // Set by resolver from auth context
}

// UpdateDocumentRequest changes the non-nil fields of a document.
type UpdateDocumentRequest struct {
	ID           uuid.UUID  `json:"id"`
	Lastchange   *time.Time `json:"lastchange,omitempty"` // optimistic lock when set
	Name         *string    `json:"name,omitempty"`
	Description  *string    `json:"description,omitempty"`
	AuthorID     *uuid.UUID `json:"author_id,omitempty"`
	GroupID      *uuid.UUID `json:"group_id,omitempty"`
	FolderID     *uuid.UUID `json:"folder_id,omitempty"`
	DocumentType *string    `json:"document_type,omitempty"`
	UserID       *uuid.UUID `json:"-"`
}

// DocumentRef points at a document, optionally at a known version.
type DocumentRef struct {
	ID         uuid.UUID  `json:"id"`
	Lastchange *time.Time `json:"lastchange,omitempty"`
}

// AddBitstreamRequest uploads Filename from the staging directory.
type AddBitstreamRequest struct {
	DocumentRef
	Filename string `json:"filename"`
}
