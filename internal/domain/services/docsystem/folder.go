package docsystem

import (
	"context"
	"time"

	"docsgraph/internal/domain/models/docsystem"

	"github.com/google/uuid"
)

// FolderService handles document folders. Folders live only in the local store.
type FolderService interface {
	// GetFolder returns the folder or nil.
	GetFolder(ctx context.Context, id uuid.UUID) (*docsystem.Folder, error)

	// FindFolders loads folders in id order; missing ids yield nil.
	FindFolders(ctx context.Context, ids []uuid.UUID) ([]*docsystem.Folder, error)

	ListFolders(ctx context.Context, page docsystem.PageOptions) ([]*docsystem.Folder, error)

	// Subfolders returns the direct children of parentID.
	Subfolders(ctx context.Context, parentID uuid.UUID) ([]*docsystem.Folder, error)

	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*docsystem.FolderResult, error)

	UpdateFolder(ctx context.Context, req *UpdateFolderRequest) (*docsystem.FolderResult, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"` // nil for root
}

// UpdateFolderRequest changes the non-nil fields of a folder.
type UpdateFolderRequest struct {
	ID          uuid.UUID  `json:"id"`
	Lastchange  *time.Time `json:"lastchange,omitempty"`
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
}
