package docsystem

import (
	"time"

	"github.com/google/uuid"
)

// Document is a local record mirrored by one item in the DSpace repository.
type Document struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	DSpaceID     *uuid.UUID `json:"dspace_id" db:"dspace_id"` // NULL until the DSpace item exists
	Name         string     `json:"name" db:"name"`
	Description  *string    `json:"description" db:"description"`
	AuthorID     *uuid.UUID `json:"author_id" db:"author_id"`
	GroupID      *uuid.UUID `json:"group_id" db:"group_id"`
	FolderID     *uuid.UUID `json:"folder_id" db:"folder_id"`
	DocumentType *string    `json:"document_type" db:"document_type"`
	ChangedBy    *uuid.UUID `json:"changedby_id" db:"changedby_id"`
	Created      time.Time  `json:"created" db:"created"`
	Lastchange   time.Time  `json:"lastchange" db:"lastchange"`
}

// Clone returns a copy that can be mutated without touching cached records.
func (d *Document) Clone() *Document {
	c := *d
	return &c
}

// DocumentFilterFields are the columns FilterBy accepts for documents.
var DocumentFilterFields = map[string]bool{
	"folder_id":     true,
	"group_id":      true,
	"author_id":     true,
	"dspace_id":     true,
	"document_type": true,
	"name":          true,
}
