package docsystem

import (
	"time"

	"github.com/google/uuid"
)

// Folder groups documents. ParentID forms a tree; cycles are not prevented.
type Folder struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	GroupID     *uuid.UUID `json:"group_id" db:"group_id"`
	ParentID    *uuid.UUID `json:"parent_id" db:"parent_id"` // NULL = root level
	Created     time.Time  `json:"created" db:"created"`
	Lastchange  time.Time  `json:"lastchange" db:"lastchange"`
}

func (f *Folder) Clone() *Folder {
	c := *f
	return &c
}

// FolderFilterFields are the columns FilterBy accepts for folders.
var FolderFilterFields = map[string]bool{
	"parent_id": true,
	"group_id":  true,
	"name":      true,
}
