package models

import (
	"time"

	"github.com/google/uuid"
)

// RootFolderName is the display name of every user's root folder.
const RootFolderName = "My Documents"

// RootFolderPath is the materialized path of every user's root folder.
const RootFolderPath = "/" + RootFolderName

// Folder represents a folder in the virtual filesystem. Path is a
// denormalized materialization of the ancestor chain and must be kept in
// sync when any ancestor is renamed or moved.
type Folder struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Path      string     `json:"path"`
	Starred   bool       `json:"starred"`
	CreatedBy uuid.UUID  `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsRoot reports whether the folder is a user's root folder.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
