// Package domain holds the error taxonomy shared by the engine, adapters,
// and handlers.
package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors - match with errors.Is().
var (
	// ErrNotFound indicates an entity is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrInvalidOperation indicates a structurally illegal request, such as
	// moving a folder into its own descendant or an empty required field.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrConflict indicates a name collision requiring a caller decision.
	ErrConflict = errors.New("name conflict")

	// ErrUpload indicates a blob transfer failed after retry.
	ErrUpload = errors.New("upload failed")

	// ErrStore wraps an underlying metadata store failure.
	ErrStore = errors.New("store error")
)

// ConflictError reports an upload name collision along with the id of the
// existing file, so the caller can choose to rename or add a revision.
type ConflictError struct {
	Name           string
	ExistingFileID uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("file '%s' already exists in this folder", e.Name)
}

// Is allows errors.Is() to match against ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
