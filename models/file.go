package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// File represents a file entity in the virtual filesystem. The file's own
// StoragePath/Size/PublicURL fields are authoritative for current content;
// revisions are historical metadata.
type File struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	FolderID    uuid.UUID      `json:"folder_id"`
	Path        string         `json:"path"`
	FileType    string         `json:"file_type"`
	Size        int64          `json:"size"`
	StoragePath string         `json:"storage_path"`
	PublicURL   *string        `json:"public_url,omitempty"`
	Thumbnail   string         `json:"thumbnail"`
	Starred     bool           `json:"starred"`
	Metadata    FileMetadata   `json:"metadata"`
	CreatedBy   uuid.UUID      `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Revisions   []FileRevision `json:"revisions,omitempty"`
}

// FileRevision is an immutable, versioned record attached to a File. It is
// never updated or deleted individually, only cascade-deleted with its file.
type FileRevision struct {
	ID        uuid.UUID `json:"id"`
	FileID    uuid.UUID `json:"file_id"`
	Version   string    `json:"version"`
	Changes   string    `json:"changes"`
	Thumbnail string    `json:"thumbnail"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// FileMetadata is the open key/value bag stored in files.metadata. The
// fields the engine reasons about are typed; anything else a worker writes
// lands in Extra and round-trips untouched.
type FileMetadata struct {
	NeedsProcessing bool
	Processed       bool
	Description     string
	ExtractedText   string
	Extra           map[string]any
}

// MarshalJSON flattens Extra into the top-level object alongside the typed
// fields.
func (m FileMetadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+4)
	for k, v := range m.Extra {
		out[k] = v
	}
	out["needsProcessing"] = m.NeedsProcessing
	out["processed"] = m.Processed
	if m.Description != "" {
		out["description"] = m.Description
	}
	if m.ExtractedText != "" {
		out["extractedText"] = m.ExtractedText
	}
	return json.Marshal(out)
}

// UnmarshalJSON pulls the typed fields out of the object and keeps the rest
// in Extra.
func (m *FileMetadata) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["needsProcessing"].(bool); ok {
		m.NeedsProcessing = v
	}
	if v, ok := raw["processed"].(bool); ok {
		m.Processed = v
	}
	if v, ok := raw["description"].(string); ok {
		m.Description = v
	}
	if v, ok := raw["extractedText"].(string); ok {
		m.ExtractedText = v
	}
	delete(raw, "needsProcessing")
	delete(raw, "processed")
	delete(raw, "description")
	delete(raw, "extractedText")
	if len(raw) > 0 {
		m.Extra = raw
	}
	return nil
}

// Merge copies worker-supplied fields from other into m. Zero values in
// other are skipped so merging the unprocessed sentinel is a no-op.
func (m *FileMetadata) Merge(other FileMetadata) {
	if other.Processed {
		m.Processed = true
		m.NeedsProcessing = false
	}
	if other.Description != "" {
		m.Description = other.Description
	}
	if other.ExtractedText != "" {
		m.ExtractedText = other.ExtractedText
	}
	for k, v := range other.Extra {
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		m.Extra[k] = v
	}
}
