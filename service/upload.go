package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"docudrive-backend/domain"
	"docudrive-backend/fileutil"
	"docudrive-backend/models"
	"docudrive-backend/storage"

	"github.com/google/uuid"
)

// enrichmentTimeout bounds the detached enrichment call so the worker can
// never wedge a goroutine indefinitely.
const enrichmentTimeout = 30 * time.Second

// ConflictDecision is the caller's answer to an upload name collision:
// either attach the upload as a new revision of the existing file, or
// rename the incoming file.
type ConflictDecision struct {
	AddRevision bool
	RenameTo    string
}

// ConflictFunc is invoked when the uploaded name already exists in the
// target folder and the caller did not pre-declare a revision target.
type ConflictFunc func(existingFileID uuid.UUID) ConflictDecision

// UploadRequest describes one file upload.
type UploadRequest struct {
	// FolderID is the target folder; nil falls back to the root folder.
	FolderID *uuid.UUID
	Name     string
	Size     int64
	Content  io.Reader

	// AsRevision pre-declares the upload as a new revision of an existing
	// file, skipping conflict detection for that file.
	AsRevision *uuid.UUID

	// OnConflict resolves a name collision. Left nil, a collision yields a
	// ConflictError; nothing is ever silently overwritten.
	OnConflict ConflictFunc

	// OnProgress receives coarse, monotone upload progress ending at 100.
	OnProgress storage.ProgressFunc
}

// UploadFile runs the full upload sequence: conflict resolution, blob
// upload (before any metadata write), file insert/update, revision insert,
// then a detached enrichment notification. The returned file is committed
// before enrichment runs; enrichment failures never surface here.
func (s *VFSService) UploadFile(ctx context.Context, ownerID uuid.UUID, req UploadRequest) (*models.File, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("file name is required: %w", domain.ErrInvalidOperation)
	}

	// 1. Resolve the target folder.
	folder, err := s.resolveParent(ctx, ownerID, req.FolderID)
	if err != nil {
		return nil, err
	}

	// 2. Detect a name conflict and resolve it via the caller's decision.
	name := req.Name
	var existing *models.File
	if req.AsRevision != nil {
		existing, err = s.files.GetByID(ctx, *req.AsRevision, ownerID)
		if err != nil {
			return nil, err
		}
	} else {
		found, err := s.files.FindByName(ctx, folder.ID, ownerID, name)
		if err != nil {
			return nil, err
		}
		if found != nil {
			if req.OnConflict == nil {
				return nil, &domain.ConflictError{Name: name, ExistingFileID: found.ID}
			}
			decision := req.OnConflict(found.ID)
			switch {
			case decision.AddRevision:
				existing = found
			case decision.RenameTo != "":
				name = decision.RenameTo
				again, err := s.files.FindByName(ctx, folder.ID, ownerID, name)
				if err != nil {
					return nil, err
				}
				if again != nil {
					return nil, &domain.ConflictError{Name: name, ExistingFileID: again.ID}
				}
			default:
				return nil, &domain.ConflictError{Name: name, ExistingFileID: found.ID}
			}
		}
	}

	fileID := uuid.New()
	fileType := fileutil.Extension(name)
	contentName := name
	if existing != nil {
		// A revision keeps the file's identity: same id, same type, same
		// blob key, so the new content overwrites the old blob in place
		// even when the upload name carries a different extension.
		fileID = existing.ID
		fileType = existing.FileType
		contentName = existing.Name
	}

	// 3. Upload the blob before any metadata is written, so a committed row
	// never points at a missing blob.
	key := storage.ObjectKey(ownerID, fileID, fileType)
	if err := s.blobs.Upload(ctx, key, req.Content, req.Size, fileutil.ContentType(contentName), req.OnProgress); err != nil {
		return nil, err
	}

	// 4. Resolve a public URL, best effort.
	publicURL := s.blobs.PublicURL(key)

	// 5. Update the existing file or insert a fresh one.
	var file *models.File
	if existing != nil {
		file = existing
		file.Size = req.Size
		file.StoragePath = key
		file.PublicURL = publicURL
		// Replaced content invalidates the derived fields; the user's
		// description and any worker extras survive the revision.
		file.Metadata.NeedsProcessing = true
		file.Metadata.Processed = false
		file.Metadata.ExtractedText = ""
		if err := s.files.Update(ctx, file); err != nil {
			return nil, err
		}
	} else {
		file = &models.File{
			ID:          fileID,
			Name:        name,
			FolderID:    folder.ID,
			Path:        folder.Path + "/" + name,
			FileType:    fileType,
			Size:        req.Size,
			StoragePath: key,
			PublicURL:   publicURL,
			Thumbnail:   fileutil.Thumbnail(fileType),
			Metadata:    models.FileMetadata{NeedsProcessing: true},
			CreatedBy:   ownerID,
		}
		if err := s.files.Create(ctx, file); err != nil {
			return nil, err
		}
	}

	// 6. Append the revision after the file row exists, never before.
	latest, err := s.revisions.LatestByFile(ctx, file.ID, ownerID)
	if err != nil {
		return nil, err
	}
	changes := "Initial upload"
	if latest != nil {
		changes = "New revision"
	}
	rev := &models.FileRevision{
		ID:        uuid.New(),
		FileID:    file.ID,
		Version:   NextVersion(latest),
		Changes:   changes,
		Thumbnail: file.Thumbnail,
		CreatedBy: ownerID,
	}
	if err := s.revisions.Create(ctx, rev); err != nil {
		return nil, err
	}

	// 7. The upload is committed; join the revision history for the caller.
	revisions, err := s.revisions.ListByFile(ctx, file.ID, ownerID)
	if err != nil {
		return nil, err
	}
	file.Revisions = revisions

	// 8. Fire-and-forget enrichment. Detached from the request context so
	// the caller's return does not cancel it.
	if s.enricher != nil {
		notification := Notification{
			FileID:      file.ID.String(),
			FolderID:    file.FolderID.String(),
			UserID:      ownerID.String(),
			FileType:    file.FileType,
			StoragePath: file.StoragePath,
			FileName:    file.Name,
		}
		if file.PublicURL != nil {
			notification.PublicURL = *file.PublicURL
		}
		fileID := file.ID
		go func() {
			enrichCtx, cancel := context.WithTimeout(context.Background(), enrichmentTimeout)
			defer cancel()
			result := s.enricher.Notify(enrichCtx, notification)
			if err := s.ApplyEnrichment(enrichCtx, ownerID, fileID, result); err != nil {
				s.log.WithField("file", fileID).WithError(err).Warn("enrichment merge failed")
			}
		}()
	}

	return file, nil
}

// ApplyEnrichment merges a worker result into a file's metadata. This is
// also the entry point for out-of-band worker callbacks. The unprocessed
// sentinel merges as a no-op.
func (s *VFSService) ApplyEnrichment(ctx context.Context, ownerID, fileID uuid.UUID, result *EnrichmentResult) error {
	if result == nil || result.IsUnprocessed() {
		return nil
	}

	file, err := s.files.GetByID(ctx, fileID, ownerID)
	if err != nil {
		return err
	}

	file.Metadata.Merge(models.FileMetadata{
		Processed:     result.Processed,
		ExtractedText: result.ExtractedText,
		Extra:         result.Metadata,
	})

	if result.ThumbnailURL != "" {
		file.Thumbnail = result.ThumbnailURL
		return s.files.Update(ctx, file)
	}
	return s.files.UpdateMetadata(ctx, file.ID, ownerID, file.Metadata)
}
