package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docudrive-backend/domain"
	"docudrive-backend/models"
	"docudrive-backend/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ItemType distinguishes folders from files in the operations that accept
// either.
type ItemType string

const (
	ItemTypeFolder ItemType = "folder"
	ItemTypeFile   ItemType = "file"
)

// FolderStore is the metadata store surface the engine needs for folders.
type FolderStore interface {
	Create(ctx context.Context, folder *models.Folder) error
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*models.Folder, error)
	GetRoot(ctx context.Context, ownerID uuid.UUID) (*models.Folder, error)
	ListByParent(ctx context.Context, parentID, ownerID uuid.UUID) ([]*models.Folder, error)
	GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Folder, error)
	Update(ctx context.Context, folder *models.Folder) error
	UpdatePathPrefix(ctx context.Context, ownerID uuid.UUID, oldPrefix, newPrefix string) (int64, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

// FileStore is the metadata store surface the engine needs for files.
type FileStore interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*models.File, error)
	ListByFolder(ctx context.Context, folderID, ownerID uuid.UUID) ([]*models.File, error)
	FindByName(ctx context.Context, folderID, ownerID uuid.UUID, name string) (*models.File, error)
	GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.File, error)
	Update(ctx context.Context, file *models.File) error
	UpdateMetadata(ctx context.Context, id, ownerID uuid.UUID, metadata models.FileMetadata) error
	UpdatePathPrefix(ctx context.Context, ownerID uuid.UUID, oldPrefix, newPrefix string) (int64, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

// RevisionStore is the metadata store surface for file revisions.
type RevisionStore interface {
	Create(ctx context.Context, rev *models.FileRevision) error
	ListByFile(ctx context.Context, fileID, ownerID uuid.UUID) ([]models.FileRevision, error)
	LatestByFile(ctx context.Context, fileID, ownerID uuid.UUID) (*models.FileRevision, error)
	DeleteByFile(ctx context.Context, fileID, ownerID uuid.UUID) error
}

// VFSService orchestrates the metadata store, blob store, and enrichment
// notifier into the virtual filesystem operations. It holds no state of its
// own; all shared state lives in the external stores.
type VFSService struct {
	folders   FolderStore
	files     FileStore
	revisions RevisionStore
	blobs     storage.Storage
	enricher  Enricher
	log       *logrus.Logger
}

// VFSServiceOption is a functional option for VFSService
type VFSServiceOption func(*VFSService)

// WithEnricher sets the enrichment notifier
func WithEnricher(e Enricher) VFSServiceOption {
	return func(s *VFSService) {
		s.enricher = e
	}
}

// WithLogger sets the logger
func WithLogger(log *logrus.Logger) VFSServiceOption {
	return func(s *VFSService) {
		s.log = log
	}
}

// NewVFSService creates a new virtual filesystem service
func NewVFSService(folders FolderStore, files FileStore, revisions RevisionStore, blobs storage.Storage, opts ...VFSServiceOption) *VFSService {
	s := &VFSService{
		folders:   folders,
		files:     files,
		revisions: revisions,
		blobs:     blobs,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logrus.New()
	}
	return s
}

// BootstrapRoot returns the owner's root folder, creating it on first call
// and self-healing a drifted path. Idempotent; safe to call on every
// session start.
func (s *VFSService) BootstrapRoot(ctx context.Context, ownerID uuid.UUID) (*models.Folder, error) {
	root, err := s.folders.GetRoot(ctx, ownerID)
	if err == nil {
		if root.Path != models.RootFolderPath {
			s.log.WithFields(logrus.Fields{
				"owner": ownerID,
				"path":  root.Path,
			}).Warn("root folder path drifted, repairing")
			root.Path = models.RootFolderPath
			if err := s.folders.Update(ctx, root); err != nil {
				return nil, err
			}
		}
		return root, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	root = &models.Folder{
		ID:        uuid.New(),
		Name:      models.RootFolderName,
		ParentID:  nil,
		Path:      models.RootFolderPath,
		CreatedBy: ownerID,
	}
	if err := s.folders.Create(ctx, root); err != nil {
		return nil, err
	}
	return root, nil
}

// FolderContents holds the direct children of a folder.
type FolderContents struct {
	Folders []*models.Folder `json:"folders"`
	Files   []*models.File   `json:"files"`
}

// ListContents returns a folder's direct children. Files come joined with
// their revision history.
func (s *VFSService) ListContents(ctx context.Context, ownerID, folderID uuid.UUID) (*FolderContents, error) {
	if _, err := s.folders.GetByID(ctx, folderID, ownerID); err != nil {
		return nil, err
	}

	folders, err := s.folders.ListByParent(ctx, folderID, ownerID)
	if err != nil {
		return nil, err
	}
	files, err := s.files.ListByFolder(ctx, folderID, ownerID)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		revisions, err := s.revisions.ListByFile(ctx, file.ID, ownerID)
		if err != nil {
			return nil, err
		}
		file.Revisions = revisions
	}

	return &FolderContents{Folders: folders, Files: files}, nil
}

// GetFile returns a file with its revision history joined.
func (s *VFSService) GetFile(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error) {
	file, err := s.files.GetByID(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}
	revisions, err := s.revisions.ListByFile(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}
	file.Revisions = revisions
	return file, nil
}

// CreateFolder creates a folder under parentID; a nil parent resolves to
// the owner's root folder.
func (s *VFSService) CreateFolder(ctx context.Context, ownerID uuid.UUID, name string, parentID *uuid.UUID) (*models.Folder, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("folder name is required: %w", domain.ErrInvalidOperation)
	}

	parent, err := s.resolveParent(ctx, ownerID, parentID)
	if err != nil {
		return nil, err
	}

	folder := &models.Folder{
		ID:        uuid.New(),
		Name:      name,
		ParentID:  &parent.ID,
		Path:      parent.Path + "/" + name,
		CreatedBy: ownerID,
	}
	if err := s.folders.Create(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// RenameItem renames a folder or file, rewriting the trailing segment of
// its path. Folder renames propagate the new prefix to every descendant;
// partial propagation failure is logged, not fatal.
func (s *VFSService) RenameItem(ctx context.Context, ownerID, id uuid.UUID, newName string, itemType ItemType) error {
	if strings.TrimSpace(newName) == "" {
		return fmt.Errorf("name is required: %w", domain.ErrInvalidOperation)
	}

	switch itemType {
	case ItemTypeFolder:
		folder, err := s.folders.GetByID(ctx, id, ownerID)
		if err != nil {
			return err
		}
		oldPath := folder.Path
		folder.Name = newName
		folder.Path = replaceLastSegment(oldPath, newName)
		if err := s.folders.Update(ctx, folder); err != nil {
			return err
		}
		s.propagatePaths(ctx, ownerID, oldPath, folder.Path)
		return nil

	case ItemTypeFile:
		file, err := s.files.GetByID(ctx, id, ownerID)
		if err != nil {
			return err
		}
		file.Name = newName
		file.Path = replaceLastSegment(file.Path, newName)
		return s.files.Update(ctx, file)

	default:
		return fmt.Errorf("unknown item type %q: %w", itemType, domain.ErrInvalidOperation)
	}
}

// MoveItem moves a folder or file into targetFolderID. A folder may not be
// moved into itself or any of its own descendants.
func (s *VFSService) MoveItem(ctx context.Context, ownerID, id, targetFolderID uuid.UUID, itemType ItemType) error {
	target, err := s.folders.GetByID(ctx, targetFolderID, ownerID)
	if err != nil {
		return err
	}

	switch itemType {
	case ItemTypeFolder:
		if targetFolderID == id {
			return fmt.Errorf("cannot move a folder into itself: %w", domain.ErrInvalidOperation)
		}
		// Walk up from the target; hitting id means the target sits inside
		// the moved subtree. The walk terminates because the folder graph
		// is a forest.
		inside, err := s.isDescendantOf(ctx, ownerID, target, id)
		if err != nil {
			return err
		}
		if inside {
			return fmt.Errorf("cannot move a folder into its own descendant: %w", domain.ErrInvalidOperation)
		}

		folder, err := s.folders.GetByID(ctx, id, ownerID)
		if err != nil {
			return err
		}
		oldPath := folder.Path
		folder.ParentID = &target.ID
		folder.Path = target.Path + "/" + folder.Name
		if err := s.folders.Update(ctx, folder); err != nil {
			return err
		}
		s.propagatePaths(ctx, ownerID, oldPath, folder.Path)
		return nil

	case ItemTypeFile:
		file, err := s.files.GetByID(ctx, id, ownerID)
		if err != nil {
			return err
		}
		file.FolderID = target.ID
		file.Path = target.Path + "/" + file.Name
		return s.files.Update(ctx, file)

	default:
		return fmt.Errorf("unknown item type %q: %w", itemType, domain.ErrInvalidOperation)
	}
}

// DeleteItem deletes a file, or a folder and everything beneath it. Blob
// deletion failures are tolerated; an orphaned blob is less harmful than a
// metadata row blocking the user.
func (s *VFSService) DeleteItem(ctx context.Context, ownerID, id uuid.UUID, itemType ItemType) error {
	switch itemType {
	case ItemTypeFile:
		file, err := s.files.GetByID(ctx, id, ownerID)
		if err != nil {
			return err
		}
		return s.deleteFile(ctx, ownerID, file)

	case ItemTypeFolder:
		folder, err := s.folders.GetByID(ctx, id, ownerID)
		if err != nil {
			return err
		}
		return s.deleteFolderRecursive(ctx, ownerID, folder)

	default:
		return fmt.Errorf("unknown item type %q: %w", itemType, domain.ErrInvalidOperation)
	}
}

// ToggleStarred flips an item's starred flag and returns the new value.
// Concurrent toggles are last-write-wins.
func (s *VFSService) ToggleStarred(ctx context.Context, ownerID, id uuid.UUID, itemType ItemType) (bool, error) {
	switch itemType {
	case ItemTypeFolder:
		folder, err := s.folders.GetByID(ctx, id, ownerID)
		if err != nil {
			return false, err
		}
		folder.Starred = !folder.Starred
		if err := s.folders.Update(ctx, folder); err != nil {
			return false, err
		}
		return folder.Starred, nil

	case ItemTypeFile:
		file, err := s.files.GetByID(ctx, id, ownerID)
		if err != nil {
			return false, err
		}
		file.Starred = !file.Starred
		if err := s.files.Update(ctx, file); err != nil {
			return false, err
		}
		return file.Starred, nil

	default:
		return false, fmt.Errorf("unknown item type %q: %w", itemType, domain.ErrInvalidOperation)
	}
}

// deleteFile removes a file's blob (best effort), its revisions, then the
// row itself, in that order.
func (s *VFSService) deleteFile(ctx context.Context, ownerID uuid.UUID, file *models.File) error {
	if file.StoragePath != "" {
		if err := s.blobs.Delete(ctx, file.StoragePath); err != nil {
			s.log.WithFields(logrus.Fields{
				"file": file.ID,
				"key":  file.StoragePath,
			}).WithError(err).Warn("blob delete failed, continuing with metadata delete")
		}
	}
	if err := s.revisions.DeleteByFile(ctx, file.ID, ownerID); err != nil {
		return err
	}
	return s.files.Delete(ctx, file.ID, ownerID)
}

// deleteFolderRecursive removes a folder subtree: files first, then folders
// deepest-first so any foreign keys in the backing store stay satisfied.
func (s *VFSService) deleteFolderRecursive(ctx context.Context, ownerID uuid.UUID, folder *models.Folder) error {
	// Breadth-first collection of the subtree, root of the subtree first.
	subtree := []*models.Folder{folder}
	for i := 0; i < len(subtree); i++ {
		children, err := s.folders.ListByParent(ctx, subtree[i].ID, ownerID)
		if err != nil {
			return err
		}
		subtree = append(subtree, children...)
	}

	for _, f := range subtree {
		files, err := s.files.ListByFolder(ctx, f.ID, ownerID)
		if err != nil {
			return err
		}
		for _, file := range files {
			if err := s.deleteFile(ctx, ownerID, file); err != nil {
				return err
			}
		}
	}

	for i := len(subtree) - 1; i >= 0; i-- {
		if err := s.folders.Delete(ctx, subtree[i].ID, ownerID); err != nil {
			return err
		}
	}
	return nil
}

// propagatePaths rewrites the path prefix of every descendant folder and
// file. Failures here leave a recoverable inconsistency for the reconciler
// rather than aborting the rename/move that already committed.
func (s *VFSService) propagatePaths(ctx context.Context, ownerID uuid.UUID, oldPath, newPath string) {
	if oldPath == newPath {
		return
	}
	oldPrefix := oldPath + "/"
	newPrefix := newPath + "/"

	if _, err := s.folders.UpdatePathPrefix(ctx, ownerID, oldPrefix, newPrefix); err != nil {
		s.log.WithField("prefix", oldPrefix).WithError(err).Warn("folder path propagation failed")
	}
	if _, err := s.files.UpdatePathPrefix(ctx, ownerID, oldPrefix, newPrefix); err != nil {
		s.log.WithField("prefix", oldPrefix).WithError(err).Warn("file path propagation failed")
	}
}

// isDescendantOf walks parent pointers from start toward the root, looking
// for ancestorID.
func (s *VFSService) isDescendantOf(ctx context.Context, ownerID uuid.UUID, start *models.Folder, ancestorID uuid.UUID) (bool, error) {
	current := start
	for current.ParentID != nil {
		if *current.ParentID == ancestorID {
			return true, nil
		}
		parent, err := s.folders.GetByID(ctx, *current.ParentID, ownerID)
		if err != nil {
			return false, err
		}
		current = parent
	}
	return false, nil
}

// resolveParent loads parentID, or the root folder when parentID is nil.
func (s *VFSService) resolveParent(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) (*models.Folder, error) {
	if parentID == nil {
		return s.BootstrapRoot(ctx, ownerID)
	}
	return s.folders.GetByID(ctx, *parentID, ownerID)
}

// replaceLastSegment swaps the trailing name segment of a path.
func replaceLastSegment(path, newName string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "/" + newName
	}
	return path[:idx+1] + newName
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
