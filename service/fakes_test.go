package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"docudrive-backend/domain"
	"docudrive-backend/models"
	"docudrive-backend/storage"

	"github.com/google/uuid"
)

// fakeClock hands out strictly increasing timestamps so created_at ordering
// is deterministic in tests.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		step: time.Second,
	}
}

func (c *fakeClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

type fakeFolderStore struct {
	mu      sync.Mutex
	clock   *fakeClock
	folders map[uuid.UUID]models.Folder
}

func newFakeFolderStore(clock *fakeClock) *fakeFolderStore {
	return &fakeFolderStore{clock: clock, folders: make(map[uuid.UUID]models.Folder)}
}

func (s *fakeFolderStore) Create(ctx context.Context, folder *models.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.next()
	folder.CreatedAt = now
	folder.UpdatedAt = now
	s.folders[folder.ID] = *folder
	return nil
}

func (s *fakeFolderStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*models.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.folders[id]
	if !ok || f.CreatedBy != ownerID {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	copied := f
	return &copied, nil
}

func (s *fakeFolderStore) GetRoot(ctx context.Context, ownerID uuid.UUID) (*models.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.folders {
		if f.CreatedBy == ownerID && f.ParentID == nil && f.Name == models.RootFolderName {
			copied := f
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("root folder: %w", domain.ErrNotFound)
}

func (s *fakeFolderStore) ListByParent(ctx context.Context, parentID, ownerID uuid.UUID) ([]*models.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Folder
	for _, f := range s.folders {
		if f.CreatedBy == ownerID && f.ParentID != nil && *f.ParentID == parentID {
			copied := f
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *fakeFolderStore) GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Folder
	for _, f := range s.folders {
		if f.CreatedBy == ownerID {
			copied := f
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeFolderStore) Update(ctx context.Context, folder *models.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.folders[folder.ID]
	if !ok || existing.CreatedBy != folder.CreatedBy {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	folder.UpdatedAt = s.clock.next()
	s.folders[folder.ID] = *folder
	return nil
}

// UpdatePathPrefix does a literal prefix comparison, same as the
// repositories' left(path, char_length($1)) = $1 match; % and _ in names
// carry no wildcard meaning.
func (s *fakeFolderStore) UpdatePathPrefix(ctx context.Context, ownerID uuid.UUID, oldPrefix, newPrefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, f := range s.folders {
		if f.CreatedBy == ownerID && strings.HasPrefix(f.Path, oldPrefix) {
			f.Path = newPrefix + f.Path[len(oldPrefix):]
			f.UpdatedAt = s.clock.next()
			s.folders[id] = f
			n++
		}
	}
	return n, nil
}

func (s *fakeFolderStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.folders[id]
	if !ok || f.CreatedBy != ownerID {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	delete(s.folders, id)
	return nil
}

func (s *fakeFolderStore) ListOwners(ctx context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var owners []uuid.UUID
	for _, f := range s.folders {
		if !seen[f.CreatedBy] {
			seen[f.CreatedBy] = true
			owners = append(owners, f.CreatedBy)
		}
	}
	return owners, nil
}

type fakeFileStore struct {
	mu        sync.Mutex
	clock     *fakeClock
	files     map[uuid.UUID]models.File
	createErr error
}

func newFakeFileStore(clock *fakeClock) *fakeFileStore {
	return &fakeFileStore{clock: clock, files: make(map[uuid.UUID]models.File)}
}

func (s *fakeFileStore) Create(ctx context.Context, file *models.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	now := s.clock.next()
	file.CreatedAt = now
	file.UpdatedAt = now
	stored := *file
	stored.Revisions = nil
	s.files[file.ID] = stored
	return nil
}

func (s *fakeFileStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok || f.CreatedBy != ownerID {
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	copied := f
	return &copied, nil
}

func (s *fakeFileStore) ListByFolder(ctx context.Context, folderID, ownerID uuid.UUID) ([]*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.File
	for _, f := range s.files {
		if f.CreatedBy == ownerID && f.FolderID == folderID {
			copied := f
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *fakeFileStore) FindByName(ctx context.Context, folderID, ownerID uuid.UUID, name string) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.files {
		if f.CreatedBy == ownerID && f.FolderID == folderID && f.Name == name {
			copied := f
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeFileStore) GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.File
	for _, f := range s.files {
		if f.CreatedBy == ownerID {
			copied := f
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeFileStore) Update(ctx context.Context, file *models.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.files[file.ID]
	if !ok || existing.CreatedBy != file.CreatedBy {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}
	file.UpdatedAt = s.clock.next()
	stored := *file
	stored.Revisions = nil
	s.files[file.ID] = stored
	return nil
}

func (s *fakeFileStore) UpdateMetadata(ctx context.Context, id, ownerID uuid.UUID, metadata models.FileMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok || f.CreatedBy != ownerID {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	f.Metadata = metadata
	f.UpdatedAt = s.clock.next()
	s.files[id] = f
	return nil
}

// UpdatePathPrefix mirrors the literal prefix semantics of the file
// repository, like the folder fake above.
func (s *fakeFileStore) UpdatePathPrefix(ctx context.Context, ownerID uuid.UUID, oldPrefix, newPrefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, f := range s.files {
		if f.CreatedBy == ownerID && strings.HasPrefix(f.Path, oldPrefix) {
			f.Path = newPrefix + f.Path[len(oldPrefix):]
			f.UpdatedAt = s.clock.next()
			s.files[id] = f
			n++
		}
	}
	return n, nil
}

func (s *fakeFileStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok || f.CreatedBy != ownerID {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	delete(s.files, id)
	return nil
}

type fakeRevisionStore struct {
	mu        sync.Mutex
	clock     *fakeClock
	revisions map[uuid.UUID][]models.FileRevision
}

func newFakeRevisionStore(clock *fakeClock) *fakeRevisionStore {
	return &fakeRevisionStore{clock: clock, revisions: make(map[uuid.UUID][]models.FileRevision)}
}

func (s *fakeRevisionStore) Create(ctx context.Context, rev *models.FileRevision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rev.CreatedAt = s.clock.next()
	s.revisions[rev.FileID] = append(s.revisions[rev.FileID], *rev)
	return nil
}

func (s *fakeRevisionStore) ListByFile(ctx context.Context, fileID, ownerID uuid.UUID) ([]models.FileRevision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FileRevision
	for _, rev := range s.revisions[fileID] {
		if rev.CreatedBy == ownerID {
			out = append(out, rev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeRevisionStore) LatestByFile(ctx context.Context, fileID, ownerID uuid.UUID) (*models.FileRevision, error) {
	revs, _ := s.ListByFile(ctx, fileID, ownerID)
	if len(revs) == 0 {
		return nil, nil
	}
	latest := revs[len(revs)-1]
	return &latest, nil
}

func (s *fakeRevisionStore) DeleteByFile(ctx context.Context, fileID, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.revisions, fileID)
	return nil
}

// fakeStorage is an in-memory blob store. failUploads forces that many
// upload errors before one succeeds; deleteErr makes every delete fail.
type fakeStorage struct {
	mu          sync.Mutex
	blobs       map[string][]byte
	failUploads int
	deleteErr   error
	deleted     []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: make(map[string][]byte)}
}

func (s *fakeStorage) EnsureBucket(ctx context.Context) error { return nil }

func (s *fakeStorage) Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string, onProgress storage.ProgressFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUploads > 0 {
		s.failUploads--
		return fmt.Errorf("simulated transfer failure: %w", domain.ErrUpload)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(data); err != nil {
		return err
	}
	s.blobs[key] = buf.Bytes()
	if onProgress != nil {
		onProgress(50)
		onProgress(100)
	}
	return nil
}

func (s *fakeStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.blobs, key)
	return nil
}

func (s *fakeStorage) PublicURL(key string) *string {
	url := "https://blobs.example.com/" + key
	return &url
}

// fakeEnricher returns a canned result and signals notified when called.
type fakeEnricher struct {
	result   *EnrichmentResult
	notified chan Notification
}

func newFakeEnricher(result *EnrichmentResult) *fakeEnricher {
	return &fakeEnricher{result: result, notified: make(chan Notification, 1)}
}

func (e *fakeEnricher) Notify(ctx context.Context, n Notification) *EnrichmentResult {
	select {
	case e.notified <- n:
	default:
	}
	if e.result == nil {
		return Unprocessed()
	}
	return e.result
}

func contentReader(s string) io.Reader {
	return strings.NewReader(s)
}

// newTestVFS wires a VFSService over fresh fakes.
func newTestVFS(opts ...VFSServiceOption) (*VFSService, *fakeFolderStore, *fakeFileStore, *fakeRevisionStore, *fakeStorage) {
	clock := newFakeClock()
	folders := newFakeFolderStore(clock)
	files := newFakeFileStore(clock)
	revisions := newFakeRevisionStore(clock)
	blobs := newFakeStorage()
	vfs := NewVFSService(folders, files, revisions, blobs, opts...)
	return vfs, folders, files, revisions, blobs
}
