package repository

import (
	"context"
	"fmt"

	"docudrive-backend/domain"
	"docudrive-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const fileColumns = `id, name, folder_id, path, file_type, size, storage_path,
		public_url, thumbnail, starred, metadata, created_by, created_at, updated_at`

// FileRepository handles database operations for files. Every query is
// scoped by the owner id passed by the caller.
type FileRepository struct {
	db *pgxpool.Pool
}

// NewFileRepository creates a new file repository
func NewFileRepository(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{db: db}
}

// Create inserts a new file record
func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (
			id, name, folder_id, path, file_type, size, storage_path,
			public_url, thumbnail, starred, metadata, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		file.ID,
		file.Name,
		file.FolderID,
		file.Path,
		file.FileType,
		file.Size,
		file.StoragePath,
		file.PublicURL,
		file.Thumbnail,
		file.Starred,
		file.Metadata,
		file.CreatedBy,
	).Scan(&file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create file: %w: %w", domain.ErrStore, err)
	}

	return nil
}

// GetByID retrieves a file by ID, scoped to the owner
func (r *FileRepository) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*models.File, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM files
		WHERE id = $1 AND created_by = $2`

	file, err := scanFile(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if isNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w: %w", domain.ErrStore, err)
	}

	return file, nil
}

// ListByFolder retrieves the files directly inside a folder
func (r *FileRepository) ListByFolder(ctx context.Context, folderID, ownerID uuid.UUID) ([]*models.File, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM files
		WHERE folder_id = $1 AND created_by = $2
		ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, folderID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	var files []*models.File
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w: %w", domain.ErrStore, err)
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w: %w", domain.ErrStore, err)
	}

	return files, nil
}

// FindByName retrieves a file by name within a folder, or nil if absent.
// Used for upload conflict detection.
func (r *FileRepository) FindByName(ctx context.Context, folderID, ownerID uuid.UUID, name string) (*models.File, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM files
		WHERE folder_id = $1 AND created_by = $2 AND name = $3`

	file, err := scanFile(r.db.QueryRow(ctx, query, folderID, ownerID, name))
	if err != nil {
		if isNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find file by name: %w: %w", domain.ErrStore, err)
	}

	return file, nil
}

// GetAllByOwner retrieves every file owned by a user (flat list)
func (r *FileRepository) GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.File, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM files
		WHERE created_by = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get all files: %w: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	var files []*models.File
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w: %w", domain.ErrStore, err)
		}
		files = append(files, file)
	}

	return files, rows.Err()
}

// Update rewrites a file's mutable fields
func (r *FileRepository) Update(ctx context.Context, file *models.File) error {
	query := `
		UPDATE files
		SET name = $1, folder_id = $2, path = $3, file_type = $4, size = $5,
			storage_path = $6, public_url = $7, thumbnail = $8, starred = $9,
			metadata = $10, updated_at = now()
		WHERE id = $11 AND created_by = $12`

	result, err := r.db.Exec(ctx, query,
		file.Name,
		file.FolderID,
		file.Path,
		file.FileType,
		file.Size,
		file.StoragePath,
		file.PublicURL,
		file.Thumbnail,
		file.Starred,
		file.Metadata,
		file.ID,
		file.CreatedBy,
	)

	if err != nil {
		return fmt.Errorf("update file: %w: %w", domain.ErrStore, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}

	return nil
}

// UpdateMetadata rewrites only the metadata bag. Used by the enrichment
// merge path so it cannot clobber concurrent field updates.
func (r *FileRepository) UpdateMetadata(ctx context.Context, id, ownerID uuid.UUID, metadata models.FileMetadata) error {
	query := `
		UPDATE files
		SET metadata = $1, updated_at = now()
		WHERE id = $2 AND created_by = $3`

	result, err := r.db.Exec(ctx, query, metadata, id, ownerID)
	if err != nil {
		return fmt.Errorf("update file metadata: %w: %w", domain.ErrStore, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// UpdatePathPrefix replaces oldPrefix with newPrefix on every file whose
// path starts with oldPrefix. Used by rename/move propagation. The match is
// a literal prefix comparison; LIKE would treat % and _ in file names as
// wildcards.
func (r *FileRepository) UpdatePathPrefix(ctx context.Context, ownerID uuid.UUID, oldPrefix, newPrefix string) (int64, error) {
	query := `
		UPDATE files
		SET path = $2 || substring(path from char_length($1) + 1), updated_at = now()
		WHERE created_by = $3 AND left(path, char_length($1)) = $1`

	result, err := r.db.Exec(ctx, query, oldPrefix, newPrefix, ownerID)
	if err != nil {
		return 0, fmt.Errorf("update file path prefix: %w: %w", domain.ErrStore, err)
	}

	return result.RowsAffected(), nil
}

// Delete removes a file record
func (r *FileRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	query := `DELETE FROM files WHERE id = $1 AND created_by = $2`

	result, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete file: %w: %w", domain.ErrStore, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func scanFile(row rowScanner) (*models.File, error) {
	file := &models.File{}
	err := row.Scan(
		&file.ID,
		&file.Name,
		&file.FolderID,
		&file.Path,
		&file.FileType,
		&file.Size,
		&file.StoragePath,
		&file.PublicURL,
		&file.Thumbnail,
		&file.Starred,
		&file.Metadata,
		&file.CreatedBy,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return file, nil
}
