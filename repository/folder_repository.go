package repository

import (
	"context"
	"fmt"

	"docudrive-backend/domain"
	"docudrive-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const folderColumns = "id, name, parent_id, path, starred, created_by, created_at, updated_at"

// FolderRepository handles database operations for folders. Every query is
// scoped by the owner id passed by the caller; tenant isolation is this
// layer's one invariant.
type FolderRepository struct {
	db *pgxpool.Pool
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(db *pgxpool.Pool) *FolderRepository {
	return &FolderRepository{db: db}
}

// Create inserts a new folder record
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := `
		INSERT INTO folders (id, name, parent_id, path, starred, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		folder.ID,
		folder.Name,
		folder.ParentID,
		folder.Path,
		folder.Starred,
		folder.CreatedBy,
	).Scan(&folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create folder: %w: %w", domain.ErrStore, err)
	}

	return nil
}

// GetByID retrieves a folder by ID, scoped to the owner
func (r *FolderRepository) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*models.Folder, error) {
	query := `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE id = $1 AND created_by = $2`

	folder, err := scanFolder(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if isNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w: %w", domain.ErrStore, err)
	}

	return folder, nil
}

// GetRoot retrieves the owner's root folder, or ErrNotFound if none exists
func (r *FolderRepository) GetRoot(ctx context.Context, ownerID uuid.UUID) (*models.Folder, error) {
	query := `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE created_by = $1 AND parent_id IS NULL AND name = $2`

	folder, err := scanFolder(r.db.QueryRow(ctx, query, ownerID, models.RootFolderName))
	if err != nil {
		if isNoRowsError(err) {
			return nil, fmt.Errorf("root folder: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get root folder: %w: %w", domain.ErrStore, err)
	}

	return folder, nil
}

// ListByParent retrieves the direct child folders of a parent
func (r *FolderRepository) ListByParent(ctx context.Context, parentID, ownerID uuid.UUID) ([]*models.Folder, error) {
	query := `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE parent_id = $1 AND created_by = $2
		ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, parentID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	var folders []*models.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w: %w", domain.ErrStore, err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w: %w", domain.ErrStore, err)
	}

	return folders, nil
}

// GetAllByOwner retrieves every folder owned by a user (flat list)
func (r *FolderRepository) GetAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Folder, error) {
	query := `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE created_by = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get all folders: %w: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	var folders []*models.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w: %w", domain.ErrStore, err)
		}
		folders = append(folders, folder)
	}

	return folders, rows.Err()
}

// Update rewrites a folder's mutable fields (name, parent, path, starred)
func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := `
		UPDATE folders
		SET name = $1, parent_id = $2, path = $3, starred = $4, updated_at = now()
		WHERE id = $5 AND created_by = $6`

	result, err := r.db.Exec(ctx, query,
		folder.Name,
		folder.ParentID,
		folder.Path,
		folder.Starred,
		folder.ID,
		folder.CreatedBy,
	)

	if err != nil {
		return fmt.Errorf("update folder: %w: %w", domain.ErrStore, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// UpdatePathPrefix replaces oldPrefix with newPrefix on every folder whose
// path starts with oldPrefix. Used by rename/move propagation. The match is
// a literal prefix comparison; LIKE would treat % and _ in folder names as
// wildcards.
func (r *FolderRepository) UpdatePathPrefix(ctx context.Context, ownerID uuid.UUID, oldPrefix, newPrefix string) (int64, error) {
	query := `
		UPDATE folders
		SET path = $2 || substring(path from char_length($1) + 1), updated_at = now()
		WHERE created_by = $3 AND left(path, char_length($1)) = $1`

	result, err := r.db.Exec(ctx, query, oldPrefix, newPrefix, ownerID)
	if err != nil {
		return 0, fmt.Errorf("update folder path prefix: %w: %w", domain.ErrStore, err)
	}

	return result.RowsAffected(), nil
}

// ListOwners enumerates every user owning at least one folder. Used by the
// path reconciler.
func (r *FolderRepository) ListOwners(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT created_by FROM folders`)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	var owners []uuid.UUID
	for rows.Next() {
		var owner uuid.UUID
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan owner: %w: %w", domain.ErrStore, err)
		}
		owners = append(owners, owner)
	}

	return owners, rows.Err()
}

// Delete removes a folder record
func (r *FolderRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	query := `DELETE FROM folders WHERE id = $1 AND created_by = $2`

	result, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("folder %s still has children: %w", id, domain.ErrInvalidOperation)
		}
		return fmt.Errorf("delete folder: %w: %w", domain.ErrStore, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFolder(row rowScanner) (*models.Folder, error) {
	folder := &models.Folder{}
	err := row.Scan(
		&folder.ID,
		&folder.Name,
		&folder.ParentID,
		&folder.Path,
		&folder.Starred,
		&folder.CreatedBy,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return folder, nil
}
