package repository

import (
	"context"
	"fmt"

	"docudrive-backend/domain"
	"docudrive-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RevisionRepository handles database operations for file revisions.
// Revisions are insert-only; the only delete is the cascade with the file.
type RevisionRepository struct {
	db *pgxpool.Pool
}

// NewRevisionRepository creates a new revision repository
func NewRevisionRepository(db *pgxpool.Pool) *RevisionRepository {
	return &RevisionRepository{db: db}
}

// Create inserts a new revision record
func (r *RevisionRepository) Create(ctx context.Context, rev *models.FileRevision) error {
	query := `
		INSERT INTO file_revisions (id, file_id, version, changes, thumbnail, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING created_at`

	err := r.db.QueryRow(
		ctx, query,
		rev.ID,
		rev.FileID,
		rev.Version,
		rev.Changes,
		rev.Thumbnail,
		rev.CreatedBy,
	).Scan(&rev.CreatedAt)

	if err != nil {
		return fmt.Errorf("create revision: %w: %w", domain.ErrStore, err)
	}

	return nil
}

// ListByFile retrieves a file's revisions ordered oldest first
func (r *RevisionRepository) ListByFile(ctx context.Context, fileID, ownerID uuid.UUID) ([]models.FileRevision, error) {
	query := `
		SELECT id, file_id, version, changes, thumbnail, created_by, created_at
		FROM file_revisions
		WHERE file_id = $1 AND created_by = $2
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, fileID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	var revisions []models.FileRevision
	for rows.Next() {
		var rev models.FileRevision
		err := rows.Scan(
			&rev.ID,
			&rev.FileID,
			&rev.Version,
			&rev.Changes,
			&rev.Thumbnail,
			&rev.CreatedBy,
			&rev.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w: %w", domain.ErrStore, err)
		}
		revisions = append(revisions, rev)
	}

	return revisions, rows.Err()
}

// LatestByFile retrieves a file's most recent revision, or nil if the file
// has none yet
func (r *RevisionRepository) LatestByFile(ctx context.Context, fileID, ownerID uuid.UUID) (*models.FileRevision, error) {
	query := `
		SELECT id, file_id, version, changes, thumbnail, created_by, created_at
		FROM file_revisions
		WHERE file_id = $1 AND created_by = $2
		ORDER BY created_at DESC
		LIMIT 1`

	rev := &models.FileRevision{}
	err := r.db.QueryRow(ctx, query, fileID, ownerID).Scan(
		&rev.ID,
		&rev.FileID,
		&rev.Version,
		&rev.Changes,
		&rev.Thumbnail,
		&rev.CreatedBy,
		&rev.CreatedAt,
	)

	if err != nil {
		if isNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest revision: %w: %w", domain.ErrStore, err)
	}

	return rev, nil
}

// DeleteByFile removes every revision of a file (cascade with file delete)
func (r *RevisionRepository) DeleteByFile(ctx context.Context, fileID, ownerID uuid.UUID) error {
	query := `DELETE FROM file_revisions WHERE file_id = $1 AND created_by = $2`

	_, err := r.db.Exec(ctx, query, fileID, ownerID)
	if err != nil {
		return fmt.Errorf("delete revisions: %w: %w", domain.ErrStore, err)
	}

	return nil
}
