package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ADevelopere/storagegate/internal/common"
	"github.com/ADevelopere/storagegate/internal/dbx"
	"github.com/ADevelopere/storagegate/internal/server/models"
)

const uniqueViolation = "23505"

// PostgresRepository implements the file registry over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, file *models.StorageFile) error {
	query := `
		INSERT INTO storage_files (path, is_protected, content_type, size)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, file.Path, file.IsProtected, file.ContentType, file.Size)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("file %s: %w", file.Path, common.ErrConflict)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByPath(ctx context.Context, path string) (*models.StorageFile, error) {
	query := `
		SELECT path, is_protected, content_type, size, created_at
		FROM storage_files
		WHERE path = $1
	`
	file := &models.StorageFile{}
	err := r.db.QueryRowContext(ctx, query, path).Scan(
		&file.Path, &file.IsProtected, &file.ContentType, &file.Size, &file.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, path string) error {
	query := `
		DELETE FROM storage_files
		WHERE path = $1
	`
	if _, err := r.db.ExecContext(ctx, query, path); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
