package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ADevelopere/storagegate/internal/common"
	"github.com/ADevelopere/storagegate/internal/dbx"
	"github.com/ADevelopere/storagegate/internal/server/models"
)

const uniqueViolation = "23505"

// PostgresRepository implements the token store over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a token row. A duplicate id maps to common.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, token *models.SignedURLToken) error {
	query := `
		INSERT INTO signed_url_tokens (id, file_path, content_type, file_size, content_md5, is_protected, used, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.FilePath, token.ContentType, token.FileSize,
		token.ContentMD5, token.IsProtected, token.Used, token.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("token %s: %w", token.ID, common.ErrConflict)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns the token row for id, or common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.SignedURLToken, error) {
	query := `
		SELECT id, file_path, content_type, file_size, content_md5, is_protected, used, expires_at, created_at
		FROM signed_url_tokens
		WHERE id = $1
	`
	token := &models.SignedURLToken{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&token.ID, &token.FilePath, &token.ContentType, &token.FileSize,
		&token.ContentMD5, &token.IsProtected, &token.Used, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

// Claim performs the conditional update that consumes the token. The WHERE
// clause carries the atomicity: only one caller can match used = false, so
// the rows-affected count decides the winner.
func (r *PostgresRepository) Claim(ctx context.Context, id string) error {
	query := `
		UPDATE signed_url_tokens
		SET used = true
		WHERE id = $1 AND used = false
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrTokenClaimed
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// DeleteExpiredBefore purges expired tokens in a single statement and
// returns the deleted-row count.
func (r *PostgresRepository) DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM signed_url_tokens
		WHERE expires_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
