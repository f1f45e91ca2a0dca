package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/ADevelopere/storagegate/internal/server/migrations"
	"github.com/ADevelopere/storagegate/internal/server/repositories/files"
	"github.com/ADevelopere/storagegate/internal/server/repositories/tokens"
)

// PostgresRepositoryManager backs the repositories with a pgx connection
// pool and runs the embedded goose migrations.
type PostgresRepositoryManager struct {
	db     *sql.DB
	tokens tokens.Repository
	files  files.Repository
}

// NewPostgresRepositoryManager opens the pool and constructs repositories.
func NewPostgresRepositoryManager(dsn string) (*PostgresRepositoryManager, error) {
	pool, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	return &PostgresRepositoryManager{
		db:     pool,
		tokens: tokens.NewPostgresRepository(pool),
		files:  files.NewPostgresRepository(pool),
	}, nil
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Tokens() tokens.Repository {
	return m.tokens
}

func (m *PostgresRepositoryManager) Files() files.Repository {
	return m.files
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
