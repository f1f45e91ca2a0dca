// Package db wires the concrete repositories to a database connection.
package db

import (
	"context"
	"database/sql"

	"github.com/ADevelopere/storagegate/internal/server/repositories/files"
	"github.com/ADevelopere/storagegate/internal/server/repositories/tokens"
)

// RepositoryManager owns the connection and hands out repositories bound
// to it.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Conn() *sql.DB
	Tokens() tokens.Repository
	Files() files.Repository
	Close() error
}
