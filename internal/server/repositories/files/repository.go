// Package files provides the persistence layer for the StorageFile
// registry. A path with no row here is not downloadable, whatever the blob
// backend may hold.
package files

import (
	"context"

	"github.com/ADevelopere/storagegate/internal/server/models"
)

type Repository interface {
	// Create inserts a file record. Returns common.ErrConflict when the
	// path is already registered.
	Create(ctx context.Context, file *models.StorageFile) error

	// GetByPath returns the record or common.ErrNotFound.
	GetByPath(ctx context.Context, path string) (*models.StorageFile, error)

	// Delete removes the record for path.
	Delete(ctx context.Context, path string) error
}
