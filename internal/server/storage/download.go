package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ADevelopere/storagegate/internal/common"
	"github.com/ADevelopere/storagegate/internal/server/blobstore"
	"github.com/ADevelopere/storagegate/internal/server/models"
)

// Resolve maps a requested download path to its registry record. A path
// that fails normalization cannot have a row, so it reports not-found
// rather than a dedicated traversal error — downloads leak nothing about
// paths outside the registry.
func (s *Service) Resolve(ctx context.Context, path string) (*models.StorageFile, error) {
	cleaned, err := blobstore.CleanPath(path)
	if err != nil {
		return nil, common.ErrNotFound
	}
	file, err := s.files.GetByPath(ctx, cleaned)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("loading file record: %w", err)
	}
	return file, nil
}

// Stat reports the backend's view of the stored object.
func (s *Service) Stat(ctx context.Context, path string) (*blobstore.ObjectInfo, error) {
	return s.blobs.Stat(ctx, path)
}

// Open streams the full object.
func (s *Service) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return s.blobs.Get(ctx, path)
}

// OpenRange streams length bytes starting at off.
func (s *Service) OpenRange(ctx context.Context, path string, off, length int64) (io.ReadCloser, error) {
	return s.blobs.OpenRange(ctx, path, off, length)
}
