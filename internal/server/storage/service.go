// Package storage implements the gateway's core flows: token-authorized
// uploads, metadata-gated downloads, and expired-token cleanup. It speaks
// to the token store and file registry through their repository interfaces
// and to the byte backend through blobstore.Store.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ADevelopere/storagegate/internal/logging"
	"github.com/ADevelopere/storagegate/internal/server/blobstore"
	"github.com/ADevelopere/storagegate/internal/server/repositories/files"
	"github.com/ADevelopere/storagegate/internal/server/repositories/tokens"
)

// Validation errors surfaced to the HTTP layer. Token-state errors
// (expired, claimed, not found) come from internal/common.
var (
	ErrTokenInvalid        = errors.New("invalid upload token")
	ErrContentTypeMismatch = errors.New("content-type mismatch")
	ErrMD5Required         = errors.New("content-md5 header missing or invalid")
	ErrLengthRequired      = errors.New("content-length required")
	ErrSizeExceeded        = errors.New("payload size exceeds declared file size")
	ErrMD5Mismatch         = errors.New("md5 hash mismatch")
)

// Service is the storage gateway core. It is stateless per request; the
// only cross-request invariant is the atomic token claim in the store.
type Service struct {
	tokens tokens.Repository
	files  files.Repository
	blobs  blobstore.Store
	log    logging.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewService(t tokens.Repository, f files.Repository, b blobstore.Store, log logging.Logger) *Service {
	return &Service{
		tokens: t,
		files:  f,
		blobs:  b,
		log:    log.With("component", "storage"),
		now:    time.Now,
	}
}

// removeBytes rolls back a published blob on a failed upload. Rollback
// failures are logged, not returned: the caller's error is the one that
// matters and a leftover blob without a registry row is unreachable via
// the download path anyway.
func (s *Service) removeBytes(ctx context.Context, path string) {
	if err := s.blobs.Delete(ctx, path); err != nil {
		s.log.Error(ctx, "rollback of written bytes failed", "path", path, "error", err)
	}
}
