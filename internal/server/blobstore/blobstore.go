// Package blobstore abstracts the byte backend behind the gateway. Handlers
// never touch filesystem or S3 APIs directly; they speak this interface and
// pass logical paths that have been through CleanPath.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/ADevelopere/storagegate/internal/common"
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Size         int64
	LastModified time.Time
}

// Store is the byte backend. Implementations must keep partially written
// objects invisible: a Put that fails leaves nothing readable at the path.
type Store interface {
	// Put streams r to the object at path and returns the byte count
	// written. The write is staged; the object becomes visible only on
	// success.
	Put(ctx context.Context, path string, r io.Reader) (int64, error)

	// Get opens the full object. Returns common.ErrNotFound when absent.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// OpenRange opens length bytes starting at off.
	OpenRange(ctx context.Context, path string, off, length int64) (io.ReadCloser, error)

	// Stat reports object metadata, or common.ErrNotFound.
	Stat(ctx context.Context, path string) (*ObjectInfo, error)

	// Delete removes the object. Returns common.ErrNotFound when absent.
	Delete(ctx context.Context, path string) error
}

// CleanPath normalizes a logical object path and rejects anything that
// could escape the storage root: absolute paths, traversal segments,
// backslashes and NUL bytes. The returned path is slash-separated and
// clean, safe to hand to any backend.
func CleanPath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("empty path: %w", common.ErrInvalidPath)
	}
	if strings.ContainsAny(p, "\\\x00") {
		return "", fmt.Errorf("path %q: %w", p, common.ErrInvalidPath)
	}
	if strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("absolute path %q: %w", p, common.ErrInvalidPath)
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("path traversal in %q: %w", p, common.ErrInvalidPath)
	}
	return cleaned, nil
}
