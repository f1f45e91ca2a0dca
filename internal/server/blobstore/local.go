package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ADevelopere/storagegate/internal/common"
)

// Local stores objects as files under a root directory. Writes are staged
// to a temporary file in the target directory and renamed into place, so a
// failed or in-flight upload is never readable.
type Local struct {
	root string
}

// NewLocal creates the root directory if needed and returns a Local store.
func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &Local{root: abs}, nil
}

// resolve maps a logical path to an absolute filesystem path and verifies
// it stays inside the root after normalization.
func (l *Local) resolve(p string) (string, error) {
	cleaned, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	full := filepath.Join(l.root, filepath.FromSlash(cleaned))
	abs, err := filepath.Abs(full)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", p, err)
	}
	if !strings.HasPrefix(abs, l.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes storage root: %w", p, common.ErrInvalidPath)
	}
	return abs, nil
}

func (l *Local) Put(ctx context.Context, p string, r io.Reader) (written int64, err error) {
	full, err := l.resolve(p)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".staged-*")
	if err != nil {
		return 0, fmt.Errorf("creating staging file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	written, err = io.Copy(tmp, r)
	if err != nil {
		return 0, fmt.Errorf("writing object: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing staging file: %w", err)
	}
	if err = os.Rename(tmp.Name(), full); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("publishing object: %w", err)
	}
	return written, nil
}

func (l *Local) Get(ctx context.Context, p string) (io.ReadCloser, error) {
	full, err := l.resolve(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("opening object: %w", err)
	}
	return f, nil
}

func (l *Local) OpenRange(ctx context.Context, p string, off, length int64) (io.ReadCloser, error) {
	full, err := l.resolve(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("opening object: %w", err)
	}
	if _, err := f.Seek(off, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("seeking to %d: %w", off, err)
	}
	return &rangeReader{r: io.LimitReader(f, length), c: f}, nil
}

func (l *Local) Stat(ctx context.Context, p string) (*ObjectInfo, error) {
	full, err := l.resolve(p)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}
	return &ObjectInfo{Size: info.Size(), LastModified: info.ModTime()}, nil
}

func (l *Local) Delete(ctx context.Context, p string) error {
	full, err := l.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return common.ErrNotFound
		}
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// rangeReader bounds reads to the requested span while closing the
// underlying file.
type rangeReader struct {
	r io.Reader
	c io.Closer
}

func (rr *rangeReader) Read(p []byte) (int, error) { return rr.r.Read(p) }
func (rr *rangeReader) Close() error               { return rr.c.Close() }
