package files

import (
	"context"
	"sync"
	"time"

	"github.com/ADevelopere/storagegate/internal/common"
	"github.com/ADevelopere/storagegate/internal/server/models"
)

// InMemoryRepository is a mutex-guarded map implementation of Repository.
type InMemoryRepository struct {
	mu    sync.Mutex
	files map[string]*models.StorageFile
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{files: make(map[string]*models.StorageFile)}
}

func (r *InMemoryRepository) Create(ctx context.Context, file *models.StorageFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[file.Path]; ok {
		return common.ErrConflict
	}
	cp := *file
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.files[file.Path] = &cp
	return nil
}

func (r *InMemoryRepository) GetByPath(ctx context.Context, path string) (*models.StorageFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	file, ok := r.files[path]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *file
	return &cp, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, path)
	return nil
}
