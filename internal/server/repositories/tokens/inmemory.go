package tokens

import (
	"context"
	"sync"
	"time"

	"github.com/ADevelopere/storagegate/internal/common"
	"github.com/ADevelopere/storagegate/internal/server/models"
)

// InMemoryRepository is a mutex-guarded map implementation of Repository.
// The mutex makes Claim the same atomic compare-and-set the SQL version
// gets from its conditional UPDATE.
type InMemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]*models.SignedURLToken
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{tokens: make(map[string]*models.SignedURLToken)}
}

func (r *InMemoryRepository) Create(ctx context.Context, token *models.SignedURLToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token.ID]; ok {
		return common.ErrConflict
	}
	cp := *token
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.tokens[token.ID] = &cp
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.SignedURLToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *token
	return &cp, nil
}

func (r *InMemoryRepository) Claim(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	if !ok || token.Used {
		return common.ErrTokenClaimed
	}
	token.Used = true
	return nil
}

func (r *InMemoryRepository) DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, token := range r.tokens {
		if token.ExpiresAt.Before(now) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}
