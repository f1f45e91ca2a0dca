// Package tokens provides the persistence layer for signed-URL upload
// tokens.
package tokens

import (
	"context"
	"time"

	"github.com/ADevelopere/storagegate/internal/server/models"
)

// Repository is the capability token store. Claim is the single
// authoritative consumption event and must be atomic under concurrent
// callers: exactly one of them observes the false-to-true transition.
type Repository interface {
	// Create inserts a new token. Returns common.ErrConflict when the id
	// already exists.
	Create(ctx context.Context, token *models.SignedURLToken) error

	// GetByID returns the token or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.SignedURLToken, error)

	// Claim flips used from false to true. Returns common.ErrTokenClaimed
	// when the token was already used, so concurrent uploads racing on the
	// same id resolve to exactly one winner.
	Claim(ctx context.Context, id string) error

	// DeleteExpiredBefore removes every token whose expiry precedes now,
	// used or not, and reports how many rows went away.
	DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error)
}
