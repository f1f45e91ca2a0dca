package storage

import (
	"context"
	"fmt"
)

// CleanupExpired purges every token whose expiry has passed, used or not,
// in one set-oriented delete. Running it twice back to back returns zero
// the second time.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpiredBefore(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("deleting expired tokens: %w", err)
	}
	if n > 0 {
		s.log.Info(ctx, "expired tokens purged", "count", n)
	}
	return n, nil
}
