package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const warnKeyPrefix = "serialhub:warned:"

// WarnMarkerStore tracks which serials have already received an expiration
// warning. Markers carry a TTL equal to the warning window, so a serial is
// warned at most once per window even across sweep runs and instances.
type WarnMarkerStore struct {
	client *redis.Client
}

func NewWarnMarkerStore(client *redis.Client) *WarnMarkerStore {
	return &WarnMarkerStore{client: client}
}

func (s *WarnMarkerStore) key(serialSID string) string {
	return warnKeyPrefix + serialSID
}

// TryAcquire atomically checks and sets the warned marker via SetNX.
// Returns true if the caller should emit the warning.
func (s *WarnMarkerStore) TryAcquire(ctx context.Context, serialSID string, ttl time.Duration) (bool, error) {
	acquired, err := s.client.SetNX(ctx, s.key(serialSID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire warn marker: %w", err)
	}
	return acquired, nil
}

// Clear removes the warned marker, e.g. after a renew extends the
// expiration past the warning window.
func (s *WarnMarkerStore) Clear(ctx context.Context, serialSID string) error {
	if err := s.client.Del(ctx, s.key(serialSID)).Err(); err != nil {
		return fmt.Errorf("failed to clear warn marker: %w", err)
	}
	return nil
}
