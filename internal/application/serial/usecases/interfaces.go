package usecases

import (
	"context"
	"time"
)

// WarnMarkers tracks which serials already received an expiration warning
// within the current warning window.
type WarnMarkers interface {
	TryAcquire(ctx context.Context, serialSID string, ttl time.Duration) (bool, error)
	Clear(ctx context.Context, serialSID string) error
}

// EventPublisher is the lifecycle event sink. Publication is best-effort:
// use cases log publish failures but never fail a mutation over them.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload interface{}) error
}
