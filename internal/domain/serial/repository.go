package serial

import (
	"context"
	"time"
)

// SerialRepository is the store boundary for serials. Implementations must
// make each call atomic; read methods return the current row state so the
// caller can run tamper comparison against it.
type SerialRepository interface {
	Create(ctx context.Context, serial *Serial) error
	GetByID(ctx context.Context, id uint) (*Serial, error)
	GetBySerialNumber(ctx context.Context, serialNumber string) (*Serial, error)
	Update(ctx context.Context, serial *Serial) error

	// FindExpiring returns active non-demo serials whose expiration falls
	// within the window, in bounded batches for the warning sweep.
	FindExpiring(ctx context.Context, window time.Duration, limit int) ([]*Serial, error)
	// FindExpired returns active serials past their expiration date, in
	// bounded batches for the enforcement sweep.
	FindExpired(ctx context.Context, limit int) ([]*Serial, error)

	// SoftDeleteByClientID cascades a client deactivation. Sweeps never
	// soft-delete; this is the only deletion path.
	SoftDeleteByClientID(ctx context.Context, clientID uint) (int64, error)

	CountByStatus(ctx context.Context, status string) (int64, error)
}

// UsageRepository is the store boundary for usage records.
type UsageRepository interface {
	Create(ctx context.Context, usage *Usage) error
	CountActiveBySerialID(ctx context.Context, serialID uint) (int64, error)
	ListBySerialID(ctx context.Context, serialID uint) ([]*Usage, error)
	RevokeActiveBySerialID(ctx context.Context, serialID uint) (int64, error)
	ExpireActiveBySerialID(ctx context.Context, serialID uint) (int64, error)
	// CountByStatus returns usage counts for a serial grouped by status.
	CountByStatus(ctx context.Context, serialID uint) (map[string]int64, error)
}

// AuditRepository persists the append-only audit trail.
type AuditRepository interface {
	Create(ctx context.Context, record *AuditRecord) error
	ListByEntity(ctx context.Context, entityType string, entityID uint) ([]*AuditRecord, error)
}
