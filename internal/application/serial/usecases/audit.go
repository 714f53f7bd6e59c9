package usecases

import (
	"context"
	"time"

	"serialhub/internal/domain/serial"
	"serialhub/internal/shared/logger"
)

const auditEntitySerial = "serial"

// serialImage captures the audit-relevant fields of a serial for the
// before/after images of an audit record.
func serialImage(s *serial.Serial) map[string]interface{} {
	if s == nil {
		return nil
	}
	var expiresAt *time.Time
	if s.ExpiresAt() != nil {
		t := *s.ExpiresAt()
		expiresAt = &t
	}
	return map[string]interface{}{
		"sid":             s.SID(),
		"serial_number":   s.SerialNumber(),
		"client_id":       s.ClientID(),
		"max_usage_count": s.MaxUsageCount(),
		"expires_at":      expiresAt,
		"is_demo":         s.IsDemo(),
		"status":          s.Status().String(),
	}
}

// writeAudit persists an audit record. The trail is best-effort relative to
// the mutation itself: a failed write is logged, never propagated.
func writeAudit(
	ctx context.Context,
	auditRepo serial.AuditRepository,
	log logger.Interface,
	entityID uint,
	action string,
	before, after interface{},
	performedBy string,
) {
	record, err := serial.NewAuditRecord(auditEntitySerial, entityID, action, before, after, performedBy)
	if err != nil {
		log.Errorw("failed to build audit record", "action", action, "entity_id", entityID, "error", err)
		return
	}
	if err := auditRepo.Create(ctx, record); err != nil {
		log.Errorw("failed to persist audit record", "action", action, "entity_id", entityID, "error", err)
	}
}
