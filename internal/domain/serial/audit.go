package serial

import (
	"encoding/json"
	"fmt"
	"time"
)

// Audit actions recorded by the serial manager.
const (
	AuditActionCreate      = "create"
	AuditActionRevoke      = "revoke"
	AuditActionRenew       = "renew"
	AuditActionExpire      = "expire"
	AuditActionRecordUsage = "record_usage"
	AuditActionCascade     = "client_cascade"
)

// AuditRecord is an append-only before/after image of a mutation. Every
// mutation through the serial manager produces exactly one record.
type AuditRecord struct {
	id          uint
	entityType  string
	entityID    uint
	action      string
	before      json.RawMessage
	after       json.RawMessage
	performedBy string
	performedAt time.Time
}

// NewAuditRecord captures a mutation. Before and after are marshalled
// immediately so later entity changes cannot leak into the record.
func NewAuditRecord(entityType string, entityID uint, action string, before, after interface{}, performedBy string) (*AuditRecord, error) {
	if entityType == "" || action == "" {
		return nil, fmt.Errorf("entity type and action are required")
	}

	beforeJSON, err := marshalImage(before)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal before image: %w", err)
	}
	afterJSON, err := marshalImage(after)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal after image: %w", err)
	}

	return &AuditRecord{
		entityType:  entityType,
		entityID:    entityID,
		action:      action,
		before:      beforeJSON,
		after:       afterJSON,
		performedBy: performedBy,
		performedAt: time.Now(),
	}, nil
}

// ReconstructAuditRecord rebuilds an audit record from persistence.
func ReconstructAuditRecord(
	recordID uint,
	entityType string,
	entityID uint,
	action string,
	before, after json.RawMessage,
	performedBy string,
	performedAt time.Time,
) *AuditRecord {
	return &AuditRecord{
		id:          recordID,
		entityType:  entityType,
		entityID:    entityID,
		action:      action,
		before:      before,
		after:       after,
		performedBy: performedBy,
		performedAt: performedAt,
	}
}

func marshalImage(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func (a *AuditRecord) ID() uint                { return a.id }
func (a *AuditRecord) EntityType() string      { return a.entityType }
func (a *AuditRecord) EntityID() uint          { return a.entityID }
func (a *AuditRecord) Action() string          { return a.action }
func (a *AuditRecord) Before() json.RawMessage { return a.before }
func (a *AuditRecord) After() json.RawMessage  { return a.after }
func (a *AuditRecord) PerformedBy() string     { return a.performedBy }
func (a *AuditRecord) PerformedAt() time.Time  { return a.performedAt }

// SetID assigns the database identity after the initial insert.
func (a *AuditRecord) SetID(recordID uint) {
	a.id = recordID
}
