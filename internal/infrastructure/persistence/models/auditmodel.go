package models

import (
	"time"

	"gorm.io/datatypes"

	"serialhub/internal/shared/constants"
)

// AuditModel is the persistence model for the append-only audit trail.
// Rows are never updated or deleted.
type AuditModel struct {
	ID          uint   `gorm:"primarykey"`
	EntityType  string `gorm:"not null;size:32;index:idx_audit_entity,priority:1"`
	EntityID    uint   `gorm:"not null;index:idx_audit_entity,priority:2"`
	Action      string `gorm:"not null;size:32"`
	Before      datatypes.JSON
	After       datatypes.JSON
	PerformedBy string `gorm:"size:128"`
	PerformedAt time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for GORM
func (AuditModel) TableName() string {
	return constants.TableAuditRecords
}
