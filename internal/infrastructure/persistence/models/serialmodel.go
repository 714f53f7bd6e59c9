package models

import (
	"time"

	"gorm.io/gorm"

	"serialhub/internal/shared/constants"
)

// SerialModel is the persistence model for serials. The serial number is
// immutable post-issuance and uniquely indexed; lookups always use the full
// serial number, never the lossy client prefix inside it.
type SerialModel struct {
	ID                 uint       `gorm:"primarykey"`
	SID                string     `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: srl_xxx"`
	SerialNumber       string     `gorm:"uniqueIndex;not null;size:64"`
	ClientID           uint       `gorm:"not null;index:idx_serial_client"`
	MaxUsageCount      int        `gorm:"not null;default:1"`
	ExpiresAt          *time.Time `gorm:"index:idx_serial_expiry"`
	IsDemo             bool       `gorm:"not null;default:false"`
	Status             string     `gorm:"not null;size:20;index:idx_serial_status"`
	IntegritySignature string     `gorm:"not null;size:128;comment:salt:hmac entity tamper seal"`
	CodecVersion       string     `gorm:"not null;size:8;default:v1"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (SerialModel) TableName() string {
	return constants.TableSerials
}
