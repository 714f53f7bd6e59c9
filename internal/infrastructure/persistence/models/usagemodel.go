package models

import (
	"time"

	"gorm.io/datatypes"

	"serialhub/internal/shared/constants"
)

// UsageModel is the persistence model for usage records. Usage rows are
// append-only except for status cascades driven by revoke and expiry.
type UsageModel struct {
	ID         uint   `gorm:"primarykey"`
	UUID       string `gorm:"uniqueIndex;not null;size:36"`
	SerialID   uint   `gorm:"not null;index:idx_usage_serial,priority:1"`
	DeviceID   string `gorm:"not null;size:128"`
	IPAddress  string `gorm:"size:45"`
	DeviceInfo datatypes.JSON
	Status     string `gorm:"not null;size:20;index:idx_usage_serial,priority:2"`
	CreatedAt  time.Time
	ExpiresAt  *time.Time
}

// TableName specifies the table name for GORM
func (UsageModel) TableName() string {
	return constants.TableUsages
}
