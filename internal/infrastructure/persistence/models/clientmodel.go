package models

import (
	"time"

	"gorm.io/gorm"

	"serialhub/internal/shared/constants"
)

// ClientModel is the persistence model for clients.
// This is the anti-corruption layer between domain and database.
type ClientModel struct {
	ID           uint   `gorm:"primarykey"`
	SID          string `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: cli_xxx"`
	Name         string `gorm:"not null;size:255"`
	ClientNumber string `gorm:"uniqueIndex;not null;size:64"`
	Active       bool   `gorm:"not null;default:true;index:idx_client_active"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (ClientModel) TableName() string {
	return constants.TableClients
}
