package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GroupCollection records cash and fines collected at a group meeting.
type GroupCollection struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupID        int64     `gorm:"index;not null"`
	GroupName      string
	CashCollected  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	FinesCollected decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	Synced     bool   `gorm:"index;not null;default:false"`
	SyncStatus string `gorm:"type:varchar(10);not null;default:'pending'"`
	SyncError  *string
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}
