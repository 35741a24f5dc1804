package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanApplication is a long-term loan request captured in the field.
type LoanApplication struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemberID     string    `gorm:"type:varchar(40);index;not null"`
	MemberName   string
	LoanAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Purpose      *string
	TenureMonths *int
	InterestRate *decimal.Decimal `gorm:"type:decimal(5,2)"`
	Installments int              `gorm:"not null"`
	// Guarantors holds member-id strings; stored as a JSON column.
	Guarantors []string `gorm:"serializer:json"`

	Synced     bool   `gorm:"index;not null;default:false"`
	SyncStatus string `gorm:"type:varchar(10);not null;default:'pending'"`
	SyncError  *string
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}
