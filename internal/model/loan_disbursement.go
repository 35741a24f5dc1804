package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomDeduction is an officer-entered deduction applied at disbursement.
type CustomDeduction struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// LoanDisbursement releases an approved loan net of deductions.
// At most one disbursement exists per loan — LoanID is unique, and a
// duplicate creation attempt means the disbursement was already applied.
type LoanDisbursement struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// LoanID is the externally-formatted id, e.g. "LN0039".
	LoanID     string `gorm:"type:varchar(20);uniqueIndex;not null"`
	DatabaseID int64  `gorm:"not null"`

	IncludeProcessingFee    bool
	IncludeAdvocateFee      bool
	IncludeAdvanceDeduction bool
	CustomDeductions        []CustomDeduction `gorm:"serializer:json"`

	Synced     bool   `gorm:"index;not null;default:false"`
	SyncStatus string `gorm:"type:varchar(10);not null;default:'pending'"`
	SyncError  *string
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}
