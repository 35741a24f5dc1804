package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allocation types — how a portion of a collection is applied.
const (
	AllocSavings        = "savings"
	AllocLoan           = "loan"
	AllocAdvancePayment = "amount_for_advance_payment"
	AllocOther          = "other"
)

// CashCollection is a cash/M-Pesa collection recorded in the field.
// TotalAmount = CashAmount + MpesaAmount.
type CashCollection struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemberID    string    `gorm:"type:varchar(40);index;not null"`
	MemberName  string
	CashAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MpesaAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// CashReference is set once when CashAmount > 0 and acts as the
	// idempotency key for the remote cash transaction. Never regenerated.
	CashReference *string `gorm:"type:varchar(48)"`
	// AllocationID is assigned at creation and never regenerated, even
	// across edits. The allocation endpoint dedupes on it.
	AllocationID string `gorm:"type:varchar(48);not null"`
	Remarks      *string
	Allocations  []Allocation `gorm:"constraint:OnDelete:CASCADE"`

	Synced     bool   `gorm:"index;not null;default:false"`
	SyncStatus string `gorm:"type:varchar(10);not null;default:'pending'"`
	SyncError  *string
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

// Allocation is one purpose-tagged slice of a collection. The sum of a
// record's allocation amounts should equal TotalAmount (enforced at the
// API boundary, not here).
type Allocation struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CashCollectionID uuid.UUID       `gorm:"type:uuid;index;not null"`
	MemberID         string          `gorm:"type:varchar(40);not null"`
	Type             string          `gorm:"type:varchar(30);not null"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason           *string
}
