package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdvanceLoan is a short-term advance request, distinct from the long-term
// savings-multiple loan.
type AdvanceLoan struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemberID      string    `gorm:"type:varchar(40);index;not null"`
	MemberName    string
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason        *string
	RepaymentDate *time.Time

	Synced     bool   `gorm:"index;not null;default:false"`
	SyncStatus string `gorm:"type:varchar(10);not null;default:'pending'"`
	SyncError  *string
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}
