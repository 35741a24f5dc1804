package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovedLoan caches today's approved loans for groups with meetings today,
// fetched during member-data sync and consumed by the disbursement flow.
// Replaced wholesale on each successful fetch.
type ApprovedLoan struct {
	// LoanID is the externally-formatted id, e.g. "LN0039".
	LoanID     string `gorm:"type:varchar(20);primaryKey"`
	DatabaseID int64  `gorm:"not null"`
	MemberID   string `gorm:"type:varchar(40);index;not null"`
	MemberName string
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	GroupID    int64           `gorm:"index"`
	GroupName  string
	// Disbursed is flipped locally once the disbursement sync lands.
	Disbursed bool `gorm:"not null;default:false"`

	FetchedAt time.Time
}
