package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// QualificationInputs are the server-provided figures the qualification
// calculator works from. They can differ from the display balances (the
// server may exclude unconfirmed postings). OriginalLoanRepayment is nil
// when the server does not know the loan's original repayment total.
type QualificationInputs struct {
	SavingsBalance        decimal.Decimal  `json:"savings_balance"`
	LoanBalance           decimal.Decimal  `json:"loan_balance"`
	AdvanceBalance        decimal.Decimal  `json:"advance_balance"`
	HasPendingLoan        bool             `json:"has_pending_loan"`
	OriginalLoanRepayment *decimal.Decimal `json:"original_loan_repayment,omitempty"`
}

// MemberBalance is the server-derived balance snapshot for one member.
// The whole table is a disposable cache: fully replaced on every successful
// refresh, never merged field-by-field.
type MemberBalance struct {
	MemberID    string `gorm:"type:varchar(40);primaryKey"`
	Name        string `gorm:"index"`
	Phone       string `gorm:"type:varchar(20);index"`
	GroupID     int64  `gorm:"index"`
	GroupName   string
	MeetingDate string `gorm:"type:varchar(10)"`

	SavingsBalance     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LoanBalance        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AdvanceLoanBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	UnallocatedFunds   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalOutstanding   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	Inputs *QualificationInputs `gorm:"serializer:json"`

	LastUpdated time.Time
}
