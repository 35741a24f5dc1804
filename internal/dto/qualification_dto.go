package dto

import "github.com/shopspring/decimal"

// PendingContributions aggregates a member's unsynced local records into
// the buckets the qualification calculator blends with server balances.
type PendingContributions struct {
	Savings            decimal.Decimal `json:"savings"`
	LoanPayments       decimal.Decimal `json:"loan_payments"`
	AdvancePayments    decimal.Decimal `json:"advance_payments"`
	HasLoanApplication bool            `json:"has_loan_application"`
	HasAdvanceLoan     bool            `json:"has_advance_loan"`
}

// HasAny reports whether any pending amount or record exists.
func (p PendingContributions) HasAny() bool {
	return p.Savings.IsPositive() || p.LoanPayments.IsPositive() ||
		p.AdvancePayments.IsPositive() || p.HasLoanApplication || p.HasAdvanceLoan
}

// LoanQualification is the long-term loan verdict with its breakdown.
type LoanQualification struct {
	Qualified bool            `json:"qualified"`
	MaxAmount decimal.Decimal `json:"max_amount"`
	Reason    string          `json:"reason"`
	// Inputs used by the decision tree, post-blending.
	AdjustedSavings     decimal.Decimal `json:"adjusted_savings"`
	AdjustedLoanBalance decimal.Decimal `json:"adjusted_loan_balance"`
	// Note explains pending-contribution blending when it changed an input.
	Note string `json:"note,omitempty"`
}

// AdvanceQualification is the advance loan verdict with its breakdown.
type AdvanceQualification struct {
	Qualified bool            `json:"qualified"`
	MaxAmount decimal.Decimal `json:"max_amount"`
	Reason    string          `json:"reason"`

	AdjustedAdvanceBalance decimal.Decimal  `json:"adjusted_advance_balance"`
	AdjustedLoanBalance    decimal.Decimal  `json:"adjusted_loan_balance"`
	PercentagePaid         *decimal.Decimal `json:"percentage_paid,omitempty"`
	Note                   string           `json:"note,omitempty"`
}

// MemberQualification pairs both verdicts for one member.
type MemberQualification struct {
	MemberID   string               `json:"member_id"`
	MemberName string               `json:"member_name"`
	GroupID    int64                `json:"group_id"`
	LongTerm   LoanQualification    `json:"longterm_loan"`
	Advance    AdvanceQualification `json:"advance_loan"`
	Pending    PendingContributions `json:"pending_contributions"`
}

// GroupQualificationSummary rolls member verdicts up per group.
type GroupQualificationSummary struct {
	GroupID          int64           `json:"group_id"`
	GroupName        string          `json:"group_name"`
	Members          int             `json:"members"`
	LongTermEligible int             `json:"longterm_eligible"`
	AdvanceEligible  int             `json:"advance_eligible"`
	TotalCapacity    decimal.Decimal `json:"total_capacity"`
}
