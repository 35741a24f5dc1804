package dto

import (
	"github.com/shopspring/decimal"
)

// AllocationRequest is one purpose-tagged slice of a collection.
type AllocationRequest struct {
	Type   string          `json:"type" validate:"required,oneof=savings loan amount_for_advance_payment other"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Reason *string         `json:"reason"`
}

// CashCollectionRequest creates or edits a cash collection. The handler
// enforces total = cash + mpesa and sum(allocations) = total before it
// reaches the store.
type CashCollectionRequest struct {
	MemberID    string              `json:"member_id" validate:"required"`
	MemberName  string              `json:"member_name" validate:"required"`
	CashAmount  decimal.Decimal     `json:"cash_amount"`
	MpesaAmount decimal.Decimal     `json:"mpesa_amount"`
	TotalAmount decimal.Decimal     `json:"total_amount" validate:"required"`
	Remarks     *string             `json:"remarks"`
	Allocations []AllocationRequest `json:"allocations" validate:"dive"`
}

type LoanApplicationRequest struct {
	MemberID     string           `json:"member_id" validate:"required"`
	MemberName   string           `json:"member_name" validate:"required"`
	LoanAmount   decimal.Decimal  `json:"loan_amount" validate:"required"`
	Purpose      *string          `json:"purpose"`
	TenureMonths *int             `json:"tenure_months"`
	InterestRate *decimal.Decimal `json:"interest_rate"`
	Installments int              `json:"installments" validate:"required,min=1"`
	Guarantors   []string         `json:"guarantors"`
}

type CustomDeductionRequest struct {
	Description string          `json:"description" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
}

type LoanDisbursementRequest struct {
	LoanID                  string                   `json:"loan_id" validate:"required"`
	DatabaseID              int64                    `json:"database_id" validate:"required"`
	IncludeProcessingFee    bool                     `json:"include_processing_fee"`
	IncludeAdvocateFee      bool                     `json:"include_advocate_fee"`
	IncludeAdvanceDeduction bool                     `json:"include_advance_deduction"`
	CustomDeductions        []CustomDeductionRequest `json:"custom_deductions" validate:"dive"`
}

type AdvanceLoanRequest struct {
	MemberID      string          `json:"member_id" validate:"required"`
	MemberName    string          `json:"member_name" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Reason        *string         `json:"reason"`
	RepaymentDate *string         `json:"repayment_date"` // YYYY-MM-DD
}

type GroupCollectionRequest struct {
	GroupID        int64           `json:"group_id" validate:"required"`
	GroupName      string          `json:"group_name" validate:"required"`
	CashCollected  decimal.Decimal `json:"cash_collected"`
	FinesCollected decimal.Decimal `json:"fines_collected"`
}

type NewMemberRequest struct {
	Name       string  `json:"name" validate:"required"`
	Phone      string  `json:"phone" validate:"required"`
	GroupID    int64   `json:"group" validate:"required"`
	Location   string  `json:"location" validate:"required"`
	IDNumber   string  `json:"id_number" validate:"required"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Occupation *string `json:"occupation"`
	Notes      *string `json:"notes"`
	// InitialCollection optionally records an opening collection in the
	// same call.
	InitialCollection *CashCollectionRequest `json:"initial_collection"`
}

// PendingCounts summarizes unsynced records per kind for the UI badge.
type PendingCounts struct {
	CashCollections   int64 `json:"cash_collections"`
	LoanApplications  int64 `json:"loan_applications"`
	LoanDisbursements int64 `json:"loan_disbursements"`
	AdvanceLoans      int64 `json:"advance_loans"`
	GroupCollections  int64 `json:"group_collections"`
	NewMembers        int64 `json:"new_members"`
	Total             int64 `json:"total"`
}
