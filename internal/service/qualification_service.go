package service

import (
	"context"
	"fmt"
	"sync"

	"fieldsync/internal/dto"
	"fieldsync/internal/model"
	"fieldsync/internal/repository"

	"github.com/shopspring/decimal"
)

// MaxAdvanceAmount is the fixed ceiling for advance loans (KES).
var MaxAdvanceAmount = decimal.NewFromInt(20000)

// loanMultiplier: long-term eligibility is three times adjusted savings.
var loanMultiplier = decimal.NewFromInt(3)

type QualificationService interface {
	// PendingContributions aggregates a member's unsynced local records.
	PendingContributions(ctx context.Context, memberID string) (*dto.PendingContributions, error)
	// MemberQualification blends the server snapshot with pending local
	// contributions and evaluates both decision trees.
	MemberQualification(ctx context.Context, memberID string) (*dto.MemberQualification, error)
	// BulkQualifications computes every cached member concurrently.
	BulkQualifications(ctx context.Context) (map[string]*dto.MemberQualification, error)
	GroupSummaries(ctx context.Context) ([]dto.GroupQualificationSummary, error)
}

type qualificationService struct {
	balances     repository.MemberBalanceRepository
	cash         repository.CashCollectionRepository
	loanApps     repository.LoanApplicationRepository
	advanceLoans repository.AdvanceLoanRepository
}

func NewQualificationService(
	balances repository.MemberBalanceRepository,
	cash repository.CashCollectionRepository,
	loanApps repository.LoanApplicationRepository,
	advanceLoans repository.AdvanceLoanRepository,
) QualificationService {
	return &qualificationService{
		balances:     balances,
		cash:         cash,
		loanApps:     loanApps,
		advanceLoans: advanceLoans,
	}
}

// ── Pure calculation ──────────────────────────────────────────────────────────

// RoundDownToHundreds floors x to the nearest hundred below it; zero or
// negative amounts round to zero.
func RoundDownToHundreds(x decimal.Decimal) decimal.Decimal {
	if !x.IsPositive() {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	return x.Div(hundred).Floor().Mul(hundred)
}

// LongTermQualification evaluates the long-term loan decision tree.
// Branches are checked in a fixed order; the first disqualifier wins.
func LongTermQualification(in model.QualificationInputs, pending dto.PendingContributions) dto.LoanQualification {
	adjustedSavings := in.SavingsBalance.Add(pending.Savings)
	adjustedLoanBalance := in.LoanBalance.Sub(pending.LoanPayments)
	if adjustedLoanBalance.IsNegative() {
		adjustedLoanBalance = decimal.Zero
	}

	q := dto.LoanQualification{
		AdjustedSavings:     adjustedSavings,
		AdjustedLoanBalance: adjustedLoanBalance,
		MaxAmount:           decimal.Zero,
	}
	if pending.Savings.IsPositive() {
		q.Note = fmt.Sprintf("includes %s in unsynced savings", pending.Savings.StringFixed(2))
	}

	switch {
	case in.HasPendingLoan || pending.HasLoanApplication:
		q.Reason = "has pending/unsynced loan application"
	case adjustedLoanBalance.IsPositive():
		q.Reason = "outstanding loan balance"
		q.Note = "loan balance must be 0 to qualify"
		if pending.LoanPayments.IsPositive() {
			q.Note = fmt.Sprintf("loan balance must be 0 to qualify; %s in unsynced repayments already deducted", pending.LoanPayments.StringFixed(2))
		}
	case !adjustedSavings.IsPositive():
		q.Reason = "insufficient savings"
	default:
		q.Qualified = true
		q.Reason = "qualified"
		q.MaxAmount = RoundDownToHundreds(adjustedSavings.Mul(loanMultiplier))
	}
	return q
}

// AdvanceQualification evaluates the advance loan decision tree.
func AdvanceQualification(in model.QualificationInputs, pending dto.PendingContributions) dto.AdvanceQualification {
	adjustedAdvance := in.AdvanceBalance.Sub(pending.AdvancePayments)
	if adjustedAdvance.IsNegative() {
		adjustedAdvance = decimal.Zero
	}
	adjustedLoanBalance := in.LoanBalance.Sub(pending.LoanPayments)
	if adjustedLoanBalance.IsNegative() {
		adjustedLoanBalance = decimal.Zero
	}

	q := dto.AdvanceQualification{
		AdjustedAdvanceBalance: adjustedAdvance,
		AdjustedLoanBalance:    adjustedLoanBalance,
		MaxAmount:              decimal.Zero,
	}
	if pending.AdvancePayments.IsPositive() {
		q.Note = fmt.Sprintf("%s in unsynced advance repayments already deducted", pending.AdvancePayments.StringFixed(2))
	}

	switch {
	case adjustedAdvance.IsPositive():
		q.Reason = "outstanding advance balance"
	case pending.HasAdvanceLoan:
		q.Reason = "unsynced advance request pending"
	case !adjustedLoanBalance.IsPositive():
		q.Qualified = true
		q.Reason = "no active loan"
		q.MaxAmount = MaxAdvanceAmount
	case in.OriginalLoanRepayment == nil || !in.OriginalLoanRepayment.IsPositive():
		// Deliberate permissive default: with an active loan but no known
		// original repayment, the member is treated as eligible.
		q.Qualified = true
		q.Reason = "active loan, original repayment unknown"
		q.Note = "original repayment data unavailable; treated as eligible"
		q.MaxAmount = MaxAdvanceAmount
	default:
		olr := *in.OriginalLoanRepayment
		amountPaid := olr.Sub(adjustedLoanBalance)
		pct := amountPaid.Div(olr).Mul(decimal.NewFromInt(100)).Round(2)
		q.PercentagePaid = &pct
		half := olr.Div(decimal.NewFromInt(2))
		if adjustedLoanBalance.LessThanOrEqual(half) {
			q.Qualified = true
			q.Reason = "more than half of loan repaid"
			q.MaxAmount = MaxAdvanceAmount
		} else {
			q.Reason = "must pay more than 50% of loan first"
		}
	}
	return q
}

// ── Data-backed evaluation ────────────────────────────────────────────────────

func (s *qualificationService) PendingContributions(ctx context.Context, memberID string) (*dto.PendingContributions, error) {
	p := &dto.PendingContributions{
		Savings:         decimal.Zero,
		LoanPayments:    decimal.Zero,
		AdvancePayments: decimal.Zero,
	}

	collections, err := s.cash.ListUnsyncedByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("pending collections for %s: %w", memberID, err)
	}
	for _, c := range collections {
		for _, a := range c.Allocations {
			switch a.Type {
			case model.AllocSavings:
				p.Savings = p.Savings.Add(a.Amount)
			case model.AllocLoan:
				p.LoanPayments = p.LoanPayments.Add(a.Amount)
			case model.AllocAdvancePayment:
				p.AdvancePayments = p.AdvancePayments.Add(a.Amount)
			}
		}
	}

	if p.HasLoanApplication, err = s.loanApps.HasUnsyncedForMember(ctx, memberID); err != nil {
		return nil, err
	}
	if p.HasAdvanceLoan, err = s.advanceLoans.HasUnsyncedForMember(ctx, memberID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *qualificationService) MemberQualification(ctx context.Context, memberID string) (*dto.MemberQualification, error) {
	balance, err := s.balances.FindByMemberID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("member %s not in balance cache: %w", memberID, err)
	}
	return s.qualify(ctx, balance)
}

func (s *qualificationService) qualify(ctx context.Context, balance *model.MemberBalance) (*dto.MemberQualification, error) {
	pending, err := s.PendingContributions(ctx, balance.MemberID)
	if err != nil {
		return nil, err
	}
	in := qualificationInputs(balance)
	return &dto.MemberQualification{
		MemberID:   balance.MemberID,
		MemberName: balance.Name,
		GroupID:    balance.GroupID,
		LongTerm:   LongTermQualification(in, *pending),
		Advance:    AdvanceQualification(in, *pending),
		Pending:    *pending,
	}, nil
}

// qualificationInputs prefers the server's dedicated inputs and falls back
// to the display balances when the server sent none.
func qualificationInputs(b *model.MemberBalance) model.QualificationInputs {
	if b.Inputs != nil {
		return *b.Inputs
	}
	return model.QualificationInputs{
		SavingsBalance: b.SavingsBalance,
		LoanBalance:    b.LoanBalance,
		AdvanceBalance: b.AdvanceLoanBalance,
	}
}

func (s *qualificationService) BulkQualifications(ctx context.Context) (map[string]*dto.MemberQualification, error) {
	members, err := s.balances.List(ctx)
	if err != nil {
		return nil, err
	}

	// One independent computation per member. Contributions are scoped by
	// member id, so computations never observe each other's buckets.
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		results  = make(map[string]*dto.MemberQualification, len(members))
		firstErr error
	)
	for i := range members {
		wg.Add(1)
		go func(b model.MemberBalance) {
			defer wg.Done()
			q, err := s.qualify(ctx, &b)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			results[b.MemberID] = q
		}(members[i])
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (s *qualificationService) GroupSummaries(ctx context.Context) ([]dto.GroupQualificationSummary, error) {
	members, err := s.balances.List(ctx)
	if err != nil {
		return nil, err
	}
	quals, err := s.BulkQualifications(ctx)
	if err != nil {
		return nil, err
	}

	byGroup := make(map[int64]*dto.GroupQualificationSummary)
	var order []int64
	for _, m := range members {
		g, ok := byGroup[m.GroupID]
		if !ok {
			g = &dto.GroupQualificationSummary{
				GroupID:       m.GroupID,
				GroupName:     m.GroupName,
				TotalCapacity: decimal.Zero,
			}
			byGroup[m.GroupID] = g
			order = append(order, m.GroupID)
		}
		g.Members++
		if q, ok := quals[m.MemberID]; ok {
			if q.LongTerm.Qualified {
				g.LongTermEligible++
				g.TotalCapacity = g.TotalCapacity.Add(q.LongTerm.MaxAmount)
			}
			if q.Advance.Qualified {
				g.AdvanceEligible++
				g.TotalCapacity = g.TotalCapacity.Add(q.Advance.MaxAmount)
			}
		}
	}

	out := make([]dto.GroupQualificationSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byGroup[id])
	}
	return out, nil
}
