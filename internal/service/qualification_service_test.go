package service

import (
	"context"
	"strconv"
	"testing"

	"fieldsync/internal/dto"
	"fieldsync/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func noPending() dto.PendingContributions {
	return dto.PendingContributions{
		Savings:         decimal.Zero,
		LoanPayments:    decimal.Zero,
		AdvancePayments: decimal.Zero,
	}
}

func TestRoundDownToHundreds(t *testing.T) {
	cases := []struct {
		in   int64
		want int64
	}{
		{1250, 1200},
		{1200, 1200},
		{99, 0},
		{100, 100},
		{0, 0},
		{-350, 0},
		{20049, 20000},
	}
	for _, c := range cases {
		got := RoundDownToHundreds(d(c.in))
		assert.True(t, got.Equal(d(c.want)), "round(%d) = %s, want %d", c.in, got, c.want)
	}
}

func TestLongTermQualification_CleanMember(t *testing.T) {
	in := model.QualificationInputs{
		SavingsBalance: d(1000),
		LoanBalance:    decimal.Zero,
		AdvanceBalance: decimal.Zero,
	}
	q := LongTermQualification(in, noPending())
	require.True(t, q.Qualified)
	assert.True(t, q.MaxAmount.Equal(d(3000)), "max = %s", q.MaxAmount)
}

func TestLongTermQualification_PendingSavingsRaiseCeiling(t *testing.T) {
	in := model.QualificationInputs{
		SavingsBalance: d(1000),
		LoanBalance:    decimal.Zero,
	}
	pending := noPending()
	pending.Savings = d(500)

	q := LongTermQualification(in, pending)
	require.True(t, q.Qualified)
	// (1000 + 500) * 3 = 4500
	assert.True(t, q.MaxAmount.Equal(d(4500)), "max = %s", q.MaxAmount)
	assert.True(t, q.AdjustedSavings.Equal(d(1500)))
	assert.Contains(t, q.Note, "unsynced savings")
}

func TestLongTermQualification_OutstandingLoanBlocks(t *testing.T) {
	in := model.QualificationInputs{
		SavingsBalance: d(5000),
		LoanBalance:    d(200),
	}
	q := LongTermQualification(in, noPending())
	assert.False(t, q.Qualified)
	assert.Equal(t, "outstanding loan balance", q.Reason)
	assert.True(t, q.MaxAmount.IsZero())
}

func TestLongTermQualification_PendingRepaymentsClearBalance(t *testing.T) {
	in := model.QualificationInputs{
		SavingsBalance: d(2000),
		LoanBalance:    d(300),
	}
	pending := noPending()
	pending.LoanPayments = d(300)

	q := LongTermQualification(in, pending)
	require.True(t, q.Qualified)
	assert.True(t, q.AdjustedLoanBalance.IsZero())
	assert.True(t, q.MaxAmount.Equal(d(6000)))
}

func TestLongTermQualification_PendingLoanApplicationBlocks(t *testing.T) {
	in := model.QualificationInputs{SavingsBalance: d(2000)}
	pending := noPending()
	pending.HasLoanApplication = true

	q := LongTermQualification(in, pending)
	assert.False(t, q.Qualified)
	assert.Equal(t, "has pending/unsynced loan application", q.Reason)
}

func TestLongTermQualification_ServerPendingLoanFlagBlocks(t *testing.T) {
	in := model.QualificationInputs{SavingsBalance: d(2000), HasPendingLoan: true}
	q := LongTermQualification(in, noPending())
	assert.False(t, q.Qualified)
}

func TestLongTermQualification_ZeroSavingsBlocks(t *testing.T) {
	q := LongTermQualification(model.QualificationInputs{}, noPending())
	assert.False(t, q.Qualified)
	assert.Equal(t, "insufficient savings", q.Reason)
}

func TestLongTermQualification_MonotoneInSavings(t *testing.T) {
	pending := noPending()
	prev := decimal.Zero
	for _, savings := range []int64{100, 550, 1000, 3333, 10000} {
		q := LongTermQualification(model.QualificationInputs{SavingsBalance: d(savings)}, pending)
		require.True(t, q.Qualified)
		assert.True(t, q.MaxAmount.GreaterThanOrEqual(prev),
			"ceiling dropped from %s at savings %d", prev, savings)
		prev = q.MaxAmount
	}
}

func TestAdvanceQualification_OutstandingAdvanceBlocks(t *testing.T) {
	in := model.QualificationInputs{AdvanceBalance: d(700)}
	q := AdvanceQualification(in, noPending())
	assert.False(t, q.Qualified)
	assert.Equal(t, "outstanding advance balance", q.Reason)
}

func TestAdvanceQualification_PendingAdvancePaymentsClearBalance(t *testing.T) {
	in := model.QualificationInputs{AdvanceBalance: d(700)}
	pending := noPending()
	pending.AdvancePayments = d(700)

	q := AdvanceQualification(in, pending)
	require.True(t, q.Qualified)
	assert.True(t, q.MaxAmount.Equal(MaxAdvanceAmount))
}

func TestAdvanceQualification_UnsyncedAdvanceRequestBlocks(t *testing.T) {
	pending := noPending()
	pending.HasAdvanceLoan = true
	q := AdvanceQualification(model.QualificationInputs{}, pending)
	assert.False(t, q.Qualified)
}

func TestAdvanceQualification_NoActiveLoan(t *testing.T) {
	q := AdvanceQualification(model.QualificationInputs{}, noPending())
	require.True(t, q.Qualified)
	assert.Equal(t, "no active loan", q.Reason)
	assert.True(t, q.MaxAmount.Equal(d(20000)))
}

func TestAdvanceQualification_HalfRepaidQualifies(t *testing.T) {
	olr := d(20000)
	in := model.QualificationInputs{
		LoanBalance:           d(8000),
		OriginalLoanRepayment: &olr,
	}
	q := AdvanceQualification(in, noPending())
	require.True(t, q.Qualified)
	assert.True(t, q.MaxAmount.Equal(d(20000)))
	require.NotNil(t, q.PercentagePaid)
	assert.True(t, q.PercentagePaid.Equal(d(60)), "pct = %s", q.PercentagePaid)
}

func TestAdvanceQualification_UnderHalfRepaidBlocks(t *testing.T) {
	olr := d(20000)
	in := model.QualificationInputs{
		LoanBalance:           d(12000),
		OriginalLoanRepayment: &olr,
	}
	q := AdvanceQualification(in, noPending())
	assert.False(t, q.Qualified)
	assert.Equal(t, "must pay more than 50% of loan first", q.Reason)
}

func TestAdvanceQualification_MonotoneInLoanPayments(t *testing.T) {
	olr := d(20000)
	in := model.QualificationInputs{
		LoanBalance:           d(15000),
		OriginalLoanRepayment: &olr,
	}

	// Paying down the loan can only help: once a sweep step qualifies,
	// every larger repayment amount must too.
	qualifiedAt := int64(-1)
	for _, paid := range []int64{0, 2000, 4999, 5000, 8000, 15000, 20000} {
		pending := noPending()
		pending.LoanPayments = d(paid)
		q := AdvanceQualification(in, pending)
		if qualifiedAt >= 0 {
			assert.True(t, q.Qualified,
				"qualified at %d in repayments but not at %d", qualifiedAt, paid)
		}
		if q.Qualified && qualifiedAt < 0 {
			qualifiedAt = paid
		}
	}
	assert.Equal(t, int64(5000), qualifiedAt, "should qualify once the balance reaches half of 20000")
}

func TestAdvanceQualification_UnknownRepaymentIsPermissive(t *testing.T) {
	in := model.QualificationInputs{LoanBalance: d(5000)}
	q := AdvanceQualification(in, noPending())
	require.True(t, q.Qualified)
	assert.Contains(t, q.Note, "treated as eligible")
}

// ── Data-backed paths ─────────────────────────────────────────────────────────

func newQualFixture() (*stubBalanceRepo, *stubCashRepo, *stubLoanAppRepo, *stubAdvanceRepo, QualificationService) {
	balances := newStubBalanceRepo()
	cash := newStubCashRepo()
	loanApps := newStubLoanAppRepo()
	advances := newStubAdvanceRepo()
	svc := NewQualificationService(balances, cash, loanApps, advances)
	return balances, cash, loanApps, advances, svc
}

func TestPendingContributions_AggregatesByType(t *testing.T) {
	_, cash, loanApps, _, svc := newQualFixture()
	ctx := context.Background()

	reason := "stationery"
	require.NoError(t, cash.Create(ctx, &model.CashCollection{
		MemberID:    "123",
		CashAmount:  d(900),
		TotalAmount: d(900),
		Allocations: []model.Allocation{
			{MemberID: "123", Type: model.AllocSavings, Amount: d(400)},
			{MemberID: "123", Type: model.AllocLoan, Amount: d(300)},
			{MemberID: "123", Type: model.AllocAdvancePayment, Amount: d(150)},
			{MemberID: "123", Type: model.AllocOther, Amount: d(50), Reason: &reason},
		},
	}))
	// Another member's record must not leak in.
	require.NoError(t, cash.Create(ctx, &model.CashCollection{
		MemberID:    "456",
		CashAmount:  d(1000),
		TotalAmount: d(1000),
		Allocations: []model.Allocation{
			{MemberID: "456", Type: model.AllocSavings, Amount: d(1000)},
		},
	}))
	require.NoError(t, loanApps.Create(ctx, &model.LoanApplication{MemberID: "123", LoanAmount: d(5000), Installments: 10}))

	p, err := svc.PendingContributions(ctx, "123")
	require.NoError(t, err)
	assert.True(t, p.Savings.Equal(d(400)))
	assert.True(t, p.LoanPayments.Equal(d(300)))
	assert.True(t, p.AdvancePayments.Equal(d(150)))
	assert.True(t, p.HasLoanApplication)
	assert.False(t, p.HasAdvanceLoan)
	assert.True(t, p.HasAny())
}

func TestPendingContributions_SyncedRecordsExcluded(t *testing.T) {
	_, cash, _, _, svc := newQualFixture()
	ctx := context.Background()

	c := &model.CashCollection{
		MemberID:    "123",
		CashAmount:  d(500),
		TotalAmount: d(500),
		Allocations: []model.Allocation{{MemberID: "123", Type: model.AllocSavings, Amount: d(500)}},
	}
	require.NoError(t, cash.Create(ctx, c))
	require.NoError(t, cash.MarkSynced(ctx, c.ID))

	p, err := svc.PendingContributions(ctx, "123")
	require.NoError(t, err)
	assert.False(t, p.HasAny())
}

func TestMemberQualification_PrefersServerInputs(t *testing.T) {
	balances, _, _, _, svc := newQualFixture()
	ctx := context.Background()

	// Display balance says 9000 but the server's qualification inputs say
	// 1000; the calculator must use the latter.
	require.NoError(t, balances.Upsert(ctx, &model.MemberBalance{
		MemberID:       "77",
		Name:           "Wanjiku",
		GroupID:        4,
		SavingsBalance: d(9000),
		Inputs:         &model.QualificationInputs{SavingsBalance: d(1000)},
	}))

	q, err := svc.MemberQualification(ctx, "77")
	require.NoError(t, err)
	require.True(t, q.LongTerm.Qualified)
	assert.True(t, q.LongTerm.MaxAmount.Equal(d(3000)), "max = %s", q.LongTerm.MaxAmount)
}

func TestMemberQualification_FallsBackToDisplayBalances(t *testing.T) {
	balances, _, _, _, svc := newQualFixture()
	ctx := context.Background()

	require.NoError(t, balances.Upsert(ctx, &model.MemberBalance{
		MemberID:       "88",
		SavingsBalance: d(2000),
	}))

	q, err := svc.MemberQualification(ctx, "88")
	require.NoError(t, err)
	require.True(t, q.LongTerm.Qualified)
	assert.True(t, q.LongTerm.MaxAmount.Equal(d(6000)))
}

func TestMemberQualification_UnknownMember(t *testing.T) {
	_, _, _, _, svc := newQualFixture()
	_, err := svc.MemberQualification(context.Background(), "nope")
	assert.Error(t, err)
}

func TestBulkQualifications_AllMembers(t *testing.T) {
	balances, cash, _, _, svc := newQualFixture()
	ctx := context.Background()

	for i := 1; i <= 20; i++ {
		require.NoError(t, balances.Upsert(ctx, &model.MemberBalance{
			MemberID:       strconv.Itoa(i),
			GroupID:        int64(i % 3),
			SavingsBalance: d(int64(i) * 100),
		}))
	}
	require.NoError(t, cash.Create(ctx, &model.CashCollection{
		MemberID:    "1",
		CashAmount:  d(200),
		TotalAmount: d(200),
		Allocations: []model.Allocation{{MemberID: "1", Type: model.AllocSavings, Amount: d(200)}},
	}))

	results, err := svc.BulkQualifications(ctx)
	require.NoError(t, err)
	require.Len(t, results, 20)
	// Member 1: (100 + 200 pending) * 3 = 900
	assert.True(t, results["1"].LongTerm.MaxAmount.Equal(d(900)))
	// Member 2: 200 * 3 = 600, untouched by member 1's pending record.
	assert.True(t, results["2"].LongTerm.MaxAmount.Equal(d(600)))
}

func TestGroupSummaries_RollUp(t *testing.T) {
	balances, _, _, _, svc := newQualFixture()
	ctx := context.Background()

	require.NoError(t, balances.Upsert(ctx, &model.MemberBalance{
		MemberID: "1", GroupID: 10, GroupName: "Umoja", SavingsBalance: d(1000),
	}))
	require.NoError(t, balances.Upsert(ctx, &model.MemberBalance{
		MemberID: "2", GroupID: 10, GroupName: "Umoja", SavingsBalance: decimal.Zero,
	}))

	summaries, err := svc.GroupSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	g := summaries[0]
	assert.Equal(t, int64(10), g.GroupID)
	assert.Equal(t, 2, g.Members)
	assert.Equal(t, 1, g.LongTermEligible)
	// Both members have no loans, so both get the advance ceiling.
	assert.Equal(t, 2, g.AdvanceEligible)
}
