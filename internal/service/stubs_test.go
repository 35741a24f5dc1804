package service

import (
	"context"
	"sync"
	"time"

	"fieldsync/internal/dto"
	"fieldsync/internal/model"
	"fieldsync/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── In-memory repository stubs ────────────────────────────────────────────────

type stubCashRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.CashCollection
}

func newStubCashRepo() *stubCashRepo {
	return &stubCashRepo{records: make(map[uuid.UUID]*model.CashCollection)}
}

func (r *stubCashRepo) Create(_ context.Context, c *model.CashCollection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.AllocationID == "" {
		c.AllocationID = "ALLOC-" + uuid.NewString()
	}
	if c.CashAmount.IsPositive() && c.CashReference == nil {
		ref := "CASH-" + uuid.NewString()
		c.CashReference = &ref
	}
	c.SyncStatus = model.SyncPending
	r.records[c.ID] = c
	return nil
}

func (r *stubCashRepo) List(_ context.Context) ([]model.CashCollection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.CashCollection, 0, len(r.records))
	for _, c := range r.records {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCashRepo) ListUnsynced(_ context.Context) ([]model.CashCollection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CashCollection
	for _, c := range r.records {
		if !c.Synced {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCashRepo) ListUnsyncedByMember(_ context.Context, memberID string) ([]model.CashCollection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CashCollection
	for _, c := range r.records {
		if !c.Synced && c.MemberID == memberID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCashRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashCollection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCashRepo) Update(_ context.Context, id uuid.UUID, data *model.CashCollection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.CashAmount = data.CashAmount
	c.MpesaAmount = data.MpesaAmount
	c.TotalAmount = data.TotalAmount
	c.Allocations = data.Allocations
	c.Synced = false
	c.SyncStatus = model.SyncPending
	return nil
}

func (r *stubCashRepo) MarkSynced(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.records[id]; ok {
		c.Synced = true
		c.SyncStatus = model.SyncSynced
		c.SyncError = nil
	}
	return nil
}

func (r *stubCashRepo) MarkFailed(_ context.Context, id uuid.UUID, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.records[id]; ok {
		c.Synced = false
		c.SyncStatus = model.SyncFailed
		c.SyncError = &msg
	}
	return nil
}

func (r *stubCashRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *stubCashRepo) DeleteSynced(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.records {
		if c.Synced {
			delete(r.records, id)
			n++
		}
	}
	return n, nil
}

func (r *stubCashRepo) DeleteStalePending(_ context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.records {
		if !c.Synced && c.CreatedAt.Before(olderThan) {
			delete(r.records, id)
			n++
		}
	}
	return n, nil
}

func (r *stubCashRepo) CountUnsynced(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.records {
		if !c.Synced {
			n++
		}
	}
	return n, nil
}

var _ repository.CashCollectionRepository = (*stubCashRepo)(nil)

type stubLoanAppRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.LoanApplication
}

func newStubLoanAppRepo() *stubLoanAppRepo {
	return &stubLoanAppRepo{records: make(map[uuid.UUID]*model.LoanApplication)}
}

func (r *stubLoanAppRepo) Create(_ context.Context, l *model.LoanApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.SyncStatus = model.SyncPending
	r.records[l.ID] = l
	return nil
}

func (r *stubLoanAppRepo) List(_ context.Context) ([]model.LoanApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.LoanApplication, 0, len(r.records))
	for _, l := range r.records {
		out = append(out, *l)
	}
	return out, nil
}

func (r *stubLoanAppRepo) ListUnsynced(_ context.Context) ([]model.LoanApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.LoanApplication
	for _, l := range r.records {
		if !l.Synced {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *stubLoanAppRepo) HasUnsyncedForMember(_ context.Context, memberID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.records {
		if !l.Synced && l.MemberID == memberID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubLoanAppRepo) FindByID(_ context.Context, id uuid.UUID) (*model.LoanApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return l, nil
}

func (r *stubLoanAppRepo) Update(_ context.Context, id uuid.UUID, data *model.LoanApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	l.LoanAmount = data.LoanAmount
	l.Installments = data.Installments
	l.Guarantors = data.Guarantors
	l.Synced = false
	l.SyncStatus = model.SyncPending
	return nil
}

func (r *stubLoanAppRepo) MarkSynced(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.records[id]; ok {
		l.Synced = true
		l.SyncStatus = model.SyncSynced
	}
	return nil
}

func (r *stubLoanAppRepo) MarkFailed(_ context.Context, id uuid.UUID, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.records[id]; ok {
		l.Synced = false
		l.SyncStatus = model.SyncFailed
		l.SyncError = &msg
	}
	return nil
}

func (r *stubLoanAppRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *stubLoanAppRepo) DeleteSynced(_ context.Context) (int64, error) { return 0, nil }

func (r *stubLoanAppRepo) DeleteStalePending(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *stubLoanAppRepo) CountUnsynced(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.records {
		if !l.Synced {
			n++
		}
	}
	return n, nil
}

var _ repository.LoanApplicationRepository = (*stubLoanAppRepo)(nil)

type stubAdvanceRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.AdvanceLoan
}

func newStubAdvanceRepo() *stubAdvanceRepo {
	return &stubAdvanceRepo{records: make(map[uuid.UUID]*model.AdvanceLoan)}
}

func (r *stubAdvanceRepo) Create(_ context.Context, a *model.AdvanceLoan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.SyncStatus = model.SyncPending
	r.records[a.ID] = a
	return nil
}

func (r *stubAdvanceRepo) List(_ context.Context) ([]model.AdvanceLoan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.AdvanceLoan, 0, len(r.records))
	for _, a := range r.records {
		out = append(out, *a)
	}
	return out, nil
}

func (r *stubAdvanceRepo) ListUnsynced(_ context.Context) ([]model.AdvanceLoan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AdvanceLoan
	for _, a := range r.records {
		if !a.Synced {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubAdvanceRepo) HasUnsyncedForMember(_ context.Context, memberID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.records {
		if !a.Synced && a.MemberID == memberID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAdvanceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.AdvanceLoan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubAdvanceRepo) Update(_ context.Context, id uuid.UUID, data *model.AdvanceLoan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Amount = data.Amount
	a.Reason = data.Reason
	a.Synced = false
	a.SyncStatus = model.SyncPending
	return nil
}

func (r *stubAdvanceRepo) MarkSynced(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.records[id]; ok {
		a.Synced = true
		a.SyncStatus = model.SyncSynced
	}
	return nil
}

func (r *stubAdvanceRepo) MarkFailed(_ context.Context, id uuid.UUID, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.records[id]; ok {
		a.Synced = false
		a.SyncStatus = model.SyncFailed
		a.SyncError = &msg
	}
	return nil
}

func (r *stubAdvanceRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *stubAdvanceRepo) DeleteSynced(_ context.Context) (int64, error) { return 0, nil }

func (r *stubAdvanceRepo) DeleteStalePending(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *stubAdvanceRepo) CountUnsynced(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.records {
		if !a.Synced {
			n++
		}
	}
	return n, nil
}

var _ repository.AdvanceLoanRepository = (*stubAdvanceRepo)(nil)

type stubGroupRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.GroupCollection
}

func newStubGroupRepo() *stubGroupRepo {
	return &stubGroupRepo{records: make(map[uuid.UUID]*model.GroupCollection)}
}

func (r *stubGroupRepo) Create(_ context.Context, g *model.GroupCollection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	g.SyncStatus = model.SyncPending
	r.records[g.ID] = g
	return nil
}

func (r *stubGroupRepo) List(_ context.Context) ([]model.GroupCollection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.GroupCollection, 0, len(r.records))
	for _, g := range r.records {
		out = append(out, *g)
	}
	return out, nil
}

func (r *stubGroupRepo) ListUnsynced(_ context.Context) ([]model.GroupCollection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.GroupCollection
	for _, g := range r.records {
		if !g.Synced {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *stubGroupRepo) FindByID(_ context.Context, id uuid.UUID) (*model.GroupCollection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return g, nil
}

func (r *stubGroupRepo) Update(_ context.Context, id uuid.UUID, data *model.GroupCollection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	g.CashCollected = data.CashCollected
	g.FinesCollected = data.FinesCollected
	g.Synced = false
	g.SyncStatus = model.SyncPending
	return nil
}

func (r *stubGroupRepo) MarkSynced(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.records[id]; ok {
		g.Synced = true
		g.SyncStatus = model.SyncSynced
	}
	return nil
}

func (r *stubGroupRepo) MarkFailed(_ context.Context, id uuid.UUID, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.records[id]; ok {
		g.Synced = false
		g.SyncStatus = model.SyncFailed
		g.SyncError = &msg
	}
	return nil
}

func (r *stubGroupRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *stubGroupRepo) DeleteSynced(_ context.Context) (int64, error) { return 0, nil }

func (r *stubGroupRepo) DeleteStalePending(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *stubGroupRepo) CountUnsynced(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, g := range r.records {
		if !g.Synced {
			n++
		}
	}
	return n, nil
}

var _ repository.GroupCollectionRepository = (*stubGroupRepo)(nil)

type stubNewMemberRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.NewMember
}

func newStubNewMemberRepo() *stubNewMemberRepo {
	return &stubNewMemberRepo{records: make(map[uuid.UUID]*model.NewMember)}
}

func (r *stubNewMemberRepo) Create(_ context.Context, m *model.NewMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.SyncStatus = model.SyncPending
	r.records[m.ID] = m
	return nil
}

func (r *stubNewMemberRepo) List(_ context.Context) ([]model.NewMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.NewMember, 0, len(r.records))
	for _, m := range r.records {
		out = append(out, *m)
	}
	return out, nil
}

func (r *stubNewMemberRepo) ListUnsynced(_ context.Context) ([]model.NewMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.NewMember
	for _, m := range r.records {
		if !m.Synced {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubNewMemberRepo) FindByID(_ context.Context, id uuid.UUID) (*model.NewMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *stubNewMemberRepo) Update(_ context.Context, id uuid.UUID, data *model.NewMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Name = data.Name
	m.Phone = data.Phone
	m.Synced = false
	m.SyncStatus = model.SyncPending
	return nil
}

func (r *stubNewMemberRepo) MarkSynced(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.records[id]; ok {
		m.Synced = true
		m.SyncStatus = model.SyncSynced
	}
	return nil
}

func (r *stubNewMemberRepo) MarkFailed(_ context.Context, id uuid.UUID, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.records[id]; ok {
		m.Synced = false
		m.SyncStatus = model.SyncFailed
		m.SyncError = &msg
	}
	return nil
}

func (r *stubNewMemberRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *stubNewMemberRepo) DeleteSynced(_ context.Context) (int64, error) { return 0, nil }

func (r *stubNewMemberRepo) DeleteStalePending(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *stubNewMemberRepo) CountUnsynced(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.records {
		if !m.Synced {
			n++
		}
	}
	return n, nil
}

var _ repository.NewMemberRepository = (*stubNewMemberRepo)(nil)

type stubDisbursementRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.LoanDisbursement
}

func newStubDisbursementRepo() *stubDisbursementRepo {
	return &stubDisbursementRepo{records: make(map[uuid.UUID]*model.LoanDisbursement)}
}

func (r *stubDisbursementRepo) Create(_ context.Context, d *model.LoanDisbursement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	for _, existing := range r.records {
		if existing.LoanID == d.LoanID {
			return gorm.ErrDuplicatedKey
		}
	}
	d.SyncStatus = model.SyncPending
	r.records[d.ID] = d
	return nil
}

func (r *stubDisbursementRepo) List(_ context.Context) ([]model.LoanDisbursement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.LoanDisbursement, 0, len(r.records))
	for _, d := range r.records {
		out = append(out, *d)
	}
	return out, nil
}

func (r *stubDisbursementRepo) ListUnsynced(_ context.Context) ([]model.LoanDisbursement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.LoanDisbursement
	for _, d := range r.records {
		if !d.Synced {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *stubDisbursementRepo) FindByID(_ context.Context, id uuid.UUID) (*model.LoanDisbursement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (r *stubDisbursementRepo) FindByLoanID(_ context.Context, loanID string) (*model.LoanDisbursement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.records {
		if d.LoanID == loanID {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubDisbursementRepo) Update(_ context.Context, id uuid.UUID, data *model.LoanDisbursement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.CustomDeductions = data.CustomDeductions
	d.Synced = false
	d.SyncStatus = model.SyncPending
	return nil
}

func (r *stubDisbursementRepo) MarkSynced(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.records[id]; ok {
		d.Synced = true
		d.SyncStatus = model.SyncSynced
	}
	return nil
}

func (r *stubDisbursementRepo) MarkFailed(_ context.Context, id uuid.UUID, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.records[id]; ok {
		d.Synced = false
		d.SyncStatus = model.SyncFailed
		d.SyncError = &msg
	}
	return nil
}

func (r *stubDisbursementRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

func (r *stubDisbursementRepo) DeleteSynced(_ context.Context) (int64, error) { return 0, nil }

func (r *stubDisbursementRepo) CountUnsynced(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, d := range r.records {
		if !d.Synced {
			n++
		}
	}
	return n, nil
}

var _ repository.LoanDisbursementRepository = (*stubDisbursementRepo)(nil)

type stubBalanceRepo struct {
	mu       sync.Mutex
	balances map[string]*model.MemberBalance
}

func newStubBalanceRepo() *stubBalanceRepo {
	return &stubBalanceRepo{balances: make(map[string]*model.MemberBalance)}
}

func (r *stubBalanceRepo) ReplaceAll(_ context.Context, balances []model.MemberBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances = make(map[string]*model.MemberBalance, len(balances))
	for i := range balances {
		b := balances[i]
		r.balances[b.MemberID] = &b
	}
	return nil
}

func (r *stubBalanceRepo) Upsert(_ context.Context, b *model.MemberBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[b.MemberID] = b
	return nil
}

func (r *stubBalanceRepo) List(_ context.Context) ([]model.MemberBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.MemberBalance, 0, len(r.balances))
	for _, b := range r.balances {
		out = append(out, *b)
	}
	return out, nil
}

func (r *stubBalanceRepo) Search(_ context.Context, _ string) ([]model.MemberBalance, error) {
	return nil, nil
}

func (r *stubBalanceRepo) FindByMemberID(_ context.Context, memberID string) (*model.MemberBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[memberID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (r *stubBalanceRepo) FindByMemberIDs(_ context.Context, ids []string) ([]model.MemberBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MemberBalance
	for _, id := range ids {
		if b, ok := r.balances[id]; ok {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *stubBalanceRepo) Summary(_ context.Context) (*repository.BalanceSummary, error) {
	return &repository.BalanceSummary{}, nil
}

var _ repository.MemberBalanceRepository = (*stubBalanceRepo)(nil)

type stubApprovedRepo struct {
	mu    sync.Mutex
	loans map[string]*model.ApprovedLoan
}

func newStubApprovedRepo() *stubApprovedRepo {
	return &stubApprovedRepo{loans: make(map[string]*model.ApprovedLoan)}
}

func (r *stubApprovedRepo) ReplaceAll(_ context.Context, loans []model.ApprovedLoan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loans = make(map[string]*model.ApprovedLoan, len(loans))
	for i := range loans {
		l := loans[i]
		r.loans[l.LoanID] = &l
	}
	return nil
}

func (r *stubApprovedRepo) List(_ context.Context) ([]model.ApprovedLoan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ApprovedLoan, 0, len(r.loans))
	for _, l := range r.loans {
		out = append(out, *l)
	}
	return out, nil
}

func (r *stubApprovedRepo) ListUndisbursed(_ context.Context) ([]model.ApprovedLoan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ApprovedLoan
	for _, l := range r.loans {
		if !l.Disbursed {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *stubApprovedRepo) FindByLoanID(_ context.Context, loanID string) (*model.ApprovedLoan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[loanID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return l, nil
}

func (r *stubApprovedRepo) MarkDisbursed(_ context.Context, loanID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[loanID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	l.Disbursed = true
	return nil
}

var _ repository.ApprovedLoanRepository = (*stubApprovedRepo)(nil)

type stubCredsRepo struct {
	mu    sync.Mutex
	creds *model.Credentials
}

func (r *stubCredsRepo) Get(_ context.Context) (*model.Credentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.creds == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.creds, nil
}

func (r *stubCredsRepo) Save(_ context.Context, c *model.Credentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds = c
	return nil
}

func (r *stubCredsRepo) Update(_ context.Context, c *model.Credentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds = c
	return nil
}

func (r *stubCredsRepo) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds = nil
	return nil
}

var _ repository.CredentialsRepository = (*stubCredsRepo)(nil)

// ── Service stubs ─────────────────────────────────────────────────────────────

type stubAuthService struct {
	err   error
	calls int
}

func (s *stubAuthService) Authenticate(_ context.Context) error {
	s.calls++
	return s.err
}

func (s *stubAuthService) SaveCredentials(_ context.Context, _, _ string) error { return nil }

func (s *stubAuthService) VerifyOffline(_ context.Context, _, _ string) error { return nil }

func (s *stubAuthService) Status(_ context.Context) (*dto.AuthStatusResponse, error) {
	return &dto.AuthStatusResponse{}, nil
}

var _ AuthService = (*stubAuthService)(nil)

type stubMemberDataService struct {
	result *dto.MemberDataResult
	err    error
}

func (s *stubMemberDataService) SyncMemberData(_ context.Context) (*dto.MemberDataResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &dto.MemberDataResult{Success: true}, nil
}

var _ MemberDataService = (*stubMemberDataService)(nil)
