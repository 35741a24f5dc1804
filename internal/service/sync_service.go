package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"fieldsync/internal/dto"
	"fieldsync/internal/infra"
	"fieldsync/internal/model"
	"fieldsync/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	// ErrAuthFailed aborts the whole pass; no records are touched.
	ErrAuthFailed = errors.New("Authentication failed - cannot sync")
	// ErrOffline aborts the whole pass; no records are touched.
	ErrOffline = errors.New("Offline - cannot sync")
	// ErrSyncInProgress rejects a concurrent trigger; a pass cannot be
	// cancelled once started, only awaited.
	ErrSyncInProgress = errors.New("sync already in progress")
)

// duplicateMarkers is the documented heuristic for retried submissions:
// a rejection carrying any of these substrings means the record already
// landed server-side, so the retry is reclassified as success. Matched
// case-insensitively against the server's verbatim message.
var duplicateMarkers = []string{
	"unique constraint",
	"already exists",
	"duplicate",
	"already synced",
}

type SyncService interface {
	// SyncAll runs one full pass: authenticate, probe connectivity,
	// refresh member data, then push every unsynced record kind in order.
	SyncAll(ctx context.Context) (*dto.SyncResult, error)
	// Online reports remote reachability via the unauthenticated probe.
	Online(ctx context.Context) bool
	PendingCounts(ctx context.Context) (*dto.PendingCounts, error)
}

type syncService struct {
	api        *infra.APIClient
	auth       AuthService
	memberData MemberDataService

	cash          repository.CashCollectionRepository
	loanApps      repository.LoanApplicationRepository
	disbursements repository.LoanDisbursementRepository
	advanceLoans  repository.AdvanceLoanRepository
	groups        repository.GroupCollectionRepository
	newMembers    repository.NewMemberRepository
	approvedLoans repository.ApprovedLoanRepository

	officerName string
	batchSize   int

	mu sync.Mutex // single-flight guard for SyncAll
}

func NewSyncService(
	api *infra.APIClient,
	auth AuthService,
	memberData MemberDataService,
	cash repository.CashCollectionRepository,
	loanApps repository.LoanApplicationRepository,
	disbursements repository.LoanDisbursementRepository,
	advanceLoans repository.AdvanceLoanRepository,
	groups repository.GroupCollectionRepository,
	newMembers repository.NewMemberRepository,
	approvedLoans repository.ApprovedLoanRepository,
	officerName string,
	batchSize int,
) SyncService {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &syncService{
		api:           api,
		auth:          auth,
		memberData:    memberData,
		cash:          cash,
		loanApps:      loanApps,
		disbursements: disbursements,
		advanceLoans:  advanceLoans,
		groups:        groups,
		newMembers:    newMembers,
		approvedLoans: approvedLoans,
		officerName:   officerName,
		batchSize:     batchSize,
	}
}

// ── Orchestration ─────────────────────────────────────────────────────────────

func (s *syncService) SyncAll(ctx context.Context) (*dto.SyncResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.mu.Unlock()

	if err := s.auth.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAuthFailed, err)
	}
	if err := s.api.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOffline, err)
	}

	result := &dto.SyncResult{Errors: []string{}}

	// Member data first: later steps depend on fresh member identity and
	// the approved-loan cache. Its failure does not abort record sync.
	md, err := s.memberData.SyncMemberData(ctx)
	if err != nil {
		result.MemberData = dto.MemberDataResult{Success: false, Error: err.Error()}
		result.Errors = append(result.Errors, "member data: "+err.Error())
		log.Error().Err(err).Msg("sync: member data refresh failed")
	} else {
		result.MemberData = *md
	}

	// Snapshot every unsynced record before pushing anything.
	pendingMembers, err := s.newMembers.ListUnsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unsynced members: %w", err)
	}
	pendingDisbursements, err := s.disbursements.ListUnsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unsynced disbursements: %w", err)
	}
	pendingCash, err := s.cash.ListUnsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unsynced cash collections: %w", err)
	}
	pendingLoans, err := s.loanApps.ListUnsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unsynced loan applications: %w", err)
	}
	pendingAdvances, err := s.advanceLoans.ListUnsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unsynced advance loans: %w", err)
	}
	pendingGroups, err := s.groups.ListUnsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unsynced group collections: %w", err)
	}

	// New members go first: other kinds may reference their locally-issued
	// id-numbers before the server assigns canonical ids.
	s.syncNewMembers(ctx, pendingMembers, result)
	s.syncDisbursements(ctx, pendingDisbursements, result)
	s.syncCashCollections(ctx, pendingCash, result)
	s.syncLoanApplications(ctx, pendingLoans, result)
	s.syncAdvanceLoans(ctx, pendingAdvances, result)
	s.syncGroupCollections(ctx, pendingGroups, result)

	result.Success = result.MemberData.Success && result.TotalFailed() == 0
	log.Info().
		Bool("success", result.Success).
		Int("synced", result.TotalSynced()).
		Int("failed", result.TotalFailed()).
		Msg("sync: pass complete")
	return result, nil
}

func (s *syncService) Online(ctx context.Context) bool {
	return s.api.Ping(ctx) == nil
}

func (s *syncService) PendingCounts(ctx context.Context) (*dto.PendingCounts, error) {
	var (
		counts dto.PendingCounts
		err    error
	)
	if counts.CashCollections, err = s.cash.CountUnsynced(ctx); err != nil {
		return nil, err
	}
	if counts.LoanApplications, err = s.loanApps.CountUnsynced(ctx); err != nil {
		return nil, err
	}
	if counts.LoanDisbursements, err = s.disbursements.CountUnsynced(ctx); err != nil {
		return nil, err
	}
	if counts.AdvanceLoans, err = s.advanceLoans.CountUnsynced(ctx); err != nil {
		return nil, err
	}
	if counts.GroupCollections, err = s.groups.CountUnsynced(ctx); err != nil {
		return nil, err
	}
	if counts.NewMembers, err = s.newMembers.CountUnsynced(ctx); err != nil {
		return nil, err
	}
	counts.Total = counts.CashCollections + counts.LoanApplications +
		counts.LoanDisbursements + counts.AdvanceLoans +
		counts.GroupCollections + counts.NewMembers
	return &counts, nil
}

// ── Cash collections: batched, duplicate-safe two-call protocol ───────────────

func (s *syncService) syncCashCollections(ctx context.Context, records []model.CashCollection, result *dto.SyncResult) {
	for start := 0; start < len(records); start += s.batchSize {
		end := start + s.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		// Full parallelism within a batch; the next batch never starts
		// before this one fully settles.
		outcomes := make([]error, len(batch))
		var wg sync.WaitGroup
		for i := range batch {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i] = s.pushCashCollection(ctx, &batch[i])
			}(i)
		}
		wg.Wait()

		for i := range batch {
			s.settle(ctx, outcomes[i],
				func() error { return s.cash.MarkSynced(ctx, batch[i].ID) },
				func(msg string) error { return s.cash.MarkFailed(ctx, batch[i].ID, msg) },
				&result.CashCollections, result,
				fmt.Sprintf("cash collection for %s", batch[i].MemberName))
		}
	}
}

// pushCashCollection runs the two remote calls for one record. The cash
// transaction tolerates duplicates (the pre-generated reference already
// landed); the allocation call never does, since cash-recorded-but-
// unallocated would corrupt downstream balances.
func (s *syncService) pushCashCollection(ctx context.Context, c *model.CashCollection) error {
	if c.CashAmount.IsPositive() {
		ref := ""
		if c.CashReference != nil {
			ref = *c.CashReference
		}
		remarks := ""
		if c.Remarks != nil {
			remarks = *c.Remarks
		}
		err := s.api.CollectCash(ctx, infra.CashPayload{
			MemberID:      FormatMemberParam(c.MemberID),
			OfficerName:   s.officerName,
			CashAmount:    c.CashAmount,
			MpesaAmount:   c.MpesaAmount,
			TotalAmount:   c.TotalAmount,
			CashReference: ref,
			AllocationID:  c.AllocationID,
			Remarks:       remarks,
			Timestamp:     c.CreatedAt.Format(time.RFC3339),
		})
		if err != nil && !isDuplicate(err) {
			return fmt.Errorf("cash transaction: %w", err)
		}
	}
	// A zero-cash record skips the transaction but may still carry
	// M-Pesa-attributed allocations.

	if len(c.Allocations) > 0 {
		if err := s.api.AllocateFunds(ctx, FormatMemberParam(c.MemberID), buildAllocationPayload(c)); err != nil {
			// %v, not %w: an allocation failure is fatal for the record
			// whatever the server said, so it must never reach the
			// duplicate-reclassification path.
			return fmt.Errorf("allocation: %v", err)
		}
	}
	return nil
}

// buildAllocationPayload aggregates a record's allocations by type into the
// single payload the member-scoped endpoint expects.
func buildAllocationPayload(c *model.CashCollection) infra.AllocationPayload {
	p := infra.AllocationPayload{
		Savings:                 decimal.Zero,
		LoanRepayment:           decimal.Zero,
		RegistrationFee:         decimal.Zero,
		AmountForAdvancePayment: decimal.Zero,
		Other:                   decimal.Zero,
		Confirmed:               true,
		Timestamp:               c.CreatedAt.Format(time.RFC3339),
		AllocationID:            c.AllocationID,
		OtherItems:              []infra.AllocationItem{},
	}
	for _, a := range c.Allocations {
		switch a.Type {
		case model.AllocSavings:
			p.Savings = p.Savings.Add(a.Amount)
		case model.AllocLoan:
			p.LoanRepayment = p.LoanRepayment.Add(a.Amount)
		case model.AllocAdvancePayment:
			p.AmountForAdvancePayment = p.AmountForAdvancePayment.Add(a.Amount)
		case model.AllocOther:
			p.Other = p.Other.Add(a.Amount)
			item := infra.AllocationItem{Amount: a.Amount}
			if a.Reason != nil {
				item.Description = *a.Reason
				if p.OtherDescription == "" {
					p.OtherDescription = *a.Reason
				}
			}
			p.OtherItems = append(p.OtherItems, item)
		}
	}
	return p
}

// ── Loan disbursements: preview then commit ───────────────────────────────────

func (s *syncService) syncDisbursements(ctx context.Context, records []model.LoanDisbursement, result *dto.SyncResult) {
	for i := range records {
		d := &records[i]
		err := s.pushDisbursement(ctx, d)
		s.settle(ctx, err,
			func() error { return s.disbursements.MarkSynced(ctx, d.ID) },
			func(msg string) error { return s.disbursements.MarkFailed(ctx, d.ID, msg) },
			&result.LoanDisbursements, result,
			fmt.Sprintf("disbursement %s", d.LoanID))
	}
}

func (s *syncService) pushDisbursement(ctx context.Context, d *model.LoanDisbursement) error {
	loanID, err := NumericLoanID(d.LoanID)
	if err != nil {
		return err
	}

	payload := infra.DisbursePayload{
		IncludeProcessingFee:    d.IncludeProcessingFee,
		IncludeAdvocateFee:      d.IncludeAdvocateFee,
		IncludeAdvanceDeduction: d.IncludeAdvanceDeduction,
		CustomDeductions:        d.CustomDeductions,
	}

	// Never commit without a successful preview.
	preview, err := s.api.PreviewDisbursement(ctx, loanID, payload)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if !preview.Success {
		msg := preview.Error
		if msg == "" {
			msg = "preview rejected"
		}
		return fmt.Errorf("preview: %s", msg)
	}

	if err := s.api.Disburse(ctx, loanID, payload); err != nil && !isAlreadyDisbursed(err) {
		return fmt.Errorf("disburse: %w", err)
	}

	// Local flag update is best effort in every success path.
	if err := s.approvedLoans.MarkDisbursed(ctx, d.LoanID); err != nil {
		log.Warn().Err(err).Str("loan_id", d.LoanID).Msg("sync: could not flag local loan as disbursed")
	}
	return nil
}

// NumericLoanID extracts the numeric id from an externally-formatted loan
// id: "LN0039" becomes 39.
func NumericLoanID(loanID string) (int64, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, loanID)
	if digits == "" {
		return 0, fmt.Errorf("loan id %q carries no numeric part", loanID)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("loan id %q: %w", loanID, err)
	}
	return n, nil
}

// ── Generic per-kind push ─────────────────────────────────────────────────────

func (s *syncService) syncNewMembers(ctx context.Context, records []model.NewMember, result *dto.SyncResult) {
	for i := range records {
		m := &records[i]
		payload := infra.NewMemberPayload{
			Name:     m.Name,
			Phone:    m.Phone,
			Group:    m.GroupID,
			Location: m.Location,
			IDNumber: m.IDNumber,
		}
		if m.Email != nil {
			payload.Email = *m.Email
		}
		if m.Occupation != nil {
			payload.Occupation = *m.Occupation
		}
		if m.Notes != nil {
			payload.Notes = *m.Notes
		}
		err := s.api.RegisterMember(ctx, payload)
		s.settle(ctx, err,
			func() error { return s.newMembers.MarkSynced(ctx, m.ID) },
			func(msg string) error { return s.newMembers.MarkFailed(ctx, m.ID, msg) },
			&result.NewMembers, result,
			fmt.Sprintf("new member %s", m.Name))
	}
}

func (s *syncService) syncLoanApplications(ctx context.Context, records []model.LoanApplication, result *dto.SyncResult) {
	for i := range records {
		l := &records[i]
		notes := ""
		if l.Purpose != nil {
			notes = *l.Purpose
		}
		guarantors := make([]string, 0, len(l.Guarantors))
		for _, g := range l.Guarantors {
			guarantors = append(guarantors, FormatMemberParam(g))
		}
		err := s.api.CreateLoan(ctx, infra.LoanPayload{
			Member:        FormatMemberParam(l.MemberID),
			Amount:        l.LoanAmount,
			Installments:  l.Installments,
			Guarantors:    guarantors,
			OfficerName:   s.officerName,
			Notes:         notes,
			LoanType:      "longterm",
			SecurityItems: []string{},
		})
		s.settle(ctx, err,
			func() error { return s.loanApps.MarkSynced(ctx, l.ID) },
			func(msg string) error { return s.loanApps.MarkFailed(ctx, l.ID, msg) },
			&result.LoanApplications, result,
			fmt.Sprintf("loan application for %s", l.MemberName))
	}
}

func (s *syncService) syncAdvanceLoans(ctx context.Context, records []model.AdvanceLoan, result *dto.SyncResult) {
	for i := range records {
		a := &records[i]
		notes := ""
		if a.Reason != nil {
			notes = *a.Reason
		}
		err := s.api.CreateAdvanceLoan(ctx, infra.AdvanceLoanPayload{
			Member:          FormatMemberParam(a.MemberID),
			PrincipalAmount: a.Amount,
			OfficerName:     s.officerName,
			Notes:           notes,
			LoanType:        "advance",
			Timestamp:       a.CreatedAt.Format(time.RFC3339),
		})
		s.settle(ctx, err,
			func() error { return s.advanceLoans.MarkSynced(ctx, a.ID) },
			func(msg string) error { return s.advanceLoans.MarkFailed(ctx, a.ID, msg) },
			&result.AdvanceLoans, result,
			fmt.Sprintf("advance loan for %s", a.MemberName))
	}
}

func (s *syncService) syncGroupCollections(ctx context.Context, records []model.GroupCollection, result *dto.SyncResult) {
	for i := range records {
		g := &records[i]
		err := s.api.RecordGroupCollections(ctx, infra.GroupCollectionPayload{
			GroupID:        g.GroupID,
			CashCollected:  g.CashCollected,
			FinesCollected: g.FinesCollected,
		})
		s.settle(ctx, err,
			func() error { return s.groups.MarkSynced(ctx, g.ID) },
			func(msg string) error { return s.groups.MarkFailed(ctx, g.ID, msg) },
			&result.GroupCollections, result,
			fmt.Sprintf("group collection for %s", g.GroupName))
	}
}

// settle records the outcome of one push: duplicates count as success, every
// other error marks the record failed with the causal message attached.
func (s *syncService) settle(ctx context.Context, err error, markSynced func() error, markFailed func(string) error, kind *dto.KindResult, result *dto.SyncResult, label string) {
	if err == nil || isDuplicate(err) {
		if err != nil {
			log.Debug().Str("record", label).Msg("sync: duplicate rejection reclassified as success")
		}
		if mErr := markSynced(); mErr != nil {
			log.Error().Err(mErr).Str("record", label).Msg("sync: failed to mark record synced")
		}
		kind.Success++
		return
	}

	msg := err.Error()
	if mErr := markFailed(msg); mErr != nil {
		log.Error().Err(mErr).Str("record", label).Msg("sync: failed to mark record failed")
	}
	kind.Failed++
	result.Errors = append(result.Errors, label+": "+msg)
	log.Warn().Str("record", label).Str("error", msg).Msg("sync: record failed")
}

// ── Heuristics ────────────────────────────────────────────────────────────────

// isDuplicate reports whether a remote rejection means the record already
// exists server-side. Only remote rejections are sniffed; transport errors
// never count.
func isDuplicate(err error) bool {
	var remote *infra.RemoteError
	if !errors.As(err, &remote) {
		return false
	}
	msg := strings.ToLower(remote.Message)
	for _, marker := range duplicateMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func isAlreadyDisbursed(err error) bool {
	var remote *infra.RemoteError
	if !errors.As(err, &remote) {
		return false
	}
	return strings.Contains(strings.ToLower(remote.Message), "already disbursed") || isDuplicate(err)
}

// FormatMemberParam distinguishes server-assigned numeric member ids from
// locally-issued id-numbers of not-yet-synced members. The latter get an
// "id:" marker so the server resolves them distinctly; short numeric ids
// and already-prefixed values pass through unchanged.
func FormatMemberParam(memberID string) string {
	if strings.HasPrefix(memberID, "id:") {
		return memberID
	}
	if _, err := strconv.ParseInt(memberID, 10, 64); err == nil && len(memberID) <= 6 {
		return memberID
	}
	return "id:" + memberID
}
