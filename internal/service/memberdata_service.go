package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldsync/internal/dto"
	"fieldsync/internal/infra"
	"fieldsync/internal/model"
	"fieldsync/internal/repository"

	"github.com/rs/zerolog/log"
)

type MemberDataService interface {
	// SyncMemberData refreshes the member-balance cache from the server,
	// recomputes every qualification, and pulls today's approved loans.
	// Secondary failures (loans fetch, server cleanup) degrade gracefully
	// and never fail the overall refresh.
	SyncMemberData(ctx context.Context) (*dto.MemberDataResult, error)
}

type memberDataService struct {
	api           *infra.APIClient
	balances      repository.MemberBalanceRepository
	approvedLoans repository.ApprovedLoanRepository
	qualification QualificationService
}

func NewMemberDataService(
	api *infra.APIClient,
	balances repository.MemberBalanceRepository,
	approvedLoans repository.ApprovedLoanRepository,
	qualification QualificationService,
) MemberDataService {
	return &memberDataService{
		api:           api,
		balances:      balances,
		approvedLoans: approvedLoans,
		qualification: qualification,
	}
}

func (s *memberDataService) SyncMemberData(ctx context.Context) (*dto.MemberDataResult, error) {
	resp, err := s.api.FetchMemberBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch member balances: %w", err)
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "server reported failure"
		}
		return nil, fmt.Errorf("fetch member balances: %s", msg)
	}
	if len(resp.Members) == 0 {
		return nil, errors.New("fetch member balances: response carried no members")
	}

	now := time.Now()
	fresh := make([]model.MemberBalance, 0, len(resp.Members))
	for _, m := range resp.Members {
		fresh = append(fresh, model.MemberBalance{
			MemberID:           m.MemberID,
			Name:               m.Name,
			Phone:              m.Phone,
			GroupID:            m.GroupID,
			GroupName:          m.GroupName,
			MeetingDate:        m.MeetingDate,
			SavingsBalance:     m.Balances.SavingsBalance,
			LoanBalance:        m.Balances.LoanBalance,
			AdvanceLoanBalance: m.Balances.AdvanceLoanBalance,
			UnallocatedFunds:   m.Balances.UnallocatedFunds,
			TotalOutstanding:   m.Balances.TotalOutstanding,
			Inputs:             m.QualificationInputs,
			LastUpdated:        now,
		})
	}
	if err := s.balances.ReplaceAll(ctx, fresh); err != nil {
		return nil, fmt.Errorf("replace balance cache: %w", err)
	}

	result := &dto.MemberDataResult{
		Success:        true,
		MembersSynced:  len(fresh),
		MeetingsSynced: len(resp.Meetings),
	}

	quals, err := s.qualification.BulkQualifications(ctx)
	if err != nil {
		// The cache itself is fresh; qualification counts are advisory.
		log.Warn().Err(err).Msg("memberdata: bulk qualification recompute failed")
	} else {
		for _, q := range quals {
			if q.LongTerm.Qualified {
				result.LongTermEligible++
			}
			if q.Advance.Qualified {
				result.AdvanceEligible++
			}
			if q.Pending.HasAny() {
				result.MembersWithPending++
			}
		}
	}

	result.LoansSynced = s.refreshTodayLoans(ctx, now)

	if err := s.api.Cleanup(ctx); err != nil {
		log.Warn().Err(err).Msg("memberdata: server-side cleanup failed")
	}

	log.Info().
		Int("members", result.MembersSynced).
		Int("meetings", result.MeetingsSynced).
		Int("loans", result.LoansSynced).
		Msg("memberdata: refresh complete")
	return result, nil
}

// refreshTodayLoans pulls approved loans for today's meetings into the local
// cache. Best effort: a failure is logged and reported as zero loans.
func (s *memberDataService) refreshTodayLoans(ctx context.Context, fetchedAt time.Time) int {
	resp, err := s.api.FetchTodayLoans(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("memberdata: today's loans fetch failed")
		return 0
	}
	if !resp.Success {
		log.Warn().Str("error", resp.Error).Msg("memberdata: today's loans fetch rejected")
		return 0
	}

	var loans []model.ApprovedLoan
	for _, meeting := range resp.Meetings {
		for _, l := range meeting.Loans {
			loans = append(loans, model.ApprovedLoan{
				LoanID:     l.LoanID,
				DatabaseID: l.DatabaseID,
				MemberID:   l.MemberID,
				MemberName: l.MemberName,
				Amount:     l.Amount,
				GroupID:    meeting.GroupID,
				GroupName:  meeting.GroupName,
				FetchedAt:  fetchedAt,
			})
		}
	}
	if len(loans) == 0 {
		return 0
	}
	if err := s.approvedLoans.ReplaceAll(ctx, loans); err != nil {
		log.Warn().Err(err).Msg("memberdata: persisting today's loans failed")
		return 0
	}
	return len(loans)
}
