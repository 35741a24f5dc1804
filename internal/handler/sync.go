package handler

import (
	"errors"
	"net/http"
	"time"

	"fieldsync/internal/apierror"
	"fieldsync/internal/repository"
	"fieldsync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// staleAfter is how long a pending record may sit untouched before the
// cleanup endpoint is allowed to discard it.
const staleAfter = 30 * 24 * time.Hour

type SyncHandler struct {
	sync       service.SyncService
	auth       service.AuthService
	memberData service.MemberDataService

	cash          repository.CashCollectionRepository
	loanApps      repository.LoanApplicationRepository
	disbursements repository.LoanDisbursementRepository
	advanceLoans  repository.AdvanceLoanRepository
	groups        repository.GroupCollectionRepository
	newMembers    repository.NewMemberRepository
}

func NewSyncHandler(
	sync service.SyncService,
	auth service.AuthService,
	memberData service.MemberDataService,
	cash repository.CashCollectionRepository,
	loanApps repository.LoanApplicationRepository,
	disbursements repository.LoanDisbursementRepository,
	advanceLoans repository.AdvanceLoanRepository,
	groups repository.GroupCollectionRepository,
	newMembers repository.NewMemberRepository,
) *SyncHandler {
	return &SyncHandler{
		sync:          sync,
		auth:          auth,
		memberData:    memberData,
		cash:          cash,
		loanApps:      loanApps,
		disbursements: disbursements,
		advanceLoans:  advanceLoans,
		groups:        groups,
		newMembers:    newMembers,
	}
}

// SyncAll runs a full pass and reports the per-kind outcome. Preconditions
// that abort the pass (auth, connectivity, concurrent run) map to dedicated
// status codes so the UI can distinguish them.
func (h *SyncHandler) SyncAll(c *gin.Context) {
	result, err := h.sync.SyncAll(c.Request.Context())
	switch {
	case errors.Is(err, service.ErrSyncInProgress):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
		return
	case errors.Is(err, service.ErrAuthFailed):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
		return
	case errors.Is(err, service.ErrOffline):
		c.JSON(http.StatusServiceUnavailable, apierror.New(err.Error()))
		return
	case err != nil:
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, result)
}

// SyncMemberData refreshes only the cached server snapshot, without pushing
// local records.
func (h *SyncHandler) SyncMemberData(c *gin.Context) {
	if err := h.auth.Authenticate(c.Request.Context()); err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New(service.ErrAuthFailed.Error()))
		return
	}
	result, err := h.memberData.SyncMemberData(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SyncHandler) PendingCounts(c *gin.Context) {
	counts, err := h.sync.PendingCounts(c.Request.Context())
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, counts)
}

// CleanupSynced discards records that have already reached the server.
func (h *SyncHandler) CleanupSynced(c *gin.Context) {
	ctx := c.Request.Context()
	removed := map[string]int64{}
	var total int64

	for kind, del := range map[string]func() (int64, error){
		"cash_collections":   func() (int64, error) { return h.cash.DeleteSynced(ctx) },
		"loan_applications":  func() (int64, error) { return h.loanApps.DeleteSynced(ctx) },
		"loan_disbursements": func() (int64, error) { return h.disbursements.DeleteSynced(ctx) },
		"advance_loans":      func() (int64, error) { return h.advanceLoans.DeleteSynced(ctx) },
		"group_collections":  func() (int64, error) { return h.groups.DeleteSynced(ctx) },
		"new_members":        func() (int64, error) { return h.newMembers.DeleteSynced(ctx) },
	} {
		n, err := del()
		if err != nil {
			log.Error().Err(err).Str("kind", kind).Msg("cleanup of synced records failed")
			continue
		}
		removed[kind] = n
		total += n
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed, "total": total})
}

// CleanupStale discards pending records older than the retention window.
// Disbursements are exempt: dropping one silently would lose an officer's
// deduction choices for a loan the server still expects.
func (h *SyncHandler) CleanupStale(c *gin.Context) {
	ctx := c.Request.Context()
	cutoff := time.Now().Add(-staleAfter)
	removed := map[string]int64{}
	var total int64

	for kind, del := range map[string]func() (int64, error){
		"cash_collections":  func() (int64, error) { return h.cash.DeleteStalePending(ctx, cutoff) },
		"loan_applications": func() (int64, error) { return h.loanApps.DeleteStalePending(ctx, cutoff) },
		"advance_loans":     func() (int64, error) { return h.advanceLoans.DeleteStalePending(ctx, cutoff) },
		"group_collections": func() (int64, error) { return h.groups.DeleteStalePending(ctx, cutoff) },
		"new_members":       func() (int64, error) { return h.newMembers.DeleteStalePending(ctx, cutoff) },
	} {
		n, err := del()
		if err != nil {
			log.Error().Err(err).Str("kind", kind).Msg("cleanup of stale records failed")
			continue
		}
		removed[kind] = n
		total += n
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed, "total": total})
}
