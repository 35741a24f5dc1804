package handler

import (
	"errors"
	"net/http"

	"fieldsync/internal/apierror"
	"fieldsync/internal/dto"
	"fieldsync/internal/model"
	"fieldsync/internal/repository"
	"fieldsync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MembersHandler struct {
	members        repository.NewMemberRepository
	balances       repository.MemberBalanceRepository
	cash           repository.CashCollectionRepository
	qualifications service.QualificationService
}

func NewMembersHandler(
	members repository.NewMemberRepository,
	balances repository.MemberBalanceRepository,
	cash repository.CashCollectionRepository,
	qualifications service.QualificationService,
) *MembersHandler {
	return &MembersHandler{
		members:        members,
		balances:       balances,
		cash:           cash,
		qualifications: qualifications,
	}
}

// ── New member registration ───────────────────────────────────────────────────

// CreateNewMember registers a member offline. An optional initial collection
// is stored as a separate cash record referencing the member's id number, so
// sync pushes the member first and the collection under its "id:" identity.
func (h *MembersHandler) CreateNewMember(c *gin.Context) {
	var req dto.NewMemberRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.InitialCollection != nil {
		if msg := validateCashAmounts(req.InitialCollection); msg != "" {
			c.JSON(http.StatusUnprocessableEntity, apierror.New(msg))
			return
		}
	}

	member := &model.NewMember{
		Name:       req.Name,
		Phone:      req.Phone,
		GroupID:    req.GroupID,
		Location:   req.Location,
		IDNumber:   req.IDNumber,
		Email:      req.Email,
		Occupation: req.Occupation,
		Notes:      req.Notes,
	}

	if req.InitialCollection != nil {
		collection := cashCollectionFromRequest(req.InitialCollection)
		collection.MemberID = req.IDNumber
		collection.MemberName = req.Name
		if err := h.cash.Create(c.Request.Context(), collection); err != nil {
			c.Error(err) //nolint:errcheck
			return
		}
		member.InitialCollectionID = &collection.ID
	}

	if err := h.members.Create(c.Request.Context(), member); err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *MembersHandler) ListNewMembers(c *gin.Context) {
	members, err := h.members.List(c.Request.Context())
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *MembersHandler) UpdateNewMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid record id"))
		return
	}
	var req dto.NewMemberRequest
	if !bindAndValidate(c, &req) {
		return
	}
	data := &model.NewMember{
		Name:       req.Name,
		Phone:      req.Phone,
		GroupID:    req.GroupID,
		Location:   req.Location,
		IDNumber:   req.IDNumber,
		Email:      req.Email,
		Occupation: req.Occupation,
		Notes:      req.Notes,
	}
	if err := h.members.Update(c.Request.Context(), id, data); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("new member not found"))
			return
		}
		c.Error(err) //nolint:errcheck
		return
	}
	member, err := h.members.FindByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *MembersHandler) DeleteNewMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid record id"))
		return
	}
	if err := h.members.Delete(c.Request.Context(), id); err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Cached member data ────────────────────────────────────────────────────────

// ListBalances returns the cached snapshot, optionally filtered by the "q"
// query on name, phone or member id.
func (h *MembersHandler) ListBalances(c *gin.Context) {
	var (
		balances []model.MemberBalance
		err      error
	)
	if q := c.Query("q"); q != "" {
		balances, err = h.balances.Search(c.Request.Context(), q)
	} else {
		balances, err = h.balances.List(c.Request.Context())
	}
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, balances)
}

func (h *MembersHandler) GetBalance(c *gin.Context) {
	balance, err := h.balances.FindByMemberID(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("member not found in local cache"))
			return
		}
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (h *MembersHandler) BalanceSummary(c *gin.Context) {
	summary, err := h.balances.Summary(c.Request.Context())
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ── Qualification ─────────────────────────────────────────────────────────────

func (h *MembersHandler) MemberQualification(c *gin.Context) {
	q, err := h.qualifications.MemberQualification(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("member not found in local cache"))
			return
		}
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *MembersHandler) PendingContributions(c *gin.Context) {
	pending, err := h.qualifications.PendingContributions(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, pending)
}

func (h *MembersHandler) BulkQualifications(c *gin.Context) {
	all, err := h.qualifications.BulkQualifications(c.Request.Context())
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, all)
}

func (h *MembersHandler) GroupSummaries(c *gin.Context) {
	summaries, err := h.qualifications.GroupSummaries(c.Request.Context())
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, summaries)
}
