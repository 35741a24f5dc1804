package handler

import (
	"errors"
	"net/http"

	"fieldsync/internal/apierror"
	"fieldsync/internal/dto"
	"fieldsync/internal/model"
	"fieldsync/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CollectionsHandler struct {
	cash   repository.CashCollectionRepository
	groups repository.GroupCollectionRepository
}

func NewCollectionsHandler(cash repository.CashCollectionRepository, groups repository.GroupCollectionRepository) *CollectionsHandler {
	return &CollectionsHandler{cash: cash, groups: groups}
}

// validateCashAmounts enforces the arithmetic invariants at the API
// boundary: total = cash + mpesa, and allocations (when present) must sum
// to the total.
func validateCashAmounts(req *dto.CashCollectionRequest) string {
	if req.CashAmount.IsNegative() || req.MpesaAmount.IsNegative() {
		return "amounts must not be negative"
	}
	if !req.CashAmount.Add(req.MpesaAmount).Equal(req.TotalAmount) {
		return "total_amount must equal cash_amount + mpesa_amount"
	}
	if len(req.Allocations) > 0 {
		sum := decimal.Zero
		for _, a := range req.Allocations {
			if a.Amount.IsNegative() {
				return "allocation amounts must not be negative"
			}
			sum = sum.Add(a.Amount)
		}
		if !sum.Equal(req.TotalAmount) {
			return "allocations must sum to total_amount"
		}
	}
	return ""
}

func cashCollectionFromRequest(req *dto.CashCollectionRequest) *model.CashCollection {
	c := &model.CashCollection{
		MemberID:    req.MemberID,
		MemberName:  req.MemberName,
		CashAmount:  req.CashAmount,
		MpesaAmount: req.MpesaAmount,
		TotalAmount: req.TotalAmount,
		Remarks:     req.Remarks,
	}
	for _, a := range req.Allocations {
		c.Allocations = append(c.Allocations, model.Allocation{
			Type:   a.Type,
			Amount: a.Amount,
			Reason: a.Reason,
		})
	}
	return c
}

func (h *CollectionsHandler) CreateCash(c *gin.Context) {
	var req dto.CashCollectionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if msg := validateCashAmounts(&req); msg != "" {
		c.JSON(http.StatusUnprocessableEntity, apierror.New(msg))
		return
	}

	record := cashCollectionFromRequest(&req)
	if err := h.cash.Create(c.Request.Context(), record); err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *CollectionsHandler) ListCash(c *gin.Context) {
	records, err := h.cash.List(c.Request.Context())
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, records)
}

// UpdateCash resets the record to pending; identity fields survive the edit
// inside the repository.
func (h *CollectionsHandler) UpdateCash(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid record id"))
		return
	}
	var req dto.CashCollectionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if msg := validateCashAmounts(&req); msg != "" {
		c.JSON(http.StatusUnprocessableEntity, apierror.New(msg))
		return
	}

	if err := h.cash.Update(c.Request.Context(), id, cashCollectionFromRequest(&req)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("cash collection not found"))
			return
		}
		c.Error(err) //nolint:errcheck
		return
	}
	record, err := h.cash.FindByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *CollectionsHandler) DeleteCash(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid record id"))
		return
	}
	if err := h.cash.Delete(c.Request.Context(), id); err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CollectionsHandler) CreateGroup(c *gin.Context) {
	var req dto.GroupCollectionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	record := &model.GroupCollection{
		GroupID:        req.GroupID,
		GroupName:      req.GroupName,
		CashCollected:  req.CashCollected,
		FinesCollected: req.FinesCollected,
	}
	if err := h.groups.Create(c.Request.Context(), record); err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *CollectionsHandler) ListGroup(c *gin.Context) {
	records, err := h.groups.List(c.Request.Context())
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *CollectionsHandler) DeleteGroup(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid record id"))
		return
	}
	if err := h.groups.Delete(c.Request.Context(), id); err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.Status(http.StatusNoContent)
}
