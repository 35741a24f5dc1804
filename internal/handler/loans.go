package handler

import (
	"errors"
	"net/http"
	"time"

	"fieldsync/internal/apierror"
	"fieldsync/internal/dto"
	"fieldsync/internal/model"
	"fieldsync/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoansHandler struct {
	applications  repository.LoanApplicationRepository
	advances      repository.AdvanceLoanRepository
	disbursements repository.LoanDisbursementRepository
	approved      repository.ApprovedLoanRepository
}

func NewLoansHandler(
	applications repository.LoanApplicationRepository,
	advances repository.AdvanceLoanRepository,
	disbursements repository.LoanDisbursementRepository,
	approved repository.ApprovedLoanRepository,
) *LoansHandler {
	return &LoansHandler{
		applications:  applications,
		advances:      advances,
		disbursements: disbursements,
		approved:      approved,
	}
}

// ── Loan applications ─────────────────────────────────────────────────────────

func (h *LoansHandler) CreateApplication(c *gin.Context) {
	var req dto.LoanApplicationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	record := &model.LoanApplication{
		MemberID:     req.MemberID,
		MemberName:   req.MemberName,
		LoanAmount:   req.LoanAmount,
		Purpose:      req.Purpose,
		TenureMonths: req.TenureMonths,
		InterestRate: req.InterestRate,
		Installments: req.Installments,
		Guarantors:   req.Guarantors,
	}
	if err := h.applications.Create(c.Request.Context(), record); err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *LoansHandler) ListApplications(c *gin.Context) {
	records, err := h.applications.List(c.Request.Context())
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *LoansHandler) DeleteApplication(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid record id"))
		return
	}
	if err := h.applications.Delete(c.Request.Context(), id); err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Advance loans ─────────────────────────────────────────────────────────────

func (h *LoansHandler) CreateAdvance(c *gin.Context) {
	var req dto.AdvanceLoanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	record := &model.AdvanceLoan{
		MemberID:   req.MemberID,
		MemberName: req.MemberName,
		Amount:     req.Amount,
		Reason:     req.Reason,
	}
	if req.RepaymentDate != nil {
		t, err := time.Parse("2006-01-02", *req.RepaymentDate)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, apierror.New("repayment_date must be YYYY-MM-DD"))
			return
		}
		record.RepaymentDate = &t
	}
	if err := h.advances.Create(c.Request.Context(), record); err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *LoansHandler) ListAdvances(c *gin.Context) {
	records, err := h.advances.List(c.Request.Context())
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *LoansHandler) DeleteAdvance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid record id"))
		return
	}
	if err := h.advances.Delete(c.Request.Context(), id); err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Disbursements ─────────────────────────────────────────────────────────────

// ListApprovedLoans exposes the today's-loans cache the disbursement screen
// works from.
func (h *LoansHandler) ListApprovedLoans(c *gin.Context) {
	loans, err := h.approved.List(c.Request.Context())
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, loans)
}

// CreateDisbursement records a disbursement for an approved loan. A second
// record for the same loan is rejected as already applied.
func (h *LoansHandler) CreateDisbursement(c *gin.Context) {
	var req dto.LoanDisbursementRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if existing, err := h.disbursements.FindByLoanID(c.Request.Context(), req.LoanID); err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"detail": "disbursement already recorded for this loan",
			"record": existing,
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.Error(err) //nolint:errcheck
		return
	}

	record := &model.LoanDisbursement{
		LoanID:                  req.LoanID,
		DatabaseID:              req.DatabaseID,
		IncludeProcessingFee:    req.IncludeProcessingFee,
		IncludeAdvocateFee:      req.IncludeAdvocateFee,
		IncludeAdvanceDeduction: req.IncludeAdvanceDeduction,
	}
	for _, d := range req.CustomDeductions {
		record.CustomDeductions = append(record.CustomDeductions, model.CustomDeduction{
			Description: d.Description,
			Amount:      d.Amount,
		})
	}
	if err := h.disbursements.Create(c.Request.Context(), record); err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *LoansHandler) ListDisbursements(c *gin.Context) {
	records, err := h.disbursements.List(c.Request.Context())
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *LoansHandler) DeleteDisbursement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid record id"))
		return
	}
	if err := h.disbursements.Delete(c.Request.Context(), id); err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.Status(http.StatusNoContent)
}
