package repository

import (
	"context"

	"fieldsync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoanDisbursementRepository interface {
	// Create enforces at-most-one disbursement per loan: a second record
	// for the same LoanID fails with a uniqueness error.
	Create(ctx context.Context, d *model.LoanDisbursement) error
	List(ctx context.Context) ([]model.LoanDisbursement, error)
	ListUnsynced(ctx context.Context) ([]model.LoanDisbursement, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.LoanDisbursement, error)
	FindByLoanID(ctx context.Context, loanID string) (*model.LoanDisbursement, error)
	Update(ctx context.Context, id uuid.UUID, data *model.LoanDisbursement) error
	MarkSynced(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, msg string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteSynced(ctx context.Context) (int64, error)
	CountUnsynced(ctx context.Context) (int64, error)
}

type loanDisbursementRepo struct{ db *gorm.DB }

func NewLoanDisbursementRepository(db *gorm.DB) LoanDisbursementRepository {
	return &loanDisbursementRepo{db: db}
}

func (r *loanDisbursementRepo) Create(ctx context.Context, d *model.LoanDisbursement) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.Synced = false
	d.SyncStatus = model.SyncPending
	d.SyncError = nil
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *loanDisbursementRepo) List(ctx context.Context) ([]model.LoanDisbursement, error) {
	var out []model.LoanDisbursement
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *loanDisbursementRepo) ListUnsynced(ctx context.Context) ([]model.LoanDisbursement, error) {
	var out []model.LoanDisbursement
	err := r.db.WithContext(ctx).Where("synced = ?", false).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *loanDisbursementRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.LoanDisbursement, error) {
	var d model.LoanDisbursement
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	return &d, err
}

func (r *loanDisbursementRepo) FindByLoanID(ctx context.Context, loanID string) (*model.LoanDisbursement, error) {
	var d model.LoanDisbursement
	err := r.db.WithContext(ctx).First(&d, "loan_id = ?", loanID).Error
	return &d, err
}

func (r *loanDisbursementRepo) Update(ctx context.Context, id uuid.UUID, data *model.LoanDisbursement) error {
	var existing model.LoanDisbursement
	if err := r.db.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		return err
	}
	existing.IncludeProcessingFee = data.IncludeProcessingFee
	existing.IncludeAdvocateFee = data.IncludeAdvocateFee
	existing.IncludeAdvanceDeduction = data.IncludeAdvanceDeduction
	existing.CustomDeductions = data.CustomDeductions
	existing.Synced = false
	existing.SyncStatus = model.SyncPending
	existing.SyncError = nil
	return r.db.WithContext(ctx).Save(&existing).Error
}

func (r *loanDisbursementRepo) MarkSynced(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.LoanDisbursement{}).Where("id = ?", id).
		Updates(map[string]interface{}{"synced": true, "sync_status": model.SyncSynced, "sync_error": nil}).Error
}

func (r *loanDisbursementRepo) MarkFailed(ctx context.Context, id uuid.UUID, msg string) error {
	return r.db.WithContext(ctx).Model(&model.LoanDisbursement{}).Where("id = ?", id).
		Updates(map[string]interface{}{"synced": false, "sync_status": model.SyncFailed, "sync_error": msg}).Error
}

func (r *loanDisbursementRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.LoanDisbursement{}, "id = ?", id).Error
}

func (r *loanDisbursementRepo) DeleteSynced(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("synced = ?", true).Delete(&model.LoanDisbursement{})
	return res.RowsAffected, res.Error
}

func (r *loanDisbursementRepo) CountUnsynced(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.LoanDisbursement{}).Where("synced = ?", false).Count(&n).Error
	return n, err
}
