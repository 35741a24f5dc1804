package repository

import (
	"context"
	"time"

	"fieldsync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoanApplicationRepository interface {
	Create(ctx context.Context, l *model.LoanApplication) error
	List(ctx context.Context) ([]model.LoanApplication, error)
	ListUnsynced(ctx context.Context) ([]model.LoanApplication, error)
	HasUnsyncedForMember(ctx context.Context, memberID string) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.LoanApplication, error)
	Update(ctx context.Context, id uuid.UUID, data *model.LoanApplication) error
	MarkSynced(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, msg string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteSynced(ctx context.Context) (int64, error)
	DeleteStalePending(ctx context.Context, olderThan time.Time) (int64, error)
	CountUnsynced(ctx context.Context) (int64, error)
}

type loanApplicationRepo struct{ db *gorm.DB }

func NewLoanApplicationRepository(db *gorm.DB) LoanApplicationRepository {
	return &loanApplicationRepo{db: db}
}

func (r *loanApplicationRepo) Create(ctx context.Context, l *model.LoanApplication) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.Synced = false
	l.SyncStatus = model.SyncPending
	l.SyncError = nil
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *loanApplicationRepo) List(ctx context.Context) ([]model.LoanApplication, error) {
	var out []model.LoanApplication
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *loanApplicationRepo) ListUnsynced(ctx context.Context) ([]model.LoanApplication, error) {
	var out []model.LoanApplication
	err := r.db.WithContext(ctx).Where("synced = ?", false).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *loanApplicationRepo) HasUnsyncedForMember(ctx context.Context, memberID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.LoanApplication{}).
		Where("synced = ? AND member_id = ?", false, memberID).Count(&n).Error
	return n > 0, err
}

func (r *loanApplicationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.LoanApplication, error) {
	var l model.LoanApplication
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *loanApplicationRepo) Update(ctx context.Context, id uuid.UUID, data *model.LoanApplication) error {
	var existing model.LoanApplication
	if err := r.db.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		return err
	}
	existing.MemberID = data.MemberID
	existing.MemberName = data.MemberName
	existing.LoanAmount = data.LoanAmount
	existing.Purpose = data.Purpose
	existing.TenureMonths = data.TenureMonths
	existing.InterestRate = data.InterestRate
	existing.Installments = data.Installments
	existing.Guarantors = data.Guarantors
	existing.Synced = false
	existing.SyncStatus = model.SyncPending
	existing.SyncError = nil
	return r.db.WithContext(ctx).Save(&existing).Error
}

func (r *loanApplicationRepo) MarkSynced(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.LoanApplication{}).Where("id = ?", id).
		Updates(map[string]interface{}{"synced": true, "sync_status": model.SyncSynced, "sync_error": nil}).Error
}

func (r *loanApplicationRepo) MarkFailed(ctx context.Context, id uuid.UUID, msg string) error {
	return r.db.WithContext(ctx).Model(&model.LoanApplication{}).Where("id = ?", id).
		Updates(map[string]interface{}{"synced": false, "sync_status": model.SyncFailed, "sync_error": msg}).Error
}

func (r *loanApplicationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.LoanApplication{}, "id = ?", id).Error
}

func (r *loanApplicationRepo) DeleteSynced(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("synced = ?", true).Delete(&model.LoanApplication{})
	return res.RowsAffected, res.Error
}

func (r *loanApplicationRepo) DeleteStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("synced = ? AND created_at < ?", false, olderThan).
		Delete(&model.LoanApplication{})
	return res.RowsAffected, res.Error
}

func (r *loanApplicationRepo) CountUnsynced(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.LoanApplication{}).Where("synced = ?", false).Count(&n).Error
	return n, err
}
