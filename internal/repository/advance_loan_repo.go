package repository

import (
	"context"
	"time"

	"fieldsync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdvanceLoanRepository interface {
	Create(ctx context.Context, a *model.AdvanceLoan) error
	List(ctx context.Context) ([]model.AdvanceLoan, error)
	ListUnsynced(ctx context.Context) ([]model.AdvanceLoan, error)
	HasUnsyncedForMember(ctx context.Context, memberID string) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.AdvanceLoan, error)
	Update(ctx context.Context, id uuid.UUID, data *model.AdvanceLoan) error
	MarkSynced(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, msg string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteSynced(ctx context.Context) (int64, error)
	DeleteStalePending(ctx context.Context, olderThan time.Time) (int64, error)
	CountUnsynced(ctx context.Context) (int64, error)
}

type advanceLoanRepo struct{ db *gorm.DB }

func NewAdvanceLoanRepository(db *gorm.DB) AdvanceLoanRepository {
	return &advanceLoanRepo{db: db}
}

func (r *advanceLoanRepo) Create(ctx context.Context, a *model.AdvanceLoan) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Synced = false
	a.SyncStatus = model.SyncPending
	a.SyncError = nil
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *advanceLoanRepo) List(ctx context.Context) ([]model.AdvanceLoan, error) {
	var out []model.AdvanceLoan
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *advanceLoanRepo) ListUnsynced(ctx context.Context) ([]model.AdvanceLoan, error) {
	var out []model.AdvanceLoan
	err := r.db.WithContext(ctx).Where("synced = ?", false).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *advanceLoanRepo) HasUnsyncedForMember(ctx context.Context, memberID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.AdvanceLoan{}).
		Where("synced = ? AND member_id = ?", false, memberID).Count(&n).Error
	return n > 0, err
}

func (r *advanceLoanRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.AdvanceLoan, error) {
	var a model.AdvanceLoan
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *advanceLoanRepo) Update(ctx context.Context, id uuid.UUID, data *model.AdvanceLoan) error {
	var existing model.AdvanceLoan
	if err := r.db.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		return err
	}
	existing.MemberID = data.MemberID
	existing.MemberName = data.MemberName
	existing.Amount = data.Amount
	existing.Reason = data.Reason
	existing.RepaymentDate = data.RepaymentDate
	existing.Synced = false
	existing.SyncStatus = model.SyncPending
	existing.SyncError = nil
	return r.db.WithContext(ctx).Save(&existing).Error
}

func (r *advanceLoanRepo) MarkSynced(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.AdvanceLoan{}).Where("id = ?", id).
		Updates(map[string]interface{}{"synced": true, "sync_status": model.SyncSynced, "sync_error": nil}).Error
}

func (r *advanceLoanRepo) MarkFailed(ctx context.Context, id uuid.UUID, msg string) error {
	return r.db.WithContext(ctx).Model(&model.AdvanceLoan{}).Where("id = ?", id).
		Updates(map[string]interface{}{"synced": false, "sync_status": model.SyncFailed, "sync_error": msg}).Error
}

func (r *advanceLoanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.AdvanceLoan{}, "id = ?", id).Error
}

func (r *advanceLoanRepo) DeleteSynced(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("synced = ?", true).Delete(&model.AdvanceLoan{})
	return res.RowsAffected, res.Error
}

func (r *advanceLoanRepo) DeleteStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("synced = ? AND created_at < ?", false, olderThan).
		Delete(&model.AdvanceLoan{})
	return res.RowsAffected, res.Error
}

func (r *advanceLoanRepo) CountUnsynced(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.AdvanceLoan{}).Where("synced = ?", false).Count(&n).Error
	return n, err
}
