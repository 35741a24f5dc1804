package repository

import (
	"context"
	"time"

	"fieldsync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CashCollectionRepository interface {
	Create(ctx context.Context, c *model.CashCollection) error
	List(ctx context.Context) ([]model.CashCollection, error)
	ListUnsynced(ctx context.Context) ([]model.CashCollection, error)
	ListUnsyncedByMember(ctx context.Context, memberID string) ([]model.CashCollection, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashCollection, error)
	// Update replaces the editable fields and resets the record to pending.
	// Identity fields (AllocationID, CashReference once set) survive every
	// edit — they are idempotency keys on the wire.
	Update(ctx context.Context, id uuid.UUID, data *model.CashCollection) error
	MarkSynced(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, msg string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteSynced(ctx context.Context) (int64, error)
	DeleteStalePending(ctx context.Context, olderThan time.Time) (int64, error)
	CountUnsynced(ctx context.Context) (int64, error)
}

type cashCollectionRepo struct{ db *gorm.DB }

func NewCashCollectionRepository(db *gorm.DB) CashCollectionRepository {
	return &cashCollectionRepo{db: db}
}

func (r *cashCollectionRepo) Create(ctx context.Context, c *model.CashCollection) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	// Identity fields are minted exactly once, at creation.
	if c.AllocationID == "" {
		c.AllocationID = "ALLOC-" + uuid.NewString()
	}
	if c.CashReference == nil && c.CashAmount.IsPositive() {
		ref := "CASH-" + uuid.NewString()
		c.CashReference = &ref
	}
	for i := range c.Allocations {
		if c.Allocations[i].ID == uuid.Nil {
			c.Allocations[i].ID = uuid.New()
		}
		c.Allocations[i].MemberID = c.MemberID
	}
	c.Synced = false
	c.SyncStatus = model.SyncPending
	c.SyncError = nil
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cashCollectionRepo) List(ctx context.Context) ([]model.CashCollection, error) {
	var out []model.CashCollection
	err := r.db.WithContext(ctx).Preload("Allocations").
		Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *cashCollectionRepo) ListUnsynced(ctx context.Context) ([]model.CashCollection, error) {
	var out []model.CashCollection
	err := r.db.WithContext(ctx).Preload("Allocations").
		Where("synced = ?", false).
		Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *cashCollectionRepo) ListUnsyncedByMember(ctx context.Context, memberID string) ([]model.CashCollection, error) {
	var out []model.CashCollection
	err := r.db.WithContext(ctx).Preload("Allocations").
		Where("synced = ? AND member_id = ?", false, memberID).
		Find(&out).Error
	return out, err
}

func (r *cashCollectionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashCollection, error) {
	var c model.CashCollection
	err := r.db.WithContext(ctx).Preload("Allocations").First(&c, "id = ?", id).Error
	return &c, err
}

func (r *cashCollectionRepo) Update(ctx context.Context, id uuid.UUID, data *model.CashCollection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.CashCollection
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			return err
		}

		existing.MemberID = data.MemberID
		existing.MemberName = data.MemberName
		existing.CashAmount = data.CashAmount
		existing.MpesaAmount = data.MpesaAmount
		existing.TotalAmount = data.TotalAmount
		existing.Remarks = data.Remarks
		// AllocationID and CashReference deliberately untouched. A record
		// that gains a cash amount on edit still gets a reference only once.
		if existing.CashReference == nil && existing.CashAmount.IsPositive() {
			ref := "CASH-" + uuid.NewString()
			existing.CashReference = &ref
		}
		existing.Synced = false
		existing.SyncStatus = model.SyncPending
		existing.SyncError = nil

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}

		// Replace allocations wholesale.
		if err := tx.Where("cash_collection_id = ?", id).Delete(&model.Allocation{}).Error; err != nil {
			return err
		}
		for i := range data.Allocations {
			a := data.Allocations[i]
			a.ID = uuid.New()
			a.CashCollectionID = id
			a.MemberID = existing.MemberID
			if err := tx.Create(&a).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *cashCollectionRepo) MarkSynced(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.CashCollection{}).Where("id = ?", id).
		Updates(map[string]interface{}{"synced": true, "sync_status": model.SyncSynced, "sync_error": nil}).Error
}

func (r *cashCollectionRepo) MarkFailed(ctx context.Context, id uuid.UUID, msg string) error {
	return r.db.WithContext(ctx).Model(&model.CashCollection{}).Where("id = ?", id).
		Updates(map[string]interface{}{"synced": false, "sync_status": model.SyncFailed, "sync_error": msg}).Error
}

func (r *cashCollectionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Allocations").Delete(&model.CashCollection{ID: id}).Error
}

func (r *cashCollectionRepo) DeleteSynced(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("synced = ?", true).Delete(&model.CashCollection{})
	return res.RowsAffected, res.Error
}

func (r *cashCollectionRepo) DeleteStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("synced = ? AND created_at < ?", false, olderThan).
		Delete(&model.CashCollection{})
	return res.RowsAffected, res.Error
}

func (r *cashCollectionRepo) CountUnsynced(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.CashCollection{}).Where("synced = ?", false).Count(&n).Error
	return n, err
}
