package repository

import (
	"context"
	"time"

	"fieldsync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GroupCollectionRepository interface {
	Create(ctx context.Context, g *model.GroupCollection) error
	List(ctx context.Context) ([]model.GroupCollection, error)
	ListUnsynced(ctx context.Context) ([]model.GroupCollection, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.GroupCollection, error)
	Update(ctx context.Context, id uuid.UUID, data *model.GroupCollection) error
	MarkSynced(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, msg string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteSynced(ctx context.Context) (int64, error)
	DeleteStalePending(ctx context.Context, olderThan time.Time) (int64, error)
	CountUnsynced(ctx context.Context) (int64, error)
}

type groupCollectionRepo struct{ db *gorm.DB }

func NewGroupCollectionRepository(db *gorm.DB) GroupCollectionRepository {
	return &groupCollectionRepo{db: db}
}

func (r *groupCollectionRepo) Create(ctx context.Context, g *model.GroupCollection) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	g.Synced = false
	g.SyncStatus = model.SyncPending
	g.SyncError = nil
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *groupCollectionRepo) List(ctx context.Context) ([]model.GroupCollection, error) {
	var out []model.GroupCollection
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *groupCollectionRepo) ListUnsynced(ctx context.Context) ([]model.GroupCollection, error) {
	var out []model.GroupCollection
	err := r.db.WithContext(ctx).Where("synced = ?", false).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *groupCollectionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.GroupCollection, error) {
	var g model.GroupCollection
	err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error
	return &g, err
}

func (r *groupCollectionRepo) Update(ctx context.Context, id uuid.UUID, data *model.GroupCollection) error {
	var existing model.GroupCollection
	if err := r.db.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		return err
	}
	existing.GroupID = data.GroupID
	existing.GroupName = data.GroupName
	existing.CashCollected = data.CashCollected
	existing.FinesCollected = data.FinesCollected
	existing.Synced = false
	existing.SyncStatus = model.SyncPending
	existing.SyncError = nil
	return r.db.WithContext(ctx).Save(&existing).Error
}

func (r *groupCollectionRepo) MarkSynced(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.GroupCollection{}).Where("id = ?", id).
		Updates(map[string]interface{}{"synced": true, "sync_status": model.SyncSynced, "sync_error": nil}).Error
}

func (r *groupCollectionRepo) MarkFailed(ctx context.Context, id uuid.UUID, msg string) error {
	return r.db.WithContext(ctx).Model(&model.GroupCollection{}).Where("id = ?", id).
		Updates(map[string]interface{}{"synced": false, "sync_status": model.SyncFailed, "sync_error": msg}).Error
}

func (r *groupCollectionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.GroupCollection{}, "id = ?", id).Error
}

func (r *groupCollectionRepo) DeleteSynced(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("synced = ?", true).Delete(&model.GroupCollection{})
	return res.RowsAffected, res.Error
}

func (r *groupCollectionRepo) DeleteStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("synced = ? AND created_at < ?", false, olderThan).
		Delete(&model.GroupCollection{})
	return res.RowsAffected, res.Error
}

func (r *groupCollectionRepo) CountUnsynced(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.GroupCollection{}).Where("synced = ?", false).Count(&n).Error
	return n, err
}
