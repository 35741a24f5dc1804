package repository

import (
	"context"
	"time"

	"fieldsync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NewMemberRepository interface {
	Create(ctx context.Context, m *model.NewMember) error
	List(ctx context.Context) ([]model.NewMember, error)
	ListUnsynced(ctx context.Context) ([]model.NewMember, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.NewMember, error)
	Update(ctx context.Context, id uuid.UUID, data *model.NewMember) error
	MarkSynced(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, msg string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteSynced(ctx context.Context) (int64, error)
	DeleteStalePending(ctx context.Context, olderThan time.Time) (int64, error)
	CountUnsynced(ctx context.Context) (int64, error)
}

type newMemberRepo struct{ db *gorm.DB }

func NewNewMemberRepository(db *gorm.DB) NewMemberRepository {
	return &newMemberRepo{db: db}
}

func (r *newMemberRepo) Create(ctx context.Context, m *model.NewMember) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.Synced = false
	m.SyncStatus = model.SyncPending
	m.SyncError = nil
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *newMemberRepo) List(ctx context.Context) ([]model.NewMember, error) {
	var out []model.NewMember
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *newMemberRepo) ListUnsynced(ctx context.Context) ([]model.NewMember, error) {
	var out []model.NewMember
	err := r.db.WithContext(ctx).Where("synced = ?", false).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *newMemberRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.NewMember, error) {
	var m model.NewMember
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	return &m, err
}

func (r *newMemberRepo) Update(ctx context.Context, id uuid.UUID, data *model.NewMember) error {
	var existing model.NewMember
	if err := r.db.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		return err
	}
	existing.Name = data.Name
	existing.Phone = data.Phone
	existing.GroupID = data.GroupID
	existing.Location = data.Location
	existing.IDNumber = data.IDNumber
	existing.Email = data.Email
	existing.Occupation = data.Occupation
	existing.Notes = data.Notes
	existing.Synced = false
	existing.SyncStatus = model.SyncPending
	existing.SyncError = nil
	return r.db.WithContext(ctx).Save(&existing).Error
}

func (r *newMemberRepo) MarkSynced(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.NewMember{}).Where("id = ?", id).
		Updates(map[string]interface{}{"synced": true, "sync_status": model.SyncSynced, "sync_error": nil}).Error
}

func (r *newMemberRepo) MarkFailed(ctx context.Context, id uuid.UUID, msg string) error {
	return r.db.WithContext(ctx).Model(&model.NewMember{}).Where("id = ?", id).
		Updates(map[string]interface{}{"synced": false, "sync_status": model.SyncFailed, "sync_error": msg}).Error
}

func (r *newMemberRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.NewMember{}, "id = ?", id).Error
}

func (r *newMemberRepo) DeleteSynced(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("synced = ?", true).Delete(&model.NewMember{})
	return res.RowsAffected, res.Error
}

func (r *newMemberRepo) DeleteStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("synced = ? AND created_at < ?", false, olderThan).
		Delete(&model.NewMember{})
	return res.RowsAffected, res.Error
}

func (r *newMemberRepo) CountUnsynced(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.NewMember{}).Where("synced = ?", false).Count(&n).Error
	return n, err
}
