package repository

import (
	"context"
	"errors"

	"fieldsync/internal/model"

	"gorm.io/gorm"
)

type CredentialsRepository interface {
	// Get returns the single credentials row, or gorm.ErrRecordNotFound.
	Get(ctx context.Context) (*model.Credentials, error)
	// Save enforces singularity with clear-then-insert.
	Save(ctx context.Context, c *model.Credentials) error
	// Update mutates the existing row, falling back to Save when none exists.
	Update(ctx context.Context, c *model.Credentials) error
	Clear(ctx context.Context) error
}

type credentialsRepo struct{ db *gorm.DB }

func NewCredentialsRepository(db *gorm.DB) CredentialsRepository {
	return &credentialsRepo{db: db}
}

func (r *credentialsRepo) Get(ctx context.Context) (*model.Credentials, error) {
	var c model.Credentials
	err := r.db.WithContext(ctx).First(&c).Error
	return &c, err
}

func (r *credentialsRepo) Save(ctx context.Context, c *model.Credentials) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Credentials{}).Error; err != nil {
			return err
		}
		c.ID = 0
		return tx.Create(c).Error
	})
}

func (r *credentialsRepo) Update(ctx context.Context, c *model.Credentials) error {
	var existing model.Credentials
	err := r.db.WithContext(ctx).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.Save(ctx, c)
	}
	if err != nil {
		return err
	}
	c.ID = existing.ID
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *credentialsRepo) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&model.Credentials{}).Error
}
