package repository

import (
	"context"

	"fieldsync/internal/model"

	"gorm.io/gorm"
)

type ApprovedLoanRepository interface {
	// ReplaceAll swaps the today's-loans cache wholesale.
	ReplaceAll(ctx context.Context, loans []model.ApprovedLoan) error
	List(ctx context.Context) ([]model.ApprovedLoan, error)
	ListUndisbursed(ctx context.Context) ([]model.ApprovedLoan, error)
	FindByLoanID(ctx context.Context, loanID string) (*model.ApprovedLoan, error)
	MarkDisbursed(ctx context.Context, loanID string) error
}

type approvedLoanRepo struct{ db *gorm.DB }

func NewApprovedLoanRepository(db *gorm.DB) ApprovedLoanRepository {
	return &approvedLoanRepo{db: db}
}

func (r *approvedLoanRepo) ReplaceAll(ctx context.Context, loans []model.ApprovedLoan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.ApprovedLoan{}).Error; err != nil {
			return err
		}
		if len(loans) == 0 {
			return nil
		}
		return tx.CreateInBatches(loans, 100).Error
	})
}

func (r *approvedLoanRepo) List(ctx context.Context) ([]model.ApprovedLoan, error) {
	var out []model.ApprovedLoan
	err := r.db.WithContext(ctx).Order("member_name ASC").Find(&out).Error
	return out, err
}

func (r *approvedLoanRepo) ListUndisbursed(ctx context.Context) ([]model.ApprovedLoan, error) {
	var out []model.ApprovedLoan
	err := r.db.WithContext(ctx).Where("disbursed = ?", false).Order("member_name ASC").Find(&out).Error
	return out, err
}

func (r *approvedLoanRepo) FindByLoanID(ctx context.Context, loanID string) (*model.ApprovedLoan, error) {
	var l model.ApprovedLoan
	err := r.db.WithContext(ctx).First(&l, "loan_id = ?", loanID).Error
	return &l, err
}

func (r *approvedLoanRepo) MarkDisbursed(ctx context.Context, loanID string) error {
	return r.db.WithContext(ctx).Model(&model.ApprovedLoan{}).
		Where("loan_id = ?", loanID).Update("disbursed", true).Error
}
