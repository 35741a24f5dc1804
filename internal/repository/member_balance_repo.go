package repository

import (
	"context"

	"fieldsync/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceSummary aggregates the cached snapshot for dashboard display.
type BalanceSummary struct {
	Members          int64
	Groups           int64
	TotalSavings     decimal.Decimal
	TotalLoans       decimal.Decimal
	TotalAdvances    decimal.Decimal
	TotalOutstanding decimal.Decimal
}

type MemberBalanceRepository interface {
	// ReplaceAll clears the cache and bulk-inserts the fresh snapshot in
	// one transaction. Rows are never merged field-by-field.
	ReplaceAll(ctx context.Context, balances []model.MemberBalance) error
	Upsert(ctx context.Context, b *model.MemberBalance) error
	List(ctx context.Context) ([]model.MemberBalance, error)
	Search(ctx context.Context, query string) ([]model.MemberBalance, error)
	FindByMemberID(ctx context.Context, memberID string) (*model.MemberBalance, error)
	FindByMemberIDs(ctx context.Context, memberIDs []string) ([]model.MemberBalance, error)
	Summary(ctx context.Context) (*BalanceSummary, error)
}

type memberBalanceRepo struct{ db *gorm.DB }

func NewMemberBalanceRepository(db *gorm.DB) MemberBalanceRepository {
	return &memberBalanceRepo{db: db}
}

func (r *memberBalanceRepo) ReplaceAll(ctx context.Context, balances []model.MemberBalance) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.MemberBalance{}).Error; err != nil {
			return err
		}
		if len(balances) == 0 {
			return nil
		}
		return tx.CreateInBatches(balances, 100).Error
	})
}

func (r *memberBalanceRepo) Upsert(ctx context.Context, b *model.MemberBalance) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *memberBalanceRepo) List(ctx context.Context) ([]model.MemberBalance, error) {
	var out []model.MemberBalance
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *memberBalanceRepo) Search(ctx context.Context, query string) ([]model.MemberBalance, error) {
	var out []model.MemberBalance
	like := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("name LIKE ? OR phone LIKE ? OR member_id LIKE ?", like, like, like).
		Order("name ASC").Find(&out).Error
	return out, err
}

func (r *memberBalanceRepo) FindByMemberID(ctx context.Context, memberID string) (*model.MemberBalance, error) {
	var b model.MemberBalance
	err := r.db.WithContext(ctx).First(&b, "member_id = ?", memberID).Error
	return &b, err
}

func (r *memberBalanceRepo) FindByMemberIDs(ctx context.Context, memberIDs []string) ([]model.MemberBalance, error) {
	var out []model.MemberBalance
	err := r.db.WithContext(ctx).Where("member_id IN ?", memberIDs).Find(&out).Error
	return out, err
}

func (r *memberBalanceRepo) Summary(ctx context.Context) (*BalanceSummary, error) {
	var s BalanceSummary
	db := r.db.WithContext(ctx).Model(&model.MemberBalance{})

	if err := db.Count(&s.Members).Error; err != nil {
		return nil, err
	}
	if err := db.Distinct("group_id").Count(&s.Groups).Error; err != nil {
		return nil, err
	}

	var totals struct {
		Savings     decimal.Decimal
		Loans       decimal.Decimal
		Advances    decimal.Decimal
		Outstanding decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.MemberBalance{}).
		Select("COALESCE(SUM(savings_balance),0) AS savings, COALESCE(SUM(loan_balance),0) AS loans, COALESCE(SUM(advance_loan_balance),0) AS advances, COALESCE(SUM(total_outstanding),0) AS outstanding").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	s.TotalSavings = totals.Savings
	s.TotalLoans = totals.Loans
	s.TotalAdvances = totals.Advances
	s.TotalOutstanding = totals.Outstanding
	return &s, nil
}
