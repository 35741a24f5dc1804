package infra

import (
	"fmt"
	"os"
	"path/filepath"

	"fieldsync/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the on-device SQLite store and migrates the schema.
// The store is single-writer (one officer, one device), so a single open
// connection is enough and avoids SQLITE_BUSY under concurrent batch syncs.
func NewDatabase(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on&_journal_mode=WAL"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.CashCollection{},
		&model.Allocation{},
		&model.LoanApplication{},
		&model.LoanDisbursement{},
		&model.AdvanceLoan{},
		&model.GroupCollection{},
		&model.NewMember{},
		&model.MemberBalance{},
		&model.ApprovedLoan{},
		&model.Credentials{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	return db, nil
}
