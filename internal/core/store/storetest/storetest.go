// Package storetest opens throwaway in-memory databases for repository and handler tests.
package storetest

import (
	"fmt"

	expenseDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/expense"
	procurementDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/procurement"
	sareeDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/saree"
	userDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSQLite returns a migrated in-memory database. The pool is pinned to one
// connection because every new sqlite memory connection is a fresh database.
func OpenSQLite() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&userDatamodel.User{},
		&sareeDatamodel.Saree{},
		&procurementDatamodel.ProcurementRecord{},
		&expenseDatamodel.Expense{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, nil
}
