package persistence

import (
	"context"

	appstock "github.com/fms/backend/internal/application/stock"
	"github.com/fms/backend/internal/domain/numbering"
	"github.com/fms/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormStockTransactionScope implements the stock TransactionScope using GORM
// transactions. Ledger mutation, movement append and number allocation all
// run against the same transaction handle.
type GormStockTransactionScope struct {
	db *gorm.DB
}

// NewGormStockTransactionScope creates a new GormStockTransactionScope
func NewGormStockTransactionScope(db *gorm.DB) *GormStockTransactionScope {
	return &GormStockTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormStockTransactionScope) Execute(ctx context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStockRepositories{tx: tx})
	})
}

// gormStockRepositories provides access to the stock repositories within a transaction
type gormStockRepositories struct {
	tx *gorm.DB
}

// EntryRepo returns the ledger repository scoped to the current transaction
func (r *gormStockRepositories) EntryRepo() stock.StockEntryRepository {
	return NewGormStockEntryRepository(r.tx)
}

// MovementRepo returns the movement log repository scoped to the current transaction
func (r *gormStockRepositories) MovementRepo() stock.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// Sequences returns the number generator scoped to the current transaction
func (r *gormStockRepositories) Sequences() numbering.Generator {
	return NewGormSequenceGenerator(r.tx)
}

// Ensure GormStockTransactionScope implements TransactionScope
var _ appstock.TransactionScope = (*GormStockTransactionScope)(nil)

// Ensure gormStockRepositories implements TransactionalRepositories
var _ appstock.TransactionalRepositories = (*gormStockRepositories)(nil)
