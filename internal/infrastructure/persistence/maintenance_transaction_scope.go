package persistence

import (
	"context"

	appmaint "github.com/fms/backend/internal/application/maintenance"
	"github.com/fms/backend/internal/domain/maintenance"
	"github.com/fms/backend/internal/domain/numbering"
	"gorm.io/gorm"
)

// GormMaintenanceTransactionScope implements the maintenance TransactionScope
// using GORM transactions. Transitions and their cascades share one handle.
type GormMaintenanceTransactionScope struct {
	db *gorm.DB
}

// NewGormMaintenanceTransactionScope creates a new GormMaintenanceTransactionScope
func NewGormMaintenanceTransactionScope(db *gorm.DB) *GormMaintenanceTransactionScope {
	return &GormMaintenanceTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormMaintenanceTransactionScope) Execute(ctx context.Context, fn func(repos appmaint.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormMaintenanceRepositories{tx: tx})
	})
}

// gormMaintenanceRepositories provides access to the maintenance repositories
// within a transaction
type gormMaintenanceRepositories struct {
	tx *gorm.DB
}

// RequestRepo returns the request repository scoped to the current transaction
func (r *gormMaintenanceRepositories) RequestRepo() maintenance.RequestRepository {
	return NewGormRequestRepository(r.tx)
}

// PlanRepo returns the plan repository scoped to the current transaction
func (r *gormMaintenanceRepositories) PlanRepo() maintenance.PlanRepository {
	return NewGormPlanRepository(r.tx)
}

// WorkRepo returns the work order repository scoped to the current transaction
func (r *gormMaintenanceRepositories) WorkRepo() maintenance.WorkRepository {
	return NewGormWorkRepository(r.tx)
}

// Sequences returns the number generator scoped to the current transaction
func (r *gormMaintenanceRepositories) Sequences() numbering.Generator {
	return NewGormSequenceGenerator(r.tx)
}

// Ensure GormMaintenanceTransactionScope implements TransactionScope
var _ appmaint.TransactionScope = (*GormMaintenanceTransactionScope)(nil)

// Ensure gormMaintenanceRepositories implements TransactionalRepositories
var _ appmaint.TransactionalRepositories = (*gormMaintenanceRepositories)(nil)
