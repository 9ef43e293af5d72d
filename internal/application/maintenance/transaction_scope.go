package maintenance

import (
	"context"

	"github.com/fms/backend/internal/domain/maintenance"
	"github.com/fms/backend/internal/domain/numbering"
)

// TransactionScope provides transactional access to the maintenance
// repositories and the sequence generator. Lifecycle transitions and their
// cascades run through Execute so that every affected row commits or rolls
// back as one atomic unit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the maintenance repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// RequestRepo returns the request repository scoped to the current transaction
	RequestRepo() maintenance.RequestRepository
	// PlanRepo returns the plan repository scoped to the current transaction
	PlanRepo() maintenance.PlanRepository
	// WorkRepo returns the work order repository scoped to the current transaction
	WorkRepo() maintenance.WorkRepository
	// Sequences returns the document number generator scoped to the current transaction
	Sequences() numbering.Generator
}

// NoOpTransactionScope runs the function without a real transaction.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	requestRepo maintenance.RequestRepository
	planRepo    maintenance.PlanRepository
	workRepo    maintenance.WorkRepository
	sequences   numbering.Generator
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given collaborators.
func NewNoOpTransactionScope(
	requestRepo maintenance.RequestRepository,
	planRepo maintenance.PlanRepository,
	workRepo maintenance.WorkRepository,
	sequences numbering.Generator,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		requestRepo: requestRepo,
		planRepo:    planRepo,
		workRepo:    workRepo,
		sequences:   sequences,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// RequestRepo returns the request repository.
func (s *NoOpTransactionScope) RequestRepo() maintenance.RequestRepository {
	return s.requestRepo
}

// PlanRepo returns the plan repository.
func (s *NoOpTransactionScope) PlanRepo() maintenance.PlanRepository {
	return s.planRepo
}

// WorkRepo returns the work order repository.
func (s *NoOpTransactionScope) WorkRepo() maintenance.WorkRepository {
	return s.workRepo
}

// Sequences returns the document number generator.
func (s *NoOpTransactionScope) Sequences() numbering.Generator {
	return s.sequences
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
