package stock

import (
	"context"

	"github.com/fms/backend/internal/domain/numbering"
	"github.com/fms/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to the ledger, the movement
// log and the sequence generator. Every engine operation runs through
// Execute so that its ledger mutation(s), movement append and number
// allocation commit or roll back as one atomic unit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the stock repositories within
// a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// EntryRepo returns the ledger repository scoped to the current transaction
	EntryRepo() stock.StockEntryRepository
	// MovementRepo returns the movement log repository scoped to the current transaction
	MovementRepo() stock.StockMovementRepository
	// Sequences returns the document number generator scoped to the current transaction
	Sequences() numbering.Generator
}

// NoOpTransactionScope runs the function without a real transaction.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	entryRepo    stock.StockEntryRepository
	movementRepo stock.StockMovementRepository
	sequences    numbering.Generator
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given collaborators.
func NewNoOpTransactionScope(
	entryRepo stock.StockEntryRepository,
	movementRepo stock.StockMovementRepository,
	sequences numbering.Generator,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		entryRepo:    entryRepo,
		movementRepo: movementRepo,
		sequences:    sequences,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// EntryRepo returns the ledger repository.
func (s *NoOpTransactionScope) EntryRepo() stock.StockEntryRepository {
	return s.entryRepo
}

// MovementRepo returns the movement log repository.
func (s *NoOpTransactionScope) MovementRepo() stock.StockMovementRepository {
	return s.movementRepo
}

// Sequences returns the document number generator.
func (s *NoOpTransactionScope) Sequences() numbering.Generator {
	return s.sequences
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
