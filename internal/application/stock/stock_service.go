package stock

import (
	"context"
	"errors"
	"time"

	"github.com/fms/backend/internal/domain/numbering"
	"github.com/fms/backend/internal/domain/shared"
	"github.com/fms/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxNumberRetries bounds the retry loop when a generated document number or
// a freshly created ledger row loses a uniqueness race. The sequence counter
// itself is incremented atomically, so a conflict here means another writer
// committed the same row between our allocation and insert; one retry
// normally resolves it.
const maxNumberRetries = 3

// DisplayNameResolver resolves material and warehouse display names for the
// denormalized read-side fields. Resolution is a convenience, not an
// invariant: a failed lookup yields an empty name, never a failed operation.
type DisplayNameResolver interface {
	MaterialName(ctx context.Context, materialID uuid.UUID) (string, error)
	WarehouseName(ctx context.Context, warehouseID uuid.UUID) (string, error)
}

// StockService orchestrates the four inventory movements. Each operation
// validates its input before touching storage, then executes the ledger
// mutation(s), the movement append and the number allocation inside one
// transaction scope.
type StockService struct {
	scope        TransactionScope
	entryRepo    stock.StockEntryRepository
	movementRepo stock.StockMovementRepository
	resolver     DisplayNameResolver
	now          func() time.Time
}

// NewStockService creates a new StockService. The entry and movement
// repositories are used for the read surface only; all mutations go through
// the transaction scope.
func NewStockService(
	scope TransactionScope,
	entryRepo stock.StockEntryRepository,
	movementRepo stock.StockMovementRepository,
	resolver DisplayNameResolver,
) *StockService {
	return &StockService{
		scope:        scope,
		entryRepo:    entryRepo,
		movementRepo: movementRepo,
		resolver:     resolver,
		now:          time.Now,
	}
}

// SetClock overrides the time source (used by tests)
func (s *StockService) SetClock(now func() time.Time) {
	s.now = now
}

// Receive books a positive quantity into a warehouse, creating the ledger
// entry on first receipt.
func (s *StockService) Receive(ctx context.Context, req ReceiveStockRequest) (*StockEntryResponse, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}

	var entry *stock.StockEntry
	err := s.withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			e, created, err := s.lockOrCreateEntry(ctx, repos, req.MaterialID, req.WarehouseID)
			if err != nil {
				return err
			}
			if err := e.Receive(req.Quantity); err != nil {
				return err
			}
			if err := s.persistEntry(ctx, repos, e, created); err != nil {
				return err
			}

			occurredAt := s.now()
			number, err := repos.Sequences().Next(ctx, numbering.TransactionPrefix(occurredAt))
			if err != nil {
				return err
			}
			movement, err := stock.NewReceiptMovement(number, req.MaterialID, req.WarehouseID, req.Quantity, occurredAt)
			if err != nil {
				return err
			}
			if req.UnitPrice != nil {
				movement.WithUnitPrice(*req.UnitPrice)
			}
			movement.WithRemarks(req.Remarks).WithReference(req.ReferenceType, req.ReferenceID)
			if err := repos.MovementRepo().Create(ctx, movement); err != nil {
				return err
			}

			entry = e
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.toEntryResponse(ctx, entry), nil
}

// Issue books a positive quantity out of a warehouse. The entry must exist
// and hold at least the requested quantity; the check-then-decrement runs
// under a row lock so a concurrent issue cannot slip between them.
func (s *StockService) Issue(ctx context.Context, req IssueStockRequest) (*StockEntryResponse, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}

	var entry *stock.StockEntry
	err := s.withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			e, err := repos.EntryRepo().FindForUpdate(ctx, req.MaterialID, req.WarehouseID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					// Absent entry means implicit zero on hand
					return shared.ErrInsufficientStock
				}
				return err
			}
			if err := e.Issue(req.Quantity); err != nil {
				return err
			}
			if err := repos.EntryRepo().Save(ctx, e); err != nil {
				return err
			}

			occurredAt := s.now()
			number, err := repos.Sequences().Next(ctx, numbering.TransactionPrefix(occurredAt))
			if err != nil {
				return err
			}
			movement, err := stock.NewIssueMovement(number, req.MaterialID, req.WarehouseID, req.Quantity, occurredAt)
			if err != nil {
				return err
			}
			movement.WithRemarks(req.Remarks).WithReference(req.ReferenceType, req.ReferenceID)
			if err := repos.MovementRepo().Create(ctx, movement); err != nil {
				return err
			}

			entry = e
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.toEntryResponse(ctx, entry), nil
}

// Transfer moves a positive quantity between two warehouses as one atomic
// unit: source decrement, destination increment and a single transfer
// movement carrying both warehouse ids. Both ledger rows are locked in a
// fixed global order (sorted by warehouse id) so two opposite-direction
// transfers cannot deadlock.
func (s *StockService) Transfer(ctx context.Context, req TransferStockRequest) (*StockEntryResponse, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if req.FromWarehouseID == req.ToWarehouseID {
		return nil, shared.ErrSameWarehouse
	}

	var destination *stock.StockEntry
	err := s.withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			source, dest, destCreated, err := s.lockTransferPair(ctx, repos, req)
			if err != nil {
				return err
			}

			if err := source.Issue(req.Quantity); err != nil {
				return err
			}
			if err := dest.Receive(req.Quantity); err != nil {
				return err
			}
			if err := repos.EntryRepo().Save(ctx, source); err != nil {
				return err
			}
			if err := s.persistEntry(ctx, repos, dest, destCreated); err != nil {
				return err
			}

			occurredAt := s.now()
			number, err := repos.Sequences().Next(ctx, numbering.TransactionPrefix(occurredAt))
			if err != nil {
				return err
			}
			movement, err := stock.NewTransferMovement(number, req.MaterialID, req.FromWarehouseID, req.ToWarehouseID, req.Quantity, occurredAt)
			if err != nil {
				return err
			}
			movement.WithRemarks(req.Remarks)
			if err := repos.MovementRepo().Create(ctx, movement); err != nil {
				return err
			}

			destination = dest
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.toEntryResponse(ctx, destination), nil
}

// Adjust sets the absolute on-hand quantity after a physical count. The
// movement direction follows the sign of the delta and its quantity is
// abs(delta); remarks are annotated with the before/after values. A count
// matching the ledger exactly updates nothing and appends no movement.
func (s *StockService) Adjust(ctx context.Context, req AdjustStockRequest) (*StockEntryResponse, error) {
	if req.NewQuantity.IsNegative() {
		return nil, shared.ErrInvalidQuantity
	}
	if req.Remarks == "" {
		return nil, shared.NewDomainError("INVALID_REMARKS", "Adjustment remarks are required")
	}

	var entry *stock.StockEntry
	err := s.withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			e, created, err := s.lockOrCreateEntry(ctx, repos, req.MaterialID, req.WarehouseID)
			if err != nil {
				return err
			}

			before := e.Quantity
			delta, err := e.SetQuantity(req.NewQuantity)
			if err != nil {
				return err
			}
			if delta.IsZero() && !created {
				entry = e
				return nil
			}
			if err := s.persistEntry(ctx, repos, e, created); err != nil {
				return err
			}
			if delta.IsZero() {
				entry = e
				return nil
			}

			occurredAt := s.now()
			number, err := repos.Sequences().Next(ctx, numbering.TransactionPrefix(occurredAt))
			if err != nil {
				return err
			}
			movement, err := stock.NewAdjustmentMovement(number, req.MaterialID, req.WarehouseID, delta, before, e.Quantity, req.Remarks, occurredAt)
			if err != nil {
				return err
			}
			if err := repos.MovementRepo().Create(ctx, movement); err != nil {
				return err
			}

			entry = e
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.toEntryResponse(ctx, entry), nil
}

// GetEntry returns the ledger entry for a material-warehouse pair. An absent
// pair reads as a zero-quantity entry.
func (s *StockService) GetEntry(ctx context.Context, materialID, warehouseID uuid.UUID) (*StockEntryResponse, error) {
	entry, err := s.entryRepo.FindByMaterialAndWarehouse(ctx, materialID, warehouseID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return &StockEntryResponse{
				MaterialID:  materialID,
				WarehouseID: warehouseID,
				Quantity:    decimal.Zero,
			}, nil
		}
		return nil, err
	}
	return s.toEntryResponse(ctx, entry), nil
}

// ListEntries lists ledger entries with filtering and pagination
func (s *StockService) ListEntries(ctx context.Context, filter EntryListFilter) ([]StockEntryResponse, int64, error) {
	domainFilter := stock.EntryFilter{
		Filter:      shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "updated_at", OrderDir: "desc"},
		MaterialID:  filter.MaterialID,
		WarehouseID: filter.WarehouseID,
		NonEmpty:    filter.NonEmpty,
	}
	domainFilter.Normalize()

	entries, err := s.entryRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.entryRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]StockEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, *s.toEntryResponse(ctx, &entries[i]))
	}
	return responses, total, nil
}

// ListMovements lists movement log records, newest first, with an explicit
// filter: every defined field becomes exactly one predicate.
func (s *StockService) ListMovements(ctx context.Context, filter MovementListFilter) ([]MovementResponse, int64, error) {
	domainFilter := stock.MovementFilter{
		Filter:      shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "occurred_at", OrderDir: "desc"},
		MaterialID:  filter.MaterialID,
		WarehouseID: filter.WarehouseID,
		From:        filter.From,
		To:          filter.To,
	}
	domainFilter.Normalize()
	if filter.Kind != nil {
		kind := stock.MovementKind(*filter.Kind)
		if !kind.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_KIND", "Unknown movement kind")
		}
		domainFilter.Kind = &kind
	}

	movements, err := s.movementRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.movementRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToMovementResponses(movements), total, nil
}

// lockOrCreateEntry loads the ledger entry under a row lock, creating a
// fresh zero-quantity entry when the pair has never held stock. The created
// flag tells the caller to insert rather than update.
func (s *StockService) lockOrCreateEntry(ctx context.Context, repos TransactionalRepositories, materialID, warehouseID uuid.UUID) (*stock.StockEntry, bool, error) {
	entry, err := repos.EntryRepo().FindForUpdate(ctx, materialID, warehouseID)
	if err == nil {
		return entry, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}
	entry, err = stock.NewStockEntry(materialID, warehouseID)
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// persistEntry inserts or updates depending on how the entry was obtained
func (s *StockService) persistEntry(ctx context.Context, repos TransactionalRepositories, entry *stock.StockEntry, created bool) error {
	if created {
		return repos.EntryRepo().Create(ctx, entry)
	}
	return repos.EntryRepo().Save(ctx, entry)
}

// lockTransferPair acquires both transfer rows in a fixed global order
// (sorted by warehouse id) to avoid deadlock between opposite-direction
// transfers. The source must exist; an absent source reads as zero stock.
func (s *StockService) lockTransferPair(ctx context.Context, repos TransactionalRepositories, req TransferStockRequest) (source, dest *stock.StockEntry, destCreated bool, err error) {
	lockSource := func() error {
		e, err := repos.EntryRepo().FindForUpdate(ctx, req.MaterialID, req.FromWarehouseID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrInsufficientStock
			}
			return err
		}
		source = e
		return nil
	}
	lockDest := func() error {
		e, created, err := s.lockOrCreateEntry(ctx, repos, req.MaterialID, req.ToWarehouseID)
		if err != nil {
			return err
		}
		dest = e
		destCreated = created
		return nil
	}

	if req.FromWarehouseID.String() < req.ToWarehouseID.String() {
		if err = lockSource(); err == nil {
			err = lockDest()
		}
	} else {
		if err = lockDest(); err == nil {
			err = lockSource()
		}
	}
	if err != nil {
		return nil, nil, false, err
	}
	return source, dest, destCreated, nil
}

// withConflictRetry re-runs the operation when a uniqueness race is lost
// (duplicate movement number or a concurrently created ledger row). Bounded;
// exhaustion surfaces as SEQUENCE_CONFLICT.
func (s *StockService) withConflictRetry(op func() error) error {
	var err error
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		err = op()
		if err == nil || !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
	}
	return shared.ErrSequenceConflict
}

// toEntryResponse builds the read model with denormalized display names
func (s *StockService) toEntryResponse(ctx context.Context, entry *stock.StockEntry) *StockEntryResponse {
	resp := &StockEntryResponse{
		MaterialID:  entry.MaterialID,
		WarehouseID: entry.WarehouseID,
		Quantity:    entry.Quantity,
		UpdatedAt:   entry.UpdatedAt,
	}
	if s.resolver != nil {
		if name, err := s.resolver.MaterialName(ctx, entry.MaterialID); err == nil {
			resp.MaterialName = name
		}
		if name, err := s.resolver.WarehouseName(ctx, entry.WarehouseID); err == nil {
			resp.WarehouseName = name
		}
	}
	return resp
}
