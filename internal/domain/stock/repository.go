package stock

import (
	"context"
	"time"

	"github.com/fms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockEntryRepository defines the interface for ledger persistence
type StockEntryRepository interface {
	// FindByMaterialAndWarehouse finds the ledger entry for a material-warehouse pair.
	// Returns shared.ErrNotFound when the pair has never held stock.
	FindByMaterialAndWarehouse(ctx context.Context, materialID, warehouseID uuid.UUID) (*StockEntry, error)

	// FindForUpdate loads the entry with a row-level lock held for the
	// duration of the surrounding transaction. Must only be called inside a
	// transaction scope.
	FindForUpdate(ctx context.Context, materialID, warehouseID uuid.UUID) (*StockEntry, error)

	// Create inserts a new ledger entry
	Create(ctx context.Context, entry *StockEntry) error

	// Save persists quantity changes on an existing entry
	Save(ctx context.Context, entry *StockEntry) error

	// FindAll lists ledger entries matching the filter
	FindAll(ctx context.Context, filter EntryFilter) ([]StockEntry, error)

	// Count counts ledger entries matching the filter
	Count(ctx context.Context, filter EntryFilter) (int64, error)
}

// StockMovementRepository defines the interface for the append-only movement log.
// There are deliberately no update or delete methods: movements are immutable.
type StockMovementRepository interface {
	// Create appends a movement record
	Create(ctx context.Context, movement *StockMovement) error

	// FindByNumber finds a movement by its document number
	FindByNumber(ctx context.Context, number string) (*StockMovement, error)

	// FindAll lists movements matching the filter, newest first
	FindAll(ctx context.Context, filter MovementFilter) ([]StockMovement, error)

	// Count counts movements matching the filter
	Count(ctx context.Context, filter MovementFilter) (int64, error)
}

// EntryFilter narrows ledger queries. Nil fields are not applied.
type EntryFilter struct {
	shared.Filter
	MaterialID  *uuid.UUID
	WarehouseID *uuid.UUID
	NonEmpty    bool
}

// MovementFilter narrows movement log queries. Each defined field maps to
// exactly one query predicate; absent fields add nothing.
type MovementFilter struct {
	shared.Filter
	MaterialID  *uuid.UUID
	WarehouseID *uuid.UUID
	Kind        *MovementKind
	From        *time.Time
	To          *time.Time
}
