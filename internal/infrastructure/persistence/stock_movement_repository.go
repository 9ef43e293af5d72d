package persistence

import (
	"context"
	"errors"

	"github.com/fms/backend/internal/domain/shared"
	"github.com/fms/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements the append-only movement log using
// GORM. There are no update or delete paths; history is immutable.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Create appends a movement record. A duplicate movement number surfaces as
// shared.ErrAlreadyExists via the unique index; callers retry with a fresh
// number.
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *stock.StockMovement) error {
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByNumber finds a movement by its document number
func (r *GormStockMovementRepository) FindByNumber(ctx context.Context, number string) (*stock.StockMovement, error) {
	var movement stock.StockMovement
	if err := r.db.WithContext(ctx).
		Where("movement_number = ?", number).
		First(&movement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindAll lists movements matching the filter, newest first
func (r *GormStockMovementRepository) FindAll(ctx context.Context, filter stock.MovementFilter) ([]stock.StockMovement, error) {
	var movements []stock.StockMovement
	query := r.applyPredicates(r.db.WithContext(ctx).Model(&stock.StockMovement{}), filter)
	query = applyPagination(query, filter.Filter, "occurred_at DESC")

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Count counts movements matching the filter
func (r *GormStockMovementRepository) Count(ctx context.Context, filter stock.MovementFilter) (int64, error) {
	var count int64
	query := r.applyPredicates(r.db.WithContext(ctx).Model(&stock.StockMovement{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyPredicates maps each defined filter field to exactly one predicate
func (r *GormStockMovementRepository) applyPredicates(query *gorm.DB, filter stock.MovementFilter) *gorm.DB {
	if filter.MaterialID != nil {
		query = query.Where("material_id = ?", *filter.MaterialID)
	}
	if filter.WarehouseID != nil {
		// A warehouse is involved on either side of a movement
		query = query.Where("from_warehouse_id = ? OR to_warehouse_id = ?", *filter.WarehouseID, *filter.WarehouseID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at < ?", *filter.To)
	}
	return query
}

// Ensure GormStockMovementRepository implements StockMovementRepository
var _ stock.StockMovementRepository = (*GormStockMovementRepository)(nil)
