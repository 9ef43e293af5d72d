package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/fms/backend/internal/domain/shared"
	"github.com/fms/backend/internal/domain/stock"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockEntryRepository implements StockEntryRepository using GORM
type GormStockEntryRepository struct {
	db *gorm.DB
}

// NewGormStockEntryRepository creates a new GormStockEntryRepository
func NewGormStockEntryRepository(db *gorm.DB) *GormStockEntryRepository {
	return &GormStockEntryRepository{db: db}
}

// FindByMaterialAndWarehouse finds the ledger entry for a material-warehouse pair
func (r *GormStockEntryRepository) FindByMaterialAndWarehouse(ctx context.Context, materialID, warehouseID uuid.UUID) (*stock.StockEntry, error) {
	var entry stock.StockEntry
	if err := r.db.WithContext(ctx).
		Where("material_id = ? AND warehouse_id = ?", materialID, warehouseID).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindForUpdate loads the entry with a FOR UPDATE row lock. Must run inside
// a transaction; the lock is released on commit or rollback.
func (r *GormStockEntryRepository) FindForUpdate(ctx context.Context, materialID, warehouseID uuid.UUID) (*stock.StockEntry, error) {
	var entry stock.StockEntry
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("material_id = ? AND warehouse_id = ?", materialID, warehouseID).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Create inserts a new ledger entry. A concurrent insert of the same pair
// surfaces as shared.ErrAlreadyExists via the composite unique index.
func (r *GormStockEntryRepository) Create(ctx context.Context, entry *stock.StockEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists quantity changes on an existing entry
func (r *GormStockEntryRepository) Save(ctx context.Context, entry *stock.StockEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// FindAll lists ledger entries matching the filter
func (r *GormStockEntryRepository) FindAll(ctx context.Context, filter stock.EntryFilter) ([]stock.StockEntry, error) {
	var entries []stock.StockEntry
	query := r.applyPredicates(r.db.WithContext(ctx).Model(&stock.StockEntry{}), filter)
	query = applyPagination(query, filter.Filter, "updated_at DESC")

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Count counts ledger entries matching the filter
func (r *GormStockEntryRepository) Count(ctx context.Context, filter stock.EntryFilter) (int64, error) {
	var count int64
	query := r.applyPredicates(r.db.WithContext(ctx).Model(&stock.StockEntry{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormStockEntryRepository) applyPredicates(query *gorm.DB, filter stock.EntryFilter) *gorm.DB {
	if filter.MaterialID != nil {
		query = query.Where("material_id = ?", *filter.MaterialID)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.NonEmpty {
		query = query.Where("quantity > 0")
	}
	return query
}

// applyPagination applies pagination and ordering shared by the list queries
func applyPagination(query *gorm.DB, filter shared.Filter, defaultOrder string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		dir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			dir = "DESC"
		}
		return query.Order(filter.OrderBy + " " + dir)
	}
	return query.Order(defaultOrder)
}

// Ensure GormStockEntryRepository implements StockEntryRepository
var _ stock.StockEntryRepository = (*GormStockEntryRepository)(nil)
