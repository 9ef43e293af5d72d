package stock

import (
	"time"

	"github.com/fms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockEntry represents the quantity on hand for a material at a warehouse.
// The composite identifier is MaterialID + WarehouseID. Entries are created
// on first receipt (or adjustment) into the pair and are never deleted by
// movement operations; a zero-quantity entry stays on the ledger.
type StockEntry struct {
	shared.BaseEntity
	MaterialID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_entry_material_warehouse,priority:1"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_entry_material_warehouse,priority:2"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockEntry) TableName() string {
	return "stock_entries"
}

// NewStockEntry creates an empty ledger entry for a material-warehouse pair
func NewStockEntry(materialID, warehouseID uuid.UUID) (*StockEntry, error) {
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MATERIAL", "Material ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	return &StockEntry{
		BaseEntity:  shared.NewBaseEntity(),
		MaterialID:  materialID,
		WarehouseID: warehouseID,
		Quantity:    decimal.Zero,
	}, nil
}

// Receive adds a positive quantity to the entry
func (e *StockEntry) Receive(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	e.Quantity = e.Quantity.Add(quantity)
	e.UpdatedAt = time.Now()
	return nil
}

// Issue removes a positive quantity from the entry. The entry must hold at
// least the requested quantity; the ledger never goes negative.
func (e *StockEntry) Issue(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if e.Quantity.LessThan(quantity) {
		return shared.ErrInsufficientStock
	}
	e.Quantity = e.Quantity.Sub(quantity)
	e.UpdatedAt = time.Now()
	return nil
}

// SetQuantity sets the absolute quantity (stock adjustment) and returns the
// signed delta against the previous value.
func (e *StockEntry) SetQuantity(newQuantity decimal.Decimal) (decimal.Decimal, error) {
	if newQuantity.IsNegative() {
		return decimal.Zero, shared.ErrInvalidQuantity
	}
	delta := newQuantity.Sub(e.Quantity)
	e.Quantity = newQuantity
	e.UpdatedAt = time.Now()
	return delta, nil
}

// CanFulfill returns true if the entry can satisfy the requested quantity
func (e *StockEntry) CanFulfill(quantity decimal.Decimal) bool {
	return e.Quantity.GreaterThanOrEqual(quantity)
}

// IsEmpty returns true if the entry holds no stock
func (e *StockEntry) IsEmpty() bool {
	return e.Quantity.IsZero()
}
