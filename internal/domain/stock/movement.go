package stock

import (
	"fmt"
	"time"

	"github.com/fms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind represents the kind of stock movement
type MovementKind string

const (
	// MovementKindReceipt represents stock coming into a warehouse
	MovementKindReceipt MovementKind = "RECEIPT"
	// MovementKindIssue represents stock leaving a warehouse
	MovementKindIssue MovementKind = "ISSUE"
	// MovementKindTransfer represents stock moved between two warehouses
	MovementKindTransfer MovementKind = "TRANSFER"
	// MovementKindAdjustment represents a correction to the on-hand quantity
	MovementKindAdjustment MovementKind = "ADJUSTMENT"
)

// String returns the string representation of MovementKind
func (k MovementKind) String() string {
	return string(k)
}

// IsValid returns true if the movement kind is valid
func (k MovementKind) IsValid() bool {
	switch k {
	case MovementKindReceipt, MovementKindIssue, MovementKindTransfer, MovementKindAdjustment:
		return true
	}
	return false
}

// StockMovement is the immutable record of one ledger-affecting event.
// Movements are append-only: corrections are made with new adjustment
// movements, never by editing history. Quantity is always positive; the
// direction is carried by the kind and the warehouse sides:
//
//	RECEIPT     only ToWarehouseID
//	ISSUE       only FromWarehouseID
//	TRANSFER    both, and they differ
//	ADJUSTMENT  exactly one side, chosen by the sign of the delta
type StockMovement struct {
	shared.BaseEntity
	MovementNumber  string           `gorm:"type:varchar(30);not null;uniqueIndex"`
	Kind            MovementKind     `gorm:"type:varchar(20);not null;index:idx_stock_movement_kind"`
	MaterialID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_stock_movement_material"`
	FromWarehouseID *uuid.UUID       `gorm:"type:uuid;index:idx_stock_movement_from"`
	ToWarehouseID   *uuid.UUID       `gorm:"type:uuid;index:idx_stock_movement_to"`
	Quantity        decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	UnitPrice       *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Remarks         string           `gorm:"type:varchar(500)"`
	ReferenceType   string           `gorm:"type:varchar(50);index:idx_stock_movement_ref"`
	ReferenceID     string           `gorm:"type:varchar(50);index:idx_stock_movement_ref"`
	OccurredAt      time.Time        `gorm:"type:timestamptz;not null;index:idx_stock_movement_occurred"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

func newStockMovement(number string, kind MovementKind, materialID uuid.UUID, quantity decimal.Decimal, occurredAt time.Time) (*StockMovement, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_NUMBER", "Movement number cannot be empty")
	}
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MATERIAL", "Material ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	return &StockMovement{
		BaseEntity:     shared.NewBaseEntity(),
		MovementNumber: number,
		Kind:           kind,
		MaterialID:     materialID,
		Quantity:       quantity,
		OccurredAt:     occurredAt,
	}, nil
}

// NewReceiptMovement creates a receipt movement into a warehouse
func NewReceiptMovement(number string, materialID, warehouseID uuid.UUID, quantity decimal.Decimal, occurredAt time.Time) (*StockMovement, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	m, err := newStockMovement(number, MovementKindReceipt, materialID, quantity, occurredAt)
	if err != nil {
		return nil, err
	}
	m.ToWarehouseID = &warehouseID
	return m, nil
}

// NewIssueMovement creates an issue movement out of a warehouse
func NewIssueMovement(number string, materialID, warehouseID uuid.UUID, quantity decimal.Decimal, occurredAt time.Time) (*StockMovement, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	m, err := newStockMovement(number, MovementKindIssue, materialID, quantity, occurredAt)
	if err != nil {
		return nil, err
	}
	m.FromWarehouseID = &warehouseID
	return m, nil
}

// NewTransferMovement creates a transfer movement between two warehouses
func NewTransferMovement(number string, materialID, fromWarehouseID, toWarehouseID uuid.UUID, quantity decimal.Decimal, occurredAt time.Time) (*StockMovement, error) {
	if fromWarehouseID == uuid.Nil || toWarehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if fromWarehouseID == toWarehouseID {
		return nil, shared.ErrSameWarehouse
	}
	m, err := newStockMovement(number, MovementKindTransfer, materialID, quantity, occurredAt)
	if err != nil {
		return nil, err
	}
	m.FromWarehouseID = &fromWarehouseID
	m.ToWarehouseID = &toWarehouseID
	return m, nil
}

// NewAdjustmentMovement creates an adjustment movement. The delta is the
// signed difference between the counted and the recorded quantity; its sign
// picks the warehouse side and the stored quantity is abs(delta). Remarks
// are annotated with the before/after values for audit traceability.
func NewAdjustmentMovement(number string, materialID, warehouseID uuid.UUID, delta, before, after decimal.Decimal, remarks string, occurredAt time.Time) (*StockMovement, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	m, err := newStockMovement(number, MovementKindAdjustment, materialID, delta.Abs(), occurredAt)
	if err != nil {
		return nil, err
	}
	if delta.IsNegative() {
		m.FromWarehouseID = &warehouseID
	} else {
		m.ToWarehouseID = &warehouseID
	}
	m.Remarks = fmt.Sprintf("%s (before: %s, after: %s)", remarks, before.String(), after.String())
	return m, nil
}

// WithUnitPrice sets the unit price on the movement
func (m *StockMovement) WithUnitPrice(price decimal.Decimal) *StockMovement {
	m.UnitPrice = &price
	return m
}

// WithRemarks sets free-text remarks on the movement
func (m *StockMovement) WithRemarks(remarks string) *StockMovement {
	m.Remarks = remarks
	return m
}

// WithReference sets the originating business document reference
func (m *StockMovement) WithReference(refType, refID string) *StockMovement {
	m.ReferenceType = refType
	m.ReferenceID = refID
	return m
}

// SignedQuantityFor returns the movement's effect on the given warehouse:
// positive when stock flows in, negative when stock flows out, zero when the
// warehouse is not involved. Replaying movements through this function in
// timestamp order reproduces the ledger quantity exactly.
func (m *StockMovement) SignedQuantityFor(warehouseID uuid.UUID) decimal.Decimal {
	if m.ToWarehouseID != nil && *m.ToWarehouseID == warehouseID {
		return m.Quantity
	}
	if m.FromWarehouseID != nil && *m.FromWarehouseID == warehouseID {
		return m.Quantity.Neg()
	}
	return decimal.Zero
}
