package stock

import (
	"time"

	"github.com/fms/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiveStockRequest is the input for a stock receipt
type ReceiveStockRequest struct {
	MaterialID    uuid.UUID        `json:"material_id"`
	WarehouseID   uuid.UUID        `json:"warehouse_id"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	Remarks       string           `json:"remarks,omitempty"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
}

// IssueStockRequest is the input for a stock issue
type IssueStockRequest struct {
	MaterialID    uuid.UUID       `json:"material_id"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Remarks       string          `json:"remarks,omitempty"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
}

// TransferStockRequest is the input for a warehouse transfer
type TransferStockRequest struct {
	MaterialID      uuid.UUID       `json:"material_id"`
	FromWarehouseID uuid.UUID       `json:"from_warehouse_id"`
	ToWarehouseID   uuid.UUID       `json:"to_warehouse_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Remarks         string          `json:"remarks,omitempty"`
}

// AdjustStockRequest is the input for a stock adjustment. Remarks are
// mandatory: every correction needs an audit reason.
type AdjustStockRequest struct {
	MaterialID  uuid.UUID       `json:"material_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Remarks     string          `json:"remarks"`
}

// StockEntryResponse is the read model for a ledger entry, with denormalized
// material and warehouse display names.
type StockEntryResponse struct {
	MaterialID    uuid.UUID       `json:"material_id"`
	MaterialName  string          `json:"material_name,omitempty"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// MovementResponse is the read model for one movement log record
type MovementResponse struct {
	MovementNumber  string           `json:"movement_number"`
	Kind            string           `json:"kind"`
	MaterialID      uuid.UUID        `json:"material_id"`
	MaterialName    string           `json:"material_name,omitempty"`
	FromWarehouseID *uuid.UUID       `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   *uuid.UUID       `json:"to_warehouse_id,omitempty"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	Remarks         string           `json:"remarks,omitempty"`
	ReferenceType   string           `json:"reference_type,omitempty"`
	ReferenceID     string           `json:"reference_id,omitempty"`
	OccurredAt      time.Time        `json:"occurred_at"`
}

// EntryListFilter narrows ledger list queries
type EntryListFilter struct {
	MaterialID  *uuid.UUID
	WarehouseID *uuid.UUID
	NonEmpty    bool
	Page        int
	PageSize    int
}

// MovementListFilter narrows movement list queries. Each defined field maps
// to exactly one predicate in the repository filter.
type MovementListFilter struct {
	MaterialID  *uuid.UUID
	WarehouseID *uuid.UUID
	Kind        *string
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
}

// ToMovementResponse maps a movement record to its read model
func ToMovementResponse(m *stock.StockMovement) MovementResponse {
	return MovementResponse{
		MovementNumber:  m.MovementNumber,
		Kind:            m.Kind.String(),
		MaterialID:      m.MaterialID,
		FromWarehouseID: m.FromWarehouseID,
		ToWarehouseID:   m.ToWarehouseID,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		Remarks:         m.Remarks,
		ReferenceType:   m.ReferenceType,
		ReferenceID:     m.ReferenceID,
		OccurredAt:      m.OccurredAt,
	}
}

// ToMovementResponses maps a slice of movement records to read models
func ToMovementResponses(movements []stock.StockMovement) []MovementResponse {
	responses := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, ToMovementResponse(&movements[i]))
	}
	return responses
}
