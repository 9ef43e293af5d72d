package handler

import (
	"time"

	stockapp "github.com/fms/backend/internal/application/stock"
	"github.com/fms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockHandler handles stock ledger API endpoints
type StockHandler struct {
	BaseHandler
	stockService *stockapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *stockapp.StockService) *StockHandler {
	return &StockHandler{
		stockService: stockService,
	}
}

// RegisterRoutes registers stock routes on the given group
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.POST("/receipts", h.Receive)
		stock.POST("/issues", h.Issue)
		stock.POST("/transfers", h.Transfer)
		stock.POST("/adjustments", h.Adjust)
		stock.GET("/entries", h.ListEntries)
		stock.GET("/entries/lookup", h.GetEntry)
		stock.GET("/movements", h.ListMovements)
	}
}

// ReceiveRequest represents a request to record a stock receipt
type ReceiveRequest struct {
	MaterialID    string   `json:"material_id" binding:"required,uuid"`
	WarehouseID   string   `json:"warehouse_id" binding:"required,uuid"`
	Quantity      float64  `json:"quantity" binding:"required,gt=0"`
	UnitPrice     *float64 `json:"unit_price" binding:"omitempty,gte=0"`
	Remarks       string   `json:"remarks" binding:"max=500"`
	ReferenceType string   `json:"reference_type" binding:"max=50"`
	ReferenceID   string   `json:"reference_id" binding:"max=50"`
}

// IssueRequest represents a request to record a stock issue
type IssueRequest struct {
	MaterialID    string  `json:"material_id" binding:"required,uuid"`
	WarehouseID   string  `json:"warehouse_id" binding:"required,uuid"`
	Quantity      float64 `json:"quantity" binding:"required,gt=0"`
	Remarks       string  `json:"remarks" binding:"max=500"`
	ReferenceType string  `json:"reference_type" binding:"max=50"`
	ReferenceID   string  `json:"reference_id" binding:"max=50"`
}

// TransferRequest represents a request to move stock between warehouses
type TransferRequest struct {
	MaterialID      string  `json:"material_id" binding:"required,uuid"`
	FromWarehouseID string  `json:"from_warehouse_id" binding:"required,uuid"`
	ToWarehouseID   string  `json:"to_warehouse_id" binding:"required,uuid"`
	Quantity        float64 `json:"quantity" binding:"required,gt=0"`
	Remarks         string  `json:"remarks" binding:"max=500"`
}

// AdjustRequest represents a request to correct a ledger entry to a
// counted quantity
type AdjustRequest struct {
	MaterialID  string  `json:"material_id" binding:"required,uuid"`
	WarehouseID string  `json:"warehouse_id" binding:"required,uuid"`
	NewQuantity float64 `json:"new_quantity" binding:"gte=0"`
	Remarks     string  `json:"remarks" binding:"required,min=1,max=500"`
}

// Receive records a stock receipt and returns the updated ledger entry
func (h *StockHandler) Receive(c *gin.Context) {
	var req ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	appReq := stockapp.ReceiveStockRequest{
		MaterialID:    uuid.MustParse(req.MaterialID),
		WarehouseID:   uuid.MustParse(req.WarehouseID),
		Quantity:      decimal.NewFromFloat(req.Quantity),
		Remarks:       req.Remarks,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
	}
	if req.UnitPrice != nil {
		price := decimal.NewFromFloat(*req.UnitPrice)
		appReq.UnitPrice = &price
	}

	entry, err := h.stockService.Receive(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entry)
}

// Issue records a stock issue and returns the updated ledger entry
func (h *StockHandler) Issue(c *gin.Context) {
	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	entry, err := h.stockService.Issue(c.Request.Context(), stockapp.IssueStockRequest{
		MaterialID:    uuid.MustParse(req.MaterialID),
		WarehouseID:   uuid.MustParse(req.WarehouseID),
		Quantity:      decimal.NewFromFloat(req.Quantity),
		Remarks:       req.Remarks,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entry)
}

// Transfer moves stock between warehouses and returns the destination entry
func (h *StockHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	entry, err := h.stockService.Transfer(c.Request.Context(), stockapp.TransferStockRequest{
		MaterialID:      uuid.MustParse(req.MaterialID),
		FromWarehouseID: uuid.MustParse(req.FromWarehouseID),
		ToWarehouseID:   uuid.MustParse(req.ToWarehouseID),
		Quantity:        decimal.NewFromFloat(req.Quantity),
		Remarks:         req.Remarks,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entry)
}

// Adjust corrects a ledger entry to a counted quantity
func (h *StockHandler) Adjust(c *gin.Context) {
	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	entry, err := h.stockService.Adjust(c.Request.Context(), stockapp.AdjustStockRequest{
		MaterialID:  uuid.MustParse(req.MaterialID),
		WarehouseID: uuid.MustParse(req.WarehouseID),
		NewQuantity: decimal.NewFromFloat(req.NewQuantity),
		Remarks:     req.Remarks,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entry)
}

// GetEntry retrieves one ledger entry by material and warehouse.
// A pair that was never stocked reads back as quantity zero.
func (h *StockHandler) GetEntry(c *gin.Context) {
	materialID, err := uuid.Parse(c.Query("material_id"))
	if err != nil {
		h.BadRequest(c, "Invalid material ID format")
		return
	}
	warehouseID, err := uuid.Parse(c.Query("warehouse_id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	entry, err := h.stockService.GetEntry(c.Request.Context(), materialID, warehouseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entry)
}

// ListEntries lists ledger entries with optional filters
func (h *StockHandler) ListEntries(c *gin.Context) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := stockapp.EntryListFilter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		NonEmpty: c.Query("non_empty") == "true",
	}
	if s := c.Query("material_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			h.BadRequest(c, "Invalid material ID format")
			return
		}
		filter.MaterialID = &id
	}
	if s := c.Query("warehouse_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			h.BadRequest(c, "Invalid warehouse ID format")
			return
		}
		filter.WarehouseID = &id
	}

	entries, total, err := h.stockService.ListEntries(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// ListMovements lists movement log records with optional filters
func (h *StockHandler) ListMovements(c *gin.Context) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := stockapp.MovementListFilter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
	}
	if s := c.Query("material_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			h.BadRequest(c, "Invalid material ID format")
			return
		}
		filter.MaterialID = &id
	}
	if s := c.Query("warehouse_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			h.BadRequest(c, "Invalid warehouse ID format")
			return
		}
		filter.WarehouseID = &id
	}
	if s := c.Query("kind"); s != "" {
		filter.Kind = &s
	}
	if s := c.Query("from"); s != "" {
		from, err := parseDateTime(s)
		if err != nil {
			h.BadRequest(c, "Invalid from date format")
			return
		}
		filter.From = &from
	}
	if s := c.Query("to"); s != "" {
		to, err := parseDateTime(s)
		if err != nil {
			h.BadRequest(c, "Invalid to date format")
			return
		}
		filter.To = &to
	}

	movements, total, err := h.stockService.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// parseDateTime parses a datetime string in the formats clients send
func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}
