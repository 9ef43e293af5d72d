package handler

import (
	maintapp "github.com/fms/backend/internal/application/maintenance"
	"github.com/fms/backend/internal/domain/maintenance"
	"github.com/fms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaintenanceHandler handles maintenance request, plan and work order
// API endpoints
type MaintenanceHandler struct {
	BaseHandler
	maintenanceService *maintapp.MaintenanceService
}

// NewMaintenanceHandler creates a new MaintenanceHandler
func NewMaintenanceHandler(maintenanceService *maintapp.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenanceService: maintenanceService,
	}
}

// RegisterRoutes registers maintenance routes on the given group
func (h *MaintenanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	maint := rg.Group("/maintenance")
	{
		maint.POST("/requests", h.CreateRequest)
		maint.GET("/requests", h.ListRequests)
		maint.GET("/requests/:id", h.GetRequest)
		maint.PUT("/requests/:id/status", h.TransitionRequest)

		maint.POST("/plans", h.CreatePlan)
		maint.GET("/plans", h.ListPlans)
		maint.GET("/plans/:id", h.GetPlan)
		maint.PUT("/plans/:id/status", h.TransitionPlan)

		maint.POST("/works", h.CreateWork)
		maint.GET("/works", h.ListWorks)
		maint.GET("/works/:id", h.GetWork)
		maint.PUT("/works/:id/status", h.TransitionWork)
	}
}

// CreateRequestBody represents a request to raise a maintenance request
type CreateRequestBody struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=2000"`
	EquipmentID string `json:"equipment_id" binding:"omitempty,uuid"`
	LocationID  string `json:"location_id" binding:"omitempty,uuid"`
	RequesterID string `json:"requester_id" binding:"omitempty,uuid"`
}

// CreatePlanBody represents a request to schedule a maintenance plan
type CreatePlanBody struct {
	Title      string `json:"title" binding:"required,min=1,max=200"`
	RequestID  string `json:"request_id" binding:"omitempty,uuid"`
	Remarks    string `json:"remarks" binding:"max=500"`
	PlannedFor string `json:"planned_for" binding:"omitempty"`
}

// CreateWorkBody represents a request to assign a work order under a plan
type CreateWorkBody struct {
	PlanID     string `json:"plan_id" binding:"required,uuid"`
	Title      string `json:"title" binding:"required,min=1,max=200"`
	AssigneeID string `json:"assignee_id" binding:"omitempty,uuid"`
	Remarks    string `json:"remarks" binding:"max=500"`
}

// TransitionBody represents a request to move a document to a new status
type TransitionBody struct {
	Status string `json:"status" binding:"required"`
}

// CreateRequest raises a new maintenance request
func (h *MaintenanceHandler) CreateRequest(c *gin.Context) {
	var body CreateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindingError(c, err)
		return
	}

	req := maintapp.CreateRequestRequest{
		Title:       body.Title,
		Description: body.Description,
		EquipmentID: optionalUUID(body.EquipmentID),
		LocationID:  optionalUUID(body.LocationID),
		RequesterID: optionalUUID(body.RequesterID),
	}

	request, err := h.maintenanceService.CreateRequest(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, request)
}

// CreatePlan schedules a new maintenance plan
func (h *MaintenanceHandler) CreatePlan(c *gin.Context) {
	var body CreatePlanBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindingError(c, err)
		return
	}

	req := maintapp.CreatePlanRequest{
		Title:     body.Title,
		RequestID: optionalUUID(body.RequestID),
		Remarks:   body.Remarks,
	}
	if body.PlannedFor != "" {
		plannedFor, err := parseDateTime(body.PlannedFor)
		if err != nil {
			h.BadRequest(c, "Invalid planned_for date format")
			return
		}
		req.PlannedFor = &plannedFor
	}

	plan, err := h.maintenanceService.CreatePlan(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, plan)
}

// CreateWork assigns a new work order under a plan
func (h *MaintenanceHandler) CreateWork(c *gin.Context) {
	var body CreateWorkBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindingError(c, err)
		return
	}

	work, err := h.maintenanceService.CreateWork(c.Request.Context(), maintapp.CreateWorkRequest{
		PlanID:     uuid.MustParse(body.PlanID),
		Title:      body.Title,
		AssigneeID: optionalUUID(body.AssigneeID),
		Remarks:    body.Remarks,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, work)
}

// GetRequest retrieves a maintenance request by ID
func (h *MaintenanceHandler) GetRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	request, err := h.maintenanceService.GetRequest(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, request)
}

// GetPlan retrieves a maintenance plan by ID
func (h *MaintenanceHandler) GetPlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	plan, err := h.maintenanceService.GetPlan(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// GetWork retrieves a work order by ID
func (h *MaintenanceHandler) GetWork(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work order ID format")
		return
	}

	work, err := h.maintenanceService.GetWork(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, work)
}

// TransitionRequest moves a maintenance request to a new status
func (h *MaintenanceHandler) TransitionRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID format")
		return
	}

	var body TransitionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindingError(c, err)
		return
	}

	target := maintenance.RequestStatus(body.Status)
	if !target.IsValid() {
		h.BadRequest(c, "Unknown request status: "+body.Status)
		return
	}

	request, err := h.maintenanceService.TransitionRequest(c.Request.Context(), id, target)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, request)
}

// TransitionPlan moves a maintenance plan to a new status
func (h *MaintenanceHandler) TransitionPlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	var body TransitionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindingError(c, err)
		return
	}

	target := maintenance.PlanStatus(body.Status)
	if !target.IsValid() {
		h.BadRequest(c, "Unknown plan status: "+body.Status)
		return
	}

	plan, err := h.maintenanceService.TransitionPlan(c.Request.Context(), id, target)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// TransitionWork moves a work order to a new status
func (h *MaintenanceHandler) TransitionWork(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid work order ID format")
		return
	}

	var body TransitionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindingError(c, err)
		return
	}

	target := maintenance.WorkStatus(body.Status)
	if !target.IsValid() {
		h.BadRequest(c, "Unknown work status: "+body.Status)
		return
	}

	work, err := h.maintenanceService.TransitionWork(c.Request.Context(), id, target)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, work)
}

// ListRequests lists maintenance requests with optional filters
func (h *MaintenanceHandler) ListRequests(c *gin.Context) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := maintapp.RequestListFilter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
	}
	if s := c.Query("status"); s != "" {
		filter.Status = &s
	}
	if s := c.Query("equipment_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			h.BadRequest(c, "Invalid equipment ID format")
			return
		}
		filter.EquipmentID = &id
	}

	requests, total, err := h.maintenanceService.ListRequests(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, requests, total, filter.Page, filter.PageSize)
}

// ListPlans lists maintenance plans with optional filters
func (h *MaintenanceHandler) ListPlans(c *gin.Context) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := maintapp.PlanListFilter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
	}
	if s := c.Query("status"); s != "" {
		filter.Status = &s
	}
	if s := c.Query("request_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			h.BadRequest(c, "Invalid request ID format")
			return
		}
		filter.RequestID = &id
	}

	plans, total, err := h.maintenanceService.ListPlans(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, plans, total, filter.Page, filter.PageSize)
}

// ListWorks lists work orders with optional filters
func (h *MaintenanceHandler) ListWorks(c *gin.Context) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := maintapp.WorkListFilter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
	}
	if s := c.Query("status"); s != "" {
		filter.Status = &s
	}
	if s := c.Query("plan_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			h.BadRequest(c, "Invalid plan ID format")
			return
		}
		filter.PlanID = &id
	}
	if s := c.Query("assignee_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			h.BadRequest(c, "Invalid assignee ID format")
			return
		}
		filter.AssigneeID = &id
	}

	works, total, err := h.maintenanceService.ListWorks(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, works, total, filter.Page, filter.PageSize)
}

// optionalUUID parses a binding-validated UUID string, mapping empty to nil
func optionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id := uuid.MustParse(s)
	return &id
}
