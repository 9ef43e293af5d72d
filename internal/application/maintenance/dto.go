package maintenance

import (
	"time"

	"github.com/fms/backend/internal/domain/maintenance"
	"github.com/google/uuid"
)

// CreateRequestRequest is the input for raising a maintenance request
type CreateRequestRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	EquipmentID *uuid.UUID `json:"equipment_id,omitempty"`
	LocationID  *uuid.UUID `json:"location_id,omitempty"`
	RequesterID *uuid.UUID `json:"requester_id,omitempty"`
}

// CreatePlanRequest is the input for scheduling a maintenance plan. RequestID
// is optional: preventive maintenance is planned without a request.
type CreatePlanRequest struct {
	Title      string     `json:"title"`
	RequestID  *uuid.UUID `json:"request_id,omitempty"`
	Remarks    string     `json:"remarks,omitempty"`
	PlannedFor *time.Time `json:"planned_for,omitempty"`
}

// CreateWorkRequest is the input for assigning a work order under a plan
type CreateWorkRequest struct {
	PlanID     uuid.UUID  `json:"plan_id"`
	Title      string     `json:"title"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`
	Remarks    string     `json:"remarks,omitempty"`
}

// RequestResponse is the read model for a maintenance request
type RequestResponse struct {
	ID            uuid.UUID  `json:"id"`
	RequestNumber string     `json:"request_number"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	EquipmentID   *uuid.UUID `json:"equipment_id,omitempty"`
	LocationID    *uuid.UUID `json:"location_id,omitempty"`
	RequesterID   *uuid.UUID `json:"requester_id,omitempty"`
	Status        string     `json:"status"`
	RequestedAt   time.Time  `json:"requested_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// PlanResponse is the read model for a maintenance plan
type PlanResponse struct {
	ID         uuid.UUID  `json:"id"`
	PlanNumber string     `json:"plan_number"`
	RequestID  *uuid.UUID `json:"request_id,omitempty"`
	Title      string     `json:"title"`
	Remarks    string     `json:"remarks,omitempty"`
	Status     string     `json:"status"`
	PlannedFor *time.Time `json:"planned_for,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// WorkResponse is the read model for a maintenance work order
type WorkResponse struct {
	ID         uuid.UUID  `json:"id"`
	WorkNumber string     `json:"work_number"`
	PlanID     uuid.UUID  `json:"plan_id"`
	Title      string     `json:"title"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`
	Remarks    string     `json:"remarks,omitempty"`
	Status     string     `json:"status"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// RequestListFilter narrows request list queries
type RequestListFilter struct {
	Status      *string
	EquipmentID *uuid.UUID
	Page        int
	PageSize    int
}

// PlanListFilter narrows plan list queries
type PlanListFilter struct {
	Status    *string
	RequestID *uuid.UUID
	Page      int
	PageSize  int
}

// WorkListFilter narrows work order list queries
type WorkListFilter struct {
	Status     *string
	PlanID     *uuid.UUID
	AssigneeID *uuid.UUID
	Page       int
	PageSize   int
}

// ToRequestResponse maps a request entity to its read model
func ToRequestResponse(r *maintenance.MaintenanceRequest) RequestResponse {
	return RequestResponse{
		ID:            r.ID,
		RequestNumber: r.RequestNumber,
		Title:         r.Title,
		Description:   r.Description,
		EquipmentID:   r.EquipmentID,
		LocationID:    r.LocationID,
		RequesterID:   r.RequesterID,
		Status:        r.Status.String(),
		RequestedAt:   r.RequestedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ToPlanResponse maps a plan entity to its read model
func ToPlanResponse(p *maintenance.MaintenancePlan) PlanResponse {
	return PlanResponse{
		ID:         p.ID,
		PlanNumber: p.PlanNumber,
		RequestID:  p.RequestID,
		Title:      p.Title,
		Remarks:    p.Remarks,
		Status:     p.Status.String(),
		PlannedFor: p.PlannedFor,
		UpdatedAt:  p.UpdatedAt,
	}
}

// ToWorkResponse maps a work order entity to its read model
func ToWorkResponse(w *maintenance.MaintenanceWork) WorkResponse {
	return WorkResponse{
		ID:         w.ID,
		WorkNumber: w.WorkNumber,
		PlanID:     w.PlanID,
		Title:      w.Title,
		AssigneeID: w.AssigneeID,
		Remarks:    w.Remarks,
		Status:     w.Status.String(),
		StartedAt:  w.StartedAt,
		FinishedAt: w.FinishedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}
