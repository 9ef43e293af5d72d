package maintenance

import (
	"context"

	"github.com/fms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RequestRepository defines the interface for maintenance request persistence
type RequestRepository interface {
	// FindByID finds a request by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*MaintenanceRequest, error)

	// FindForUpdate loads the request with a row-level lock held for the
	// duration of the surrounding transaction
	FindForUpdate(ctx context.Context, id uuid.UUID) (*MaintenanceRequest, error)

	// Create inserts a new request
	Create(ctx context.Context, request *MaintenanceRequest) error

	// Save persists changes to an existing request
	Save(ctx context.Context, request *MaintenanceRequest) error

	// FindAll lists requests matching the filter
	FindAll(ctx context.Context, filter RequestFilter) ([]MaintenanceRequest, error)

	// Count counts requests matching the filter
	Count(ctx context.Context, filter RequestFilter) (int64, error)
}

// PlanRepository defines the interface for maintenance plan persistence
type PlanRepository interface {
	// FindByID finds a plan by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*MaintenancePlan, error)

	// FindForUpdate loads the plan with a row-level lock held for the
	// duration of the surrounding transaction
	FindForUpdate(ctx context.Context, id uuid.UUID) (*MaintenancePlan, error)

	// FindByRequest finds all plans referencing a request
	FindByRequest(ctx context.Context, requestID uuid.UUID) ([]MaintenancePlan, error)

	// Create inserts a new plan
	Create(ctx context.Context, plan *MaintenancePlan) error

	// Save persists changes to an existing plan
	Save(ctx context.Context, plan *MaintenancePlan) error

	// FindAll lists plans matching the filter
	FindAll(ctx context.Context, filter PlanFilter) ([]MaintenancePlan, error)

	// Count counts plans matching the filter
	Count(ctx context.Context, filter PlanFilter) (int64, error)
}

// WorkRepository defines the interface for maintenance work persistence
type WorkRepository interface {
	// FindByID finds a work order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*MaintenanceWork, error)

	// FindForUpdate loads the work order with a row-level lock held for the
	// duration of the surrounding transaction
	FindForUpdate(ctx context.Context, id uuid.UUID) (*MaintenanceWork, error)

	// FindByPlan finds all work orders under a plan
	FindByPlan(ctx context.Context, planID uuid.UUID) ([]MaintenanceWork, error)

	// Create inserts a new work order
	Create(ctx context.Context, work *MaintenanceWork) error

	// Save persists changes to an existing work order
	Save(ctx context.Context, work *MaintenanceWork) error

	// FindAll lists work orders matching the filter
	FindAll(ctx context.Context, filter WorkFilter) ([]MaintenanceWork, error)

	// Count counts work orders matching the filter
	Count(ctx context.Context, filter WorkFilter) (int64, error)
}

// RequestFilter narrows request queries. Nil fields are not applied.
type RequestFilter struct {
	shared.Filter
	Status      *RequestStatus
	EquipmentID *uuid.UUID
}

// PlanFilter narrows plan queries. Nil fields are not applied.
type PlanFilter struct {
	shared.Filter
	Status    *PlanStatus
	RequestID *uuid.UUID
}

// WorkFilter narrows work order queries. Nil fields are not applied.
type WorkFilter struct {
	shared.Filter
	Status     *WorkStatus
	PlanID     *uuid.UUID
	AssigneeID *uuid.UUID
}
