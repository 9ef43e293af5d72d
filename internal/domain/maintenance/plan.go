package maintenance

import (
	"time"

	"github.com/fms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PlanStatus represents the status of a maintenance plan
type PlanStatus string

const (
	PlanStatusDraft      PlanStatus = "DRAFT"
	PlanStatusApproved   PlanStatus = "APPROVED"
	PlanStatusInProgress PlanStatus = "IN_PROGRESS"
	PlanStatusCompleted  PlanStatus = "COMPLETED"
	PlanStatusCancelled  PlanStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PlanStatus
func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanStatusDraft, PlanStatusApproved, PlanStatusInProgress,
		PlanStatusCompleted, PlanStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PlanStatus
func (s PlanStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PlanStatus) CanTransitionTo(target PlanStatus) bool {
	switch s {
	case PlanStatusDraft:
		return target == PlanStatusApproved || target == PlanStatusCancelled
	case PlanStatusApproved:
		return target == PlanStatusInProgress || target == PlanStatusCancelled
	case PlanStatusInProgress:
		return target == PlanStatusCompleted || target == PlanStatusCancelled
	case PlanStatusCompleted, PlanStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true if no further transitions are allowed
func (s PlanStatus) IsTerminal() bool {
	return s == PlanStatusCompleted || s == PlanStatusCancelled
}

// IsSettled returns true for statuses that no longer block completion of a
// linked request (COMPLETED or CANCELLED).
func (s PlanStatus) IsSettled() bool {
	return s == PlanStatusCompleted || s == PlanStatusCancelled
}

// MaintenancePlan schedules the work needed to resolve a request. A plan may
// exist without a request (preventive maintenance); several plans may
// reference the same request. Its document number is month-scoped
// (PLN{yyyyMM}{seq4}).
type MaintenancePlan struct {
	shared.BaseEntity
	PlanNumber string     `gorm:"type:varchar(30);not null;uniqueIndex"`
	RequestID  *uuid.UUID `gorm:"type:uuid;index"`
	Title      string     `gorm:"type:varchar(200);not null"`
	Remarks    string     `gorm:"type:varchar(2000)"`
	Status     PlanStatus `gorm:"type:varchar(20);not null;index"`
	PlannedFor *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (MaintenancePlan) TableName() string {
	return "maintenance_plans"
}

// NewMaintenancePlan creates a plan in DRAFT status
func NewMaintenancePlan(planNumber, title string) (*MaintenancePlan, error) {
	if planNumber == "" {
		return nil, shared.NewDomainError("INVALID_PLAN_NUMBER", "Plan number cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	return &MaintenancePlan{
		BaseEntity: shared.NewBaseEntity(),
		PlanNumber: planNumber,
		Title:      title,
		Status:     PlanStatusDraft,
	}, nil
}

// WithRequest links the plan to a maintenance request
func (p *MaintenancePlan) WithRequest(requestID uuid.UUID) *MaintenancePlan {
	p.RequestID = &requestID
	return p
}

// TransitionTo moves the plan to the target status, rejecting any
// transition not in the allowed table. State is unchanged on error.
func (p *MaintenancePlan) TransitionTo(target PlanStatus) error {
	if !target.IsValid() {
		return shared.ErrInvalidTransition
	}
	if !p.Status.CanTransitionTo(target) {
		return shared.ErrInvalidTransition
	}
	p.Status = target
	p.UpdatedAt = time.Now()
	return nil
}
