package maintenance

import (
	"time"

	"github.com/fms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WorkStatus represents the status of a maintenance work order
type WorkStatus string

const (
	WorkStatusAssigned   WorkStatus = "ASSIGNED"
	WorkStatusInProgress WorkStatus = "IN_PROGRESS"
	WorkStatusPaused     WorkStatus = "PAUSED"
	WorkStatusCompleted  WorkStatus = "COMPLETED"
	WorkStatusCancelled  WorkStatus = "CANCELLED"
)

// IsValid checks if the status is a valid WorkStatus
func (s WorkStatus) IsValid() bool {
	switch s {
	case WorkStatusAssigned, WorkStatusInProgress, WorkStatusPaused,
		WorkStatusCompleted, WorkStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of WorkStatus
func (s WorkStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// CANCELLED is reachable from any non-terminal state.
func (s WorkStatus) CanTransitionTo(target WorkStatus) bool {
	if target == WorkStatusCancelled {
		return !s.IsTerminal()
	}
	switch s {
	case WorkStatusAssigned:
		return target == WorkStatusInProgress
	case WorkStatusInProgress:
		return target == WorkStatusPaused || target == WorkStatusCompleted
	case WorkStatusPaused:
		return target == WorkStatusInProgress
	case WorkStatusCompleted, WorkStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true if no further transitions are allowed
func (s WorkStatus) IsTerminal() bool {
	return s == WorkStatusCompleted || s == WorkStatusCancelled
}

// IsOutstanding returns true for statuses that still block completion of
// the parent plan.
func (s WorkStatus) IsOutstanding() bool {
	return !s.IsTerminal()
}

// MaintenanceWork is a unit of executable work under a plan, assigned to a
// technician. Its document number is month-scoped (WRK{yyyyMM}{seq4}).
type MaintenanceWork struct {
	shared.BaseEntity
	WorkNumber string     `gorm:"type:varchar(30);not null;uniqueIndex"`
	PlanID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title      string     `gorm:"type:varchar(200);not null"`
	AssigneeID *uuid.UUID `gorm:"type:uuid;index"`
	Remarks    string     `gorm:"type:varchar(2000)"`
	Status     WorkStatus `gorm:"type:varchar(20);not null;index"`
	StartedAt  *time.Time `gorm:"type:timestamptz"`
	FinishedAt *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (MaintenanceWork) TableName() string {
	return "maintenance_works"
}

// NewMaintenanceWork creates a work order in ASSIGNED status
func NewMaintenanceWork(workNumber string, planID uuid.UUID, title string) (*MaintenanceWork, error) {
	if workNumber == "" {
		return nil, shared.NewDomainError("INVALID_WORK_NUMBER", "Work number cannot be empty")
	}
	if planID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PLAN", "Plan ID cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	return &MaintenanceWork{
		BaseEntity: shared.NewBaseEntity(),
		WorkNumber: workNumber,
		PlanID:     planID,
		Title:      title,
		Status:     WorkStatusAssigned,
	}, nil
}

// TransitionTo moves the work order to the target status, rejecting any
// transition not in the allowed table. State is unchanged on error.
// Start and finish timestamps are stamped on the matching transitions.
func (w *MaintenanceWork) TransitionTo(target WorkStatus) error {
	if !target.IsValid() {
		return shared.ErrInvalidTransition
	}
	if !w.Status.CanTransitionTo(target) {
		return shared.ErrInvalidTransition
	}
	now := time.Now()
	if target == WorkStatusInProgress && w.StartedAt == nil {
		w.StartedAt = &now
	}
	if target == WorkStatusCompleted {
		w.FinishedAt = &now
	}
	w.Status = target
	w.UpdatedAt = now
	return nil
}
