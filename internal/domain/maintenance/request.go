package maintenance

import (
	"time"

	"github.com/fms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RequestStatus represents the status of a maintenance request
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "PENDING"
	RequestStatusApproved   RequestStatus = "APPROVED"
	RequestStatusRejected   RequestStatus = "REJECTED"
	RequestStatusInProgress RequestStatus = "IN_PROGRESS"
	RequestStatusCompleted  RequestStatus = "COMPLETED"
	RequestStatusCancelled  RequestStatus = "CANCELLED"
)

// IsValid checks if the status is a valid RequestStatus
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected,
		RequestStatusInProgress, RequestStatusCompleted, RequestStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of RequestStatus
func (s RequestStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	switch s {
	case RequestStatusPending:
		return target == RequestStatusApproved || target == RequestStatusRejected || target == RequestStatusCancelled
	case RequestStatusApproved:
		return target == RequestStatusInProgress || target == RequestStatusCancelled
	case RequestStatusInProgress:
		return target == RequestStatusCompleted || target == RequestStatusCancelled
	case RequestStatusCompleted, RequestStatusCancelled, RequestStatusRejected:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true if no further transitions are allowed
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled || s == RequestStatusRejected
}

// MaintenanceRequest is a reported maintenance need raised against a piece
// of equipment or a location. Its document number is month-scoped
// (REQ{yyyyMM}{seq4}).
type MaintenanceRequest struct {
	shared.BaseEntity
	RequestNumber string        `gorm:"type:varchar(30);not null;uniqueIndex"`
	Title         string        `gorm:"type:varchar(200);not null"`
	Description   string        `gorm:"type:varchar(2000)"`
	EquipmentID   *uuid.UUID    `gorm:"type:uuid;index"`
	LocationID    *uuid.UUID    `gorm:"type:uuid;index"`
	RequesterID   *uuid.UUID    `gorm:"type:uuid"`
	Status        RequestStatus `gorm:"type:varchar(20);not null;index"`
	RequestedAt   time.Time     `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (MaintenanceRequest) TableName() string {
	return "maintenance_requests"
}

// NewMaintenanceRequest creates a request in PENDING status
func NewMaintenanceRequest(requestNumber, title string) (*MaintenanceRequest, error) {
	if requestNumber == "" {
		return nil, shared.NewDomainError("INVALID_REQUEST_NUMBER", "Request number cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	return &MaintenanceRequest{
		BaseEntity:    shared.NewBaseEntity(),
		RequestNumber: requestNumber,
		Title:         title,
		Status:        RequestStatusPending,
		RequestedAt:   time.Now(),
	}, nil
}

// TransitionTo moves the request to the target status, rejecting any
// transition not in the allowed table. State is unchanged on error.
func (r *MaintenanceRequest) TransitionTo(target RequestStatus) error {
	if !target.IsValid() {
		return shared.ErrInvalidTransition
	}
	if !r.Status.CanTransitionTo(target) {
		return shared.ErrInvalidTransition
	}
	r.Status = target
	r.UpdatedAt = time.Now()
	return nil
}
