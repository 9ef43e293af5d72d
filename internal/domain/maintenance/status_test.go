package maintenance

import (
	"testing"

	"github.com/fms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    RequestStatus
		to      RequestStatus
		allowed bool
	}{
		{"pending to approved", RequestStatusPending, RequestStatusApproved, true},
		{"pending to rejected", RequestStatusPending, RequestStatusRejected, true},
		{"pending to cancelled", RequestStatusPending, RequestStatusCancelled, true},
		{"pending to completed", RequestStatusPending, RequestStatusCompleted, false},
		{"pending to in_progress", RequestStatusPending, RequestStatusInProgress, false},
		{"approved to in_progress", RequestStatusApproved, RequestStatusInProgress, true},
		{"approved to cancelled", RequestStatusApproved, RequestStatusCancelled, true},
		{"approved to completed", RequestStatusApproved, RequestStatusCompleted, false},
		{"in_progress to completed", RequestStatusInProgress, RequestStatusCompleted, true},
		{"in_progress to cancelled", RequestStatusInProgress, RequestStatusCancelled, true},
		{"in_progress to approved", RequestStatusInProgress, RequestStatusApproved, false},
		{"completed is terminal", RequestStatusCompleted, RequestStatusCancelled, false},
		{"cancelled is terminal", RequestStatusCancelled, RequestStatusPending, false},
		{"rejected is terminal", RequestStatusRejected, RequestStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPlanStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    PlanStatus
		to      PlanStatus
		allowed bool
	}{
		{"draft to approved", PlanStatusDraft, PlanStatusApproved, true},
		{"draft to cancelled", PlanStatusDraft, PlanStatusCancelled, true},
		{"draft to in_progress", PlanStatusDraft, PlanStatusInProgress, false},
		{"approved to in_progress", PlanStatusApproved, PlanStatusInProgress, true},
		{"approved to cancelled", PlanStatusApproved, PlanStatusCancelled, true},
		{"approved to completed", PlanStatusApproved, PlanStatusCompleted, false},
		{"in_progress to completed", PlanStatusInProgress, PlanStatusCompleted, true},
		{"in_progress to cancelled", PlanStatusInProgress, PlanStatusCancelled, true},
		{"completed is terminal", PlanStatusCompleted, PlanStatusInProgress, false},
		{"cancelled is terminal", PlanStatusCancelled, PlanStatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestWorkStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    WorkStatus
		to      WorkStatus
		allowed bool
	}{
		{"assigned to in_progress", WorkStatusAssigned, WorkStatusInProgress, true},
		{"assigned to cancelled", WorkStatusAssigned, WorkStatusCancelled, true},
		{"assigned to paused", WorkStatusAssigned, WorkStatusPaused, false},
		{"assigned to completed", WorkStatusAssigned, WorkStatusCompleted, false},
		{"in_progress to paused", WorkStatusInProgress, WorkStatusPaused, true},
		{"in_progress to completed", WorkStatusInProgress, WorkStatusCompleted, true},
		{"in_progress to cancelled", WorkStatusInProgress, WorkStatusCancelled, true},
		{"paused to in_progress", WorkStatusPaused, WorkStatusInProgress, true},
		{"paused to cancelled", WorkStatusPaused, WorkStatusCancelled, true},
		{"paused to completed", WorkStatusPaused, WorkStatusCompleted, false},
		{"completed is terminal", WorkStatusCompleted, WorkStatusCancelled, false},
		{"cancelled is terminal", WorkStatusCancelled, WorkStatusInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestMaintenanceRequest_TransitionTo(t *testing.T) {
	req, err := NewMaintenanceRequest("REQ2025010001", "Broken HVAC on floor 3")
	require.NoError(t, err)
	assert.Equal(t, RequestStatusPending, req.Status)

	t.Run("legal transition updates status", func(t *testing.T) {
		require.NoError(t, req.TransitionTo(RequestStatusApproved))
		assert.Equal(t, RequestStatusApproved, req.Status)
	})

	t.Run("illegal transition leaves status unchanged", func(t *testing.T) {
		err := req.TransitionTo(RequestStatusCompleted)
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.Equal(t, RequestStatusApproved, req.Status)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		err := req.TransitionTo(RequestStatus("BOGUS"))
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	})
}

func TestMaintenanceWork_TransitionTo_Timestamps(t *testing.T) {
	work, err := NewMaintenanceWork("WRK2025010001", uuid.New(), "Replace compressor")
	require.NoError(t, err)
	assert.Nil(t, work.StartedAt)
	assert.Nil(t, work.FinishedAt)

	require.NoError(t, work.TransitionTo(WorkStatusInProgress))
	require.NotNil(t, work.StartedAt)
	started := *work.StartedAt

	require.NoError(t, work.TransitionTo(WorkStatusPaused))
	require.NoError(t, work.TransitionTo(WorkStatusInProgress))
	assert.Equal(t, started, *work.StartedAt)

	require.NoError(t, work.TransitionTo(WorkStatusCompleted))
	assert.NotNil(t, work.FinishedAt)
}

func TestNewMaintenancePlan(t *testing.T) {
	plan, err := NewMaintenancePlan("PLN2025010001", "Quarterly HVAC service")
	require.NoError(t, err)
	assert.Equal(t, PlanStatusDraft, plan.Status)
	assert.Nil(t, plan.RequestID)

	reqID := uuid.New()
	plan.WithRequest(reqID)
	require.NotNil(t, plan.RequestID)
	assert.Equal(t, reqID, *plan.RequestID)
}
