package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/fms/backend/internal/domain/maintenance"
	"github.com/fms/backend/internal/domain/numbering"
	"github.com/fms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// maxNumberRetries bounds the retry loop when a generated document number
// loses a uniqueness race
const maxNumberRetries = 3

// MaintenanceService orchestrates the request, plan and work lifecycles.
// Each transition is validated against the status tables before any write,
// and every cascade runs inside the same transaction as the transition that
// triggered it.
type MaintenanceService struct {
	scope       TransactionScope
	requestRepo maintenance.RequestRepository
	planRepo    maintenance.PlanRepository
	workRepo    maintenance.WorkRepository
	now         func() time.Time
}

// NewMaintenanceService creates a new MaintenanceService. The repositories
// are used for the read surface only; all mutations go through the scope.
func NewMaintenanceService(
	scope TransactionScope,
	requestRepo maintenance.RequestRepository,
	planRepo maintenance.PlanRepository,
	workRepo maintenance.WorkRepository,
) *MaintenanceService {
	return &MaintenanceService{
		scope:       scope,
		requestRepo: requestRepo,
		planRepo:    planRepo,
		workRepo:    workRepo,
		now:         time.Now,
	}
}

// SetClock overrides the time source (used by tests)
func (s *MaintenanceService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateRequest raises a new maintenance request in PENDING status
func (s *MaintenanceService) CreateRequest(ctx context.Context, req CreateRequestRequest) (*RequestResponse, error) {
	var request *maintenance.MaintenanceRequest
	err := s.withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			number, err := repos.Sequences().Next(ctx, numbering.RequestPrefix(s.now()))
			if err != nil {
				return err
			}
			r, err := maintenance.NewMaintenanceRequest(number, req.Title)
			if err != nil {
				return err
			}
			r.Description = req.Description
			r.EquipmentID = req.EquipmentID
			r.LocationID = req.LocationID
			r.RequesterID = req.RequesterID
			if err := repos.RequestRepo().Create(ctx, r); err != nil {
				return err
			}
			request = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	resp := ToRequestResponse(request)
	return &resp, nil
}

// CreatePlan schedules a new maintenance plan in DRAFT status. When linked
// to a request, the request must exist and still be open for planning.
func (s *MaintenanceService) CreatePlan(ctx context.Context, req CreatePlanRequest) (*PlanResponse, error) {
	var plan *maintenance.MaintenancePlan
	err := s.withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			if req.RequestID != nil {
				request, err := repos.RequestRepo().FindByID(ctx, *req.RequestID)
				if err != nil {
					return err
				}
				if request.Status.IsTerminal() {
					return shared.NewDomainError("REQUEST_CLOSED", "Cannot plan against a settled request")
				}
			}
			number, err := repos.Sequences().Next(ctx, numbering.PlanPrefix(s.now()))
			if err != nil {
				return err
			}
			p, err := maintenance.NewMaintenancePlan(number, req.Title)
			if err != nil {
				return err
			}
			p.Remarks = req.Remarks
			p.PlannedFor = req.PlannedFor
			if req.RequestID != nil {
				p.WithRequest(*req.RequestID)
			}
			if err := repos.PlanRepo().Create(ctx, p); err != nil {
				return err
			}
			plan = p
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	resp := ToPlanResponse(plan)
	return &resp, nil
}

// CreateWork assigns a new work order in ASSIGNED status under a plan that
// is not yet settled.
func (s *MaintenanceService) CreateWork(ctx context.Context, req CreateWorkRequest) (*WorkResponse, error) {
	var work *maintenance.MaintenanceWork
	err := s.withConflictRetry(func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			plan, err := repos.PlanRepo().FindByID(ctx, req.PlanID)
			if err != nil {
				return err
			}
			if plan.Status.IsSettled() {
				return shared.NewDomainError("PLAN_CLOSED", "Cannot add work to a settled plan")
			}
			number, err := repos.Sequences().Next(ctx, numbering.WorkPrefix(s.now()))
			if err != nil {
				return err
			}
			w, err := maintenance.NewMaintenanceWork(number, req.PlanID, req.Title)
			if err != nil {
				return err
			}
			w.AssigneeID = req.AssigneeID
			w.Remarks = req.Remarks
			if err := repos.WorkRepo().Create(ctx, w); err != nil {
				return err
			}
			work = w
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	resp := ToWorkResponse(work)
	return &resp, nil
}

// TransitionRequest moves a request to the target status
func (s *MaintenanceService) TransitionRequest(ctx context.Context, id uuid.UUID, target maintenance.RequestStatus) (*RequestResponse, error) {
	var request *maintenance.MaintenanceRequest
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		r, err := repos.RequestRepo().FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := r.TransitionTo(target); err != nil {
			return err
		}
		if err := repos.RequestRepo().Save(ctx, r); err != nil {
			return err
		}
		request = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToRequestResponse(request)
	return &resp, nil
}

// TransitionPlan moves a plan to the target status and runs the request
// cascades inside the same transaction:
//
//	IN_PROGRESS  pulls a linked request that is not yet in progress along
//	COMPLETED    completes the linked request once every sibling plan is settled
func (s *MaintenanceService) TransitionPlan(ctx context.Context, id uuid.UUID, target maintenance.PlanStatus) (*PlanResponse, error) {
	var plan *maintenance.MaintenancePlan
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.PlanRepo().FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := p.TransitionTo(target); err != nil {
			return err
		}
		if err := repos.PlanRepo().Save(ctx, p); err != nil {
			return err
		}
		if err := s.cascadeFromPlan(ctx, repos, p, target); err != nil {
			return err
		}
		plan = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToPlanResponse(plan)
	return &resp, nil
}

// TransitionWork moves a work order to the target status. Completing the
// last outstanding work order under a plan completes the plan, which in turn
// runs the plan's request cascade, all in one transaction.
func (s *MaintenanceService) TransitionWork(ctx context.Context, id uuid.UUID, target maintenance.WorkStatus) (*WorkResponse, error) {
	var work *maintenance.MaintenanceWork
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		w, err := repos.WorkRepo().FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := w.TransitionTo(target); err != nil {
			return err
		}
		if err := repos.WorkRepo().Save(ctx, w); err != nil {
			return err
		}
		if target == maintenance.WorkStatusCompleted {
			if err := s.completePlanIfFinished(ctx, repos, w.PlanID); err != nil {
				return err
			}
		}
		work = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToWorkResponse(work)
	return &resp, nil
}

// GetRequest returns one request by id
func (s *MaintenanceService) GetRequest(ctx context.Context, id uuid.UUID) (*RequestResponse, error) {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToRequestResponse(request)
	return &resp, nil
}

// GetPlan returns one plan by id
func (s *MaintenanceService) GetPlan(ctx context.Context, id uuid.UUID) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPlanResponse(plan)
	return &resp, nil
}

// GetWork returns one work order by id
func (s *MaintenanceService) GetWork(ctx context.Context, id uuid.UUID) (*WorkResponse, error) {
	work, err := s.workRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToWorkResponse(work)
	return &resp, nil
}

// ListRequests lists requests with filtering and pagination
func (s *MaintenanceService) ListRequests(ctx context.Context, filter RequestListFilter) ([]RequestResponse, int64, error) {
	domainFilter := maintenance.RequestFilter{
		Filter:      shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "requested_at", OrderDir: "desc"},
		EquipmentID: filter.EquipmentID,
	}
	domainFilter.Normalize()
	if filter.Status != nil {
		status := maintenance.RequestStatus(*filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown request status")
		}
		domainFilter.Status = &status
	}

	requests, err := s.requestRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.requestRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, ToRequestResponse(&requests[i]))
	}
	return responses, total, nil
}

// ListPlans lists plans with filtering and pagination
func (s *MaintenanceService) ListPlans(ctx context.Context, filter PlanListFilter) ([]PlanResponse, int64, error) {
	domainFilter := maintenance.PlanFilter{
		Filter:    shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "created_at", OrderDir: "desc"},
		RequestID: filter.RequestID,
	}
	domainFilter.Normalize()
	if filter.Status != nil {
		status := maintenance.PlanStatus(*filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown plan status")
		}
		domainFilter.Status = &status
	}

	plans, err := s.planRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.planRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]PlanResponse, 0, len(plans))
	for i := range plans {
		responses = append(responses, ToPlanResponse(&plans[i]))
	}
	return responses, total, nil
}

// ListWorks lists work orders with filtering and pagination
func (s *MaintenanceService) ListWorks(ctx context.Context, filter WorkListFilter) ([]WorkResponse, int64, error) {
	domainFilter := maintenance.WorkFilter{
		Filter:     shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "created_at", OrderDir: "desc"},
		PlanID:     filter.PlanID,
		AssigneeID: filter.AssigneeID,
	}
	domainFilter.Normalize()
	if filter.Status != nil {
		status := maintenance.WorkStatus(*filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown work status")
		}
		domainFilter.Status = &status
	}

	works, err := s.workRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.workRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]WorkResponse, 0, len(works))
	for i := range works {
		responses = append(responses, ToWorkResponse(&works[i]))
	}
	return responses, total, nil
}

// cascadeFromPlan applies the request-side effects of a plan transition
func (s *MaintenanceService) cascadeFromPlan(ctx context.Context, repos TransactionalRepositories, plan *maintenance.MaintenancePlan, target maintenance.PlanStatus) error {
	if plan.RequestID == nil {
		return nil
	}
	switch target {
	case maintenance.PlanStatusInProgress:
		return s.pullRequestInProgress(ctx, repos, *plan.RequestID)
	case maintenance.PlanStatusCompleted, maintenance.PlanStatusCancelled:
		return s.completeRequestIfSettled(ctx, repos, *plan.RequestID)
	}
	return nil
}

// pullRequestInProgress moves the linked request to IN_PROGRESS alongside
// its first started plan. A request already in progress is left alone; a
// request that cannot legally start aborts the whole transaction.
func (s *MaintenanceService) pullRequestInProgress(ctx context.Context, repos TransactionalRepositories, requestID uuid.UUID) error {
	request, err := repos.RequestRepo().FindForUpdate(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Status == maintenance.RequestStatusInProgress {
		return nil
	}
	if err := request.TransitionTo(maintenance.RequestStatusInProgress); err != nil {
		return err
	}
	return repos.RequestRepo().Save(ctx, request)
}

// completeRequestIfSettled completes the linked request once every plan
// referencing it is COMPLETED or CANCELLED. The request row is locked before
// the sibling scan so two plans settling concurrently serialize on it; the
// second one in then sees the first one's committed status. A request no
// longer in progress (already terminal) is left alone.
func (s *MaintenanceService) completeRequestIfSettled(ctx context.Context, repos TransactionalRepositories, requestID uuid.UUID) error {
	request, err := repos.RequestRepo().FindForUpdate(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Status != maintenance.RequestStatusInProgress {
		return nil
	}
	plans, err := repos.PlanRepo().FindByRequest(ctx, requestID)
	if err != nil {
		return err
	}
	for i := range plans {
		if !plans[i].Status.IsSettled() {
			return nil
		}
	}
	if err := request.TransitionTo(maintenance.RequestStatusCompleted); err != nil {
		return err
	}
	return repos.RequestRepo().Save(ctx, request)
}

// completePlanIfFinished completes the plan once no work order under it is
// outstanding, then runs the plan's own completion cascade. The plan row is
// locked before the sibling scan: the two transactions completing the last
// two works of one plan lock disjoint work rows, so without the parent lock
// each would still read the other's work as outstanding and both would skip
// the cascade. Plans not in progress are left alone.
func (s *MaintenanceService) completePlanIfFinished(ctx context.Context, repos TransactionalRepositories, planID uuid.UUID) error {
	plan, err := repos.PlanRepo().FindForUpdate(ctx, planID)
	if err != nil {
		return err
	}
	if plan.Status != maintenance.PlanStatusInProgress {
		return nil
	}
	works, err := repos.WorkRepo().FindByPlan(ctx, planID)
	if err != nil {
		return err
	}
	for i := range works {
		if works[i].Status.IsOutstanding() {
			return nil
		}
	}
	if err := plan.TransitionTo(maintenance.PlanStatusCompleted); err != nil {
		return err
	}
	if err := repos.PlanRepo().Save(ctx, plan); err != nil {
		return err
	}
	return s.cascadeFromPlan(ctx, repos, plan, maintenance.PlanStatusCompleted)
}

// withConflictRetry re-runs the operation when a generated document number
// loses a uniqueness race. Bounded; exhaustion surfaces as SEQUENCE_CONFLICT.
func (s *MaintenanceService) withConflictRetry(op func() error) error {
	var err error
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		err = op()
		if err == nil || !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
	}
	return shared.ErrSequenceConflict
}
