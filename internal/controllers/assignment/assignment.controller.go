package assignmentController

import (
	"context"
	"errors"
	"subsidy/internal/events"
	"subsidy/internal/logger"
	. "subsidy/internal/models"
	"subsidy/internal/repositories"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AssignmentController distributes a new request across the reviewer roles.
// Each role is selected and persisted on its own goroutine: a role without
// any available reviewer fails alone and never blocks the sibling roles.
type AssignmentController struct {
	assignmentRepo repositories.AssignmentRepository
	userRepo       repositories.UserRepository
	eventBus       *events.EventBus
	log            logger.Logger
}

func New(
	assignmentRepo repositories.AssignmentRepository,
	userRepo repositories.UserRepository,
	eventBus *events.EventBus,
) *AssignmentController {
	return &AssignmentController{
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
		eventBus:       eventBus,
		log:            logger.New("AssignmentController"),
	}
}

// AssignReviewers creates one assignment per required role for the request.
// Selection is two-phase per role: prefer the most recently created user who
// holds no assignment at all in the current snapshot, otherwise fall back to
// the least-loaded user holding the role. Partial success is by design; the
// returned error joins the per-role failures, if any.
func (ac *AssignmentController) AssignReviewers(ctx context.Context, requestID string) error {
	log := ac.log.Function("AssignReviewers")

	assignments, err := ac.assignmentRepo.GetAll(ctx)
	if err != nil {
		return log.Err("failed to load workload snapshot", err, "requestID", requestID)
	}

	busySet := make(map[string]struct{}, len(assignments))
	for _, assignment := range assignments {
		busySet[assignment.UserID] = struct{}{}
	}

	busy := make([]string, 0, len(busySet))
	for userID := range busySet {
		busy = append(busy, userID)
	}

	roles := RequiredRoles()
	roleErrs := make([]error, len(roles))
	assigned := make([]*Assignment, len(roles))

	var wg sync.WaitGroup
	wg.Add(len(roles))
	for i, role := range roles {
		go func(i int, role ReviewerRole) {
			defer wg.Done()

			user, err := ac.selectReviewer(ctx, role, busy)
			if err != nil {
				roleErrs[i] = err
				return
			}

			assignment := &Assignment{
				UserID:    user.ID,
				RequestID: requestID,
				Role:      role,
			}
			if err := ac.assignmentRepo.Create(ctx, assignment); err != nil {
				roleErrs[i] = err
				return
			}

			assigned[i] = assignment
			log.Info("reviewer assigned",
				"requestID", requestID, "role", role, "userID", user.ID)
		}(i, role)
	}
	wg.Wait()

	for _, assignment := range assigned {
		if assignment != nil {
			ac.publishAssigned(assignment)
		}
	}

	if err := errors.Join(roleErrs...); err != nil {
		return log.Err("assignment round finished with failures", err, "requestID", requestID)
	}

	return nil
}

// selectReviewer picks the reviewer for one role. The two phases reproduce
// the production heuristic: spread new work to users who hold nothing yet,
// then level by assignment count.
func (ac *AssignmentController) selectReviewer(
	ctx context.Context,
	role ReviewerRole,
	busy []string,
) (*User, error) {
	user, err := ac.userRepo.GetLatestByRoleExcluding(ctx, role, busy)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user, err = ac.userRepo.GetLeastAssignedByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	return nil, &UserAssignmentError{Role: role}
}

// ListByRequest returns the assignments recorded for one request.
func (ac *AssignmentController) ListByRequest(
	ctx context.Context,
	requestID string,
) ([]*Assignment, error) {
	return ac.assignmentRepo.GetByRequestID(ctx, requestID)
}

func (ac *AssignmentController) publishAssigned(assignment *Assignment) {
	if ac.eventBus == nil {
		return
	}

	event := events.Event{
		ID:        uuid.New().String(),
		Type:      events.TypeRequestAssigned,
		Channel:   "requests",
		UserID:    assignment.UserID,
		RequestID: assignment.RequestID,
		Data:      map[string]any{"role": string(assignment.Role)},
		Timestamp: time.Now(),
	}

	if err := ac.eventBus.Publish("requests", event); err != nil {
		ac.log.Warn("failed to publish assignment event",
			"requestID", assignment.RequestID, "role", assignment.Role, "error", err)
	}
}
