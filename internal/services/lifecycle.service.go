package services

import (
	"context"
	"errors"
	"subsidy/internal/logger"
	. "subsidy/internal/models"
	"subsidy/internal/workers"
)

// TransitionEvaluator is the synchronous lifecycle entry point implemented by
// the request controller.
type TransitionEvaluator interface {
	EvaluateTransition(
		ctx context.Context,
		requestID string,
		trigger AttachmentState,
	) (RequestState, error)
}

// ReviewerAssigner assigns the required reviewer roles to a request.
type ReviewerAssigner interface {
	AssignReviewers(ctx context.Context, requestID string) error
}

// RequestResolver resolves the owning request from an attachment id.
type RequestResolver interface {
	GetIDByAttachment(ctx context.Context, attachmentID string) (string, error)
}

// LifecycleService connects inbound events to the lifecycle controllers.
// Both entry points acknowledge immediately and run the real work on the
// dispatcher: the caller never learns whether the side effects succeeded,
// only the logs do. Best-effort at-most-once, no retries.
type LifecycleService struct {
	dispatcher *workers.Dispatcher
	evaluator  TransitionEvaluator
	assigner   ReviewerAssigner
	resolver   RequestResolver
	log        logger.Logger
}

func NewLifecycleService(
	dispatcher *workers.Dispatcher,
	evaluator TransitionEvaluator,
	assigner ReviewerAssigner,
	resolver RequestResolver,
) *LifecycleService {
	return &LifecycleService{
		dispatcher: dispatcher,
		evaluator:  evaluator,
		assigner:   assigner,
		resolver:   resolver,
		log:        logger.New("LifecycleService"),
	}
}

// OnRequestCreated schedules reviewer assignment for a new request.
func (s *LifecycleService) OnRequestCreated(requestID string) {
	s.dispatcher.Dispatch("assign-reviewers", func(ctx context.Context) error {
		return s.assigner.AssignReviewers(ctx, requestID)
	})
}

// OnAttachmentStateChanged schedules a lifecycle evaluation for the request
// owning the attachment.
func (s *LifecycleService) OnAttachmentStateChanged(attachmentID string, state AttachmentState) {
	log := s.log.Function("OnAttachmentStateChanged")

	s.dispatcher.Dispatch("evaluate-transition", func(ctx context.Context) error {
		requestID, err := s.resolver.GetIDByAttachment(ctx, attachmentID)
		if err != nil {
			return err
		}

		newState, err := s.evaluator.EvaluateTransition(ctx, requestID, state)
		if err != nil {
			var refusal *RefusalError
			if errors.As(err, &refusal) {
				// Expected business outcome, not a task failure.
				log.Info("transition refused",
					"requestID", requestID, "trigger", state, "reason", refusal.Reason)
				return nil
			}
			return err
		}

		log.Info("request transitioned",
			"requestID", requestID, "trigger", state, "state", newState)
		return nil
	})
}
