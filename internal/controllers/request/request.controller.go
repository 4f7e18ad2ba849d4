package requestController

import (
	"context"
	"subsidy/config"
	"subsidy/internal/events"
	"subsidy/internal/logger"
	. "subsidy/internal/models"
	"subsidy/internal/repositories"
	"subsidy/internal/services"
	"subsidy/internal/workdays"
	"subsidy/internal/workers"
	"time"

	"github.com/google/uuid"
)

// RequestController owns the bill-return lifecycle: it decides the next
// request state from the validation state of its attachments and maintains
// the expiration windows that track the SLA.
type RequestController struct {
	requestRepo        repositories.RequestRepository
	attachmentRepo     repositories.AttachmentRepository
	expirationRepo     repositories.ExpirationRepository
	transactionService *services.TransactionService
	eventBus           *events.EventBus
	config             config.Config
	locks              *workers.KeyedMutex
	now                func() time.Time
	log                logger.Logger
}

func New(
	requestRepo repositories.RequestRepository,
	attachmentRepo repositories.AttachmentRepository,
	expirationRepo repositories.ExpirationRepository,
	transactionService *services.TransactionService,
	eventBus *events.EventBus,
	config config.Config,
) *RequestController {
	return &RequestController{
		requestRepo:        requestRepo,
		attachmentRepo:     attachmentRepo,
		expirationRepo:     expirationRepo,
		transactionService: transactionService,
		eventBus:           eventBus,
		config:             config,
		locks:              workers.NewKeyedMutex(),
		now:                time.Now,
		log:                logger.New("RequestController"),
	}
}

// EvaluateTransition applies the attachment-driven transition function for
// one request. Evaluation and the following writes hold a per-request lock,
// so two concurrent triggers for the same request never act on a stale
// attachment or expiration snapshot. Guard rejections come back as a
// *RefusalError with the request state untouched.
func (rc *RequestController) EvaluateTransition(
	ctx context.Context,
	requestID string,
	trigger AttachmentState,
) (RequestState, error) {
	log := rc.log.Function("EvaluateTransition")

	rc.locks.Lock(requestID)
	defer rc.locks.Unlock(requestID)

	request, err := rc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return "", err
	}

	attachments, err := rc.attachmentRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		return "", err
	}

	if len(attachments) == 0 {
		return "", log.Err("request has no attachments", ErrNoAttachments, "requestID", requestID)
	}

	switch trigger {
	case AttachmentStateInReview, AttachmentStateRejected:
		return rc.transitionReview(ctx, request, trigger)
	case AttachmentStateRequiresValidation:
		return rc.transitionRequiresValidation(ctx, request, attachments)
	case AttachmentStateApproved:
		return rc.transitionApproved(ctx, request, attachments)
	default:
		log.Info("trigger does not drive the request lifecycle, ignoring",
			"requestID", requestID, "trigger", trigger)
		return request.State, nil
	}
}

// transitionReview moves the request into InReview or Rejected, mirroring the
// triggering attachment state, and opens the matching expiration window:
// the first trigger gets the full calendar window, a re-review after a
// decided window gets the shorter business-day extension.
func (rc *RequestController) transitionReview(
	ctx context.Context,
	request *Request,
	trigger AttachmentState,
) (RequestState, error) {
	log := rc.log.Function("transitionReview")

	target := RequestStateInReview
	if trigger == AttachmentStateRejected {
		target = RequestStateRejected
	}

	err := rc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		expirations, err := rc.expirationRepo.GetByRequestID(txCtx, request.ID)
		if err != nil {
			return err
		}

		switch {
		case len(expirations) == 0:
			expiration := &Expiration{
				RequestID:         request.ID,
				RequestExpiration: workdays.AddCalendarDays(rc.now(), rc.config.RequestExpirationDays),
			}
			if err := rc.expirationRepo.Create(txCtx, expiration); err != nil {
				return err
			}
			log.Info("opened initial expiration window",
				"requestID", request.ID, "requestExpiration", expiration.RequestExpiration)

		case len(expirations) == 1 && !expirations[0].Undecided():
			expiration := &Expiration{
				RequestID:         request.ID,
				RequestExpiration: workdays.AddBusinessDays(rc.now(), rc.config.ReviewExtensionBusinessDays),
			}
			if err := rc.expirationRepo.Create(txCtx, expiration); err != nil {
				return err
			}
			log.Info("opened review extension window",
				"requestID", request.ID, "requestExpiration", expiration.RequestExpiration)
		}

		return rc.requestRepo.UpdateState(txCtx, request.ID, target)
	})
	if err != nil {
		return "", err
	}

	rc.publishStateChange(request.ID, target)

	return target, nil
}

// transitionRequiresValidation enters peer validation. Refused while any
// attachment is still rejected: a request must not go out for validation
// with a known-bad document.
func (rc *RequestController) transitionRequiresValidation(
	ctx context.Context,
	request *Request,
	attachments []*Attachment,
) (RequestState, error) {
	log := rc.log.Function("transitionRequiresValidation")

	for _, attachment := range attachments {
		if attachment.State == AttachmentStateRejected {
			refusal := &RefusalError{
				State:  RequestStateRequiresValidation,
				Reason: "request has rejected attachments",
			}
			log.Info("transition refused", "requestID", request.ID, "reason", refusal.Reason)
			return request.State, refusal
		}
	}

	err := rc.transactionService.Execute(ctx, func(txCtx context.Context) error {
		expirations, err := rc.expirationRepo.GetByRequestID(txCtx, request.ID)
		if err != nil {
			return err
		}

		switch {
		case len(expirations) == 2 && expirations[0].Undecided():
			response := workdays.AddCalendarDays(rc.now(), rc.config.RevalidationResponseDays)
			if err := rc.expirationRepo.SetResponseExpiration(txCtx, expirations[0].ID, response); err != nil {
				return err
			}
			log.Info("set revalidation response deadline",
				"requestID", request.ID, "responseExpiration", response)

		case len(expirations) == 1 && expirations[0].Undecided():
			response := workdays.AddBusinessDays(rc.now(), rc.config.ResponseBusinessDays)
			if err := rc.expirationRepo.SetResponseExpiration(txCtx, expirations[0].ID, response); err != nil {
				return err
			}
			log.Info("set response deadline",
				"requestID", request.ID, "responseExpiration", response)
		}

		return rc.requestRepo.UpdateState(txCtx, request.ID, RequestStateRequiresValidation)
	})
	if err != nil {
		return "", err
	}

	rc.publishStateChange(request.ID, RequestStateRequiresValidation)

	return RequestStateRequiresValidation, nil
}

// transitionApproved moves the request to NonPaid once enough attachments
// have been approved. Payment import takes it from there.
func (rc *RequestController) transitionApproved(
	ctx context.Context,
	request *Request,
	attachments []*Attachment,
) (RequestState, error) {
	log := rc.log.Function("transitionApproved")

	approved := 0
	for _, attachment := range attachments {
		if attachment.State == AttachmentStateApproved {
			approved++
		}
	}

	if approved < rc.config.ApprovalThreshold {
		refusal := &RefusalError{
			State:  RequestStateNonPaid,
			Reason: "not enough approved attachments",
		}
		log.Info("transition refused", "requestID", request.ID,
			"approved", approved, "threshold", rc.config.ApprovalThreshold)
		return request.State, refusal
	}

	if err := rc.requestRepo.UpdateState(ctx, request.ID, RequestStateNonPaid); err != nil {
		return "", err
	}

	rc.publishStateChange(request.ID, RequestStateNonPaid)

	return RequestStateNonPaid, nil
}

func (rc *RequestController) publishStateChange(requestID string, state RequestState) {
	if rc.eventBus == nil {
		return
	}

	event := events.Event{
		ID:        uuid.New().String(),
		Type:      events.TypeRequestStateChanged,
		Channel:   "requests",
		RequestID: requestID,
		Data:      map[string]any{"state": string(state)},
		Timestamp: rc.now(),
	}

	if err := rc.eventBus.Publish("requests", event); err != nil {
		rc.log.Warn("failed to publish state change event",
			"requestID", requestID, "state", state, "error", err)
	}
}

// Create inserts a new bill-return request in the Created state.
func (rc *RequestController) Create(ctx context.Context, requestType RequestType) (*Request, error) {
	log := rc.log.Function("Create")

	if requestType == "" {
		requestType = RequestTypeBillReturn
	}

	request := &Request{
		RequestType: requestType,
		State:       RequestStateCreated,
		Active:      true,
	}

	if err := rc.requestRepo.Create(ctx, request); err != nil {
		return nil, log.Err("failed to create request", err)
	}

	return request, nil
}

// AddAttachment records a newly uploaded document for a request.
func (rc *RequestController) AddAttachment(
	ctx context.Context,
	requestID, fileType string,
) (*Attachment, error) {
	log := rc.log.Function("AddAttachment")

	if _, err := rc.requestRepo.GetByID(ctx, requestID); err != nil {
		return nil, err
	}

	attachment := &Attachment{
		RequestID: requestID,
		FileType:  fileType,
		State:     AttachmentStateInReview,
	}

	if err := rc.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, log.Err("failed to add attachment", err, "requestID", requestID)
	}

	return attachment, nil
}

// UpdateAttachmentState records a reviewer's validation decision on one
// attachment. The lifecycle consequence is evaluated separately, off the
// response path.
func (rc *RequestController) UpdateAttachmentState(
	ctx context.Context,
	attachmentID string,
	state AttachmentState,
) error {
	log := rc.log.Function("UpdateAttachmentState")

	if !state.Valid() {
		return log.Error("invalid attachment state", "attachmentID", attachmentID, "state", state)
	}

	return rc.attachmentRepo.UpdateState(ctx, attachmentID, state)
}

// Get returns one request by id.
func (rc *RequestController) Get(ctx context.Context, id string) (*Request, error) {
	return rc.requestRepo.GetByID(ctx, id)
}

// List returns the active requests, newest first.
func (rc *RequestController) List(ctx context.Context) ([]*Request, error) {
	return rc.requestRepo.GetAll(ctx)
}
