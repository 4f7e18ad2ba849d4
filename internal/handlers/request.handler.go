package handlers

import (
	"errors"
	"subsidy/internal/app"
	requestController "subsidy/internal/controllers/request"
	"subsidy/internal/logger"
	. "subsidy/internal/models"
	"subsidy/internal/services"

	"github.com/gofiber/fiber/v2"
)

type RequestHandler struct {
	Handler
	controller *requestController.RequestController
	lifecycle  *services.LifecycleService
}

func NewRequestHandler(app app.App, router fiber.Router) *RequestHandler {
	log := logger.New("handlers").File("request_handler")
	return &RequestHandler{
		controller: app.RequestController,
		lifecycle:  app.LifecycleService,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *RequestHandler) Register() {
	requests := h.router.Group("/requests")
	requests.Post("/", h.createRequest)
	requests.Get("/", h.listRequests)
	requests.Get("/:id", h.getRequest)
	requests.Post("/:id/attachments", h.addAttachment)
	requests.Post("/:id/evaluate", h.evaluateTransition)

	attachments := h.router.Group("/attachments")
	attachments.Post("/:id/state", h.updateAttachmentState)
}

type createRequestBody struct {
	RequestType RequestType `json:"requestType"`
}

// createRequest acknowledges as soon as the request row exists. Reviewer
// assignment happens in the background; the response does not wait for it.
func (h *RequestHandler) createRequest(c *fiber.Ctx) error {
	log := h.log.Function("createRequest")

	var body createRequestBody
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		log.Er("failed to parse create request body", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request body"})
	}

	request, err := h.controller.Create(c.UserContext(), body.RequestType)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to create request"})
	}

	h.lifecycle.OnRequestCreated(request.ID)

	return c.Status(fiber.StatusAccepted).
		JSON(fiber.Map{"message": "success", "request": request})
}

func (h *RequestHandler) listRequests(c *fiber.Ctx) error {
	requests, err := h.controller.List(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to list requests"})
	}

	return c.JSON(fiber.Map{"message": "success", "requests": requests})
}

func (h *RequestHandler) getRequest(c *fiber.Ctx) error {
	request, err := h.controller.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": "request not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to get request"})
	}

	return c.JSON(fiber.Map{"message": "success", "request": request})
}

type addAttachmentBody struct {
	FileType string `json:"fileType"`
}

func (h *RequestHandler) addAttachment(c *fiber.Ctx) error {
	log := h.log.Function("addAttachment")

	var body addAttachmentBody
	if err := c.BodyParser(&body); err != nil {
		log.Er("failed to parse attachment body", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request body"})
	}

	attachment, err := h.controller.AddAttachment(c.UserContext(), c.Params("id"), body.FileType)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": "request not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to add attachment"})
	}

	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"message": "success", "attachment": attachment})
}

type updateAttachmentStateBody struct {
	State AttachmentState `json:"state"`
}

// updateAttachmentState persists the reviewer's decision and acknowledges.
// The lifecycle evaluation runs as a background task; a refused transition is
// only visible in logs, not in this response.
func (h *RequestHandler) updateAttachmentState(c *fiber.Ctx) error {
	log := h.log.Function("updateAttachmentState")

	var body updateAttachmentStateBody
	if err := c.BodyParser(&body); err != nil {
		log.Er("failed to parse state body", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request body"})
	}

	if !body.State.Valid() {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "invalid attachment state"})
	}

	attachmentID := c.Params("id")
	if err := h.controller.UpdateAttachmentState(c.UserContext(), attachmentID, body.State); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to update attachment state"})
	}

	h.lifecycle.OnAttachmentStateChanged(attachmentID, body.State)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "success"})
}

type evaluateTransitionBody struct {
	Trigger AttachmentState `json:"trigger"`
}

// evaluateTransition is the synchronous variant for callers willing to wait
// for the outcome, refusals included.
func (h *RequestHandler) evaluateTransition(c *fiber.Ctx) error {
	log := h.log.Function("evaluateTransition")

	var body evaluateTransitionBody
	if err := c.BodyParser(&body); err != nil {
		log.Er("failed to parse evaluate body", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "failed to parse request body"})
	}

	state, err := h.controller.EvaluateTransition(c.UserContext(), c.Params("id"), body.Trigger)
	if err != nil {
		var refusal *RefusalError
		switch {
		case errors.As(err, &refusal):
			return c.Status(fiber.StatusConflict).
				JSON(fiber.Map{"message": "refused", "reason": refusal.Reason})
		case errors.Is(err, ErrRequestNotFound):
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"message": "error", "error": "request not found"})
		case errors.Is(err, ErrNoAttachments):
			return c.Status(fiber.StatusUnprocessableEntity).
				JSON(fiber.Map{"message": "error", "error": "request has no attachments"})
		default:
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"message": "error", "error": "failed to evaluate transition"})
		}
	}

	return c.JSON(fiber.Map{"message": "success", "state": state})
}
