package handlers

import (
	"subsidy/internal/app"
	assignmentController "subsidy/internal/controllers/assignment"
	"subsidy/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type AssignmentHandler struct {
	Handler
	controller *assignmentController.AssignmentController
}

func NewAssignmentHandler(app app.App, router fiber.Router) *AssignmentHandler {
	log := logger.New("handlers").File("assignment_handler")
	return &AssignmentHandler{
		controller: app.AssignmentController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AssignmentHandler) Register() {
	h.router.Get("/requests/:id/assignments", h.listByRequest)
}

func (h *AssignmentHandler) listByRequest(c *fiber.Ctx) error {
	assignments, err := h.controller.ListByRequest(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"message": "error", "error": "failed to list assignments"})
	}

	return c.JSON(fiber.Map{"message": "success", "assignments": assignments})
}
