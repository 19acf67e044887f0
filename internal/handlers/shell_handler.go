package handlers

import (
	"storerating/internal/models"
	"storerating/internal/shell"
	"storerating/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type shellRequest struct {
	Role string `validate:"required,oneof=admin store_owner user"`
}

// ShellHandler serves the role-scoped layout: navigation links, landing route
// and logout target.
type ShellHandler struct {
	validate *validator.Validate
	log      *logger.Logger
}

// NewShellHandler creates a new ShellHandler.
func NewShellHandler(log *logger.Logger) *ShellHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ShellHandler{
		validate: validator.New(),
		log:      log.Named("shell_handler"),
	}
}

// RegisterRoutes registers the shell routes with the Fiber app.
func (h *ShellHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/shell/:role", h.GetLayout)
}

// GetLayout handles GET /shell/:role.
func (h *ShellHandler) GetLayout(c *fiber.Ctx) error {
	req := shellRequest{Role: c.Params("role")}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(shapeErrors(err))
	}

	layout, err := shell.LayoutFor(models.Role(req.Role))
	if err != nil {
		return respondError(c, h.log, err, "Unknown role")
	}
	return c.JSON(layout)
}
