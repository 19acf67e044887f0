package handlers

import (
	"context"

	"storerating/internal/models"
	"storerating/internal/services"
	"storerating/internal/validation"
	"storerating/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles the administrator dashboard, listings and creation forms.
type AdminHandler struct {
	authService  *services.AuthService
	storeService *services.StoreService
	adminService *services.AdminService
	forms        *FormSubmitter
	log          *logger.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(authService *services.AuthService, storeService *services.StoreService,
	adminService *services.AdminService, forms *FormSubmitter, log *logger.Logger) *AdminHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AdminHandler{
		authService:  authService,
		storeService: storeService,
		adminService: adminService,
		forms:        forms,
		log:          log.Named("admin_handler"),
	}
}

// RegisterRoutes registers the admin routes. The router is expected to be
// behind the identity middleware.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	adminRoutes := router.Group("/admin")
	adminRoutes.Get("/dashboard", h.GetDashboard)
	adminRoutes.Post("/users", h.CreateUser)
	adminRoutes.Get("/users", h.ListUsers)
	adminRoutes.Post("/stores", h.CreateStore)
	adminRoutes.Get("/stores", h.ListStores)
}

// GetDashboard returns the platform totals.
func (h *AdminHandler) GetDashboard(c *fiber.Ctx) error {
	totals, err := h.adminService.Totals()
	if err != nil {
		return respondError(c, h.log, err, "Failed to load dashboard")
	}
	return c.JSON(totals)
}

// CreateUser handles the Add User form. Unlike registration, any role may be given.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var user models.User
	err := h.forms.Submit(c, validation.FormAddUser, func(ctx context.Context, v map[string]string) error {
		user = models.User{
			Name:     v[validation.FieldName],
			Email:    v[validation.FieldEmail],
			Address:  v[validation.FieldAddress],
			Password: v[validation.FieldPassword],
			Role:     models.Role(v[validation.FieldRole]),
		}
		return h.authService.CreateUser(&user)
	})
	if err != nil {
		return respondError(c, h.log, err, "Failed to create user")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

// ListUsers returns users matching ?search= over name, email, address and role.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.adminService.ListUsers(c.Query("search"))
	if err != nil {
		return respondError(c, h.log, err, "Failed to retrieve users")
	}
	return c.JSON(users)
}

// CreateStore handles the Add Store form.
func (h *AdminHandler) CreateStore(c *fiber.Ctx) error {
	var store models.Store
	err := h.forms.Submit(c, validation.FormAddStore, func(ctx context.Context, v map[string]string) error {
		email, ok := v[validation.FieldStoreEmail]
		if !ok {
			email = v[validation.FieldEmail]
		}
		store = models.Store{
			Name:       v[validation.FieldName],
			Email:      email,
			Address:    v[validation.FieldAddress],
			OwnerName:  v[validation.FieldOwnerName],
			OwnerEmail: v[validation.FieldOwnerEmail],
		}
		return h.storeService.CreateStore(&store)
	})
	if err != nil {
		return respondError(c, h.log, err, "Failed to create store")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Store created successfully",
		"store":   store,
	})
}

// ListStores returns stores matching ?search= with their rating summaries.
func (h *AdminHandler) ListStores(c *fiber.Ctx) error {
	stores, err := h.adminService.ListStores(c.UserContext(), c.Query("search"))
	if err != nil {
		return respondError(c, h.log, err, "Failed to retrieve stores")
	}
	return c.JSON(stores)
}
