package handlers

import (
	"context"

	"storerating/internal/models"
	"storerating/internal/services"
	"storerating/internal/shell"
	"storerating/internal/validation"
	"storerating/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for registration, login and logout.
type AuthHandler struct {
	authService *services.AuthService
	forms       *FormSubmitter
	log         *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, forms *FormSubmitter, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthHandler{
		authService: authService,
		forms:       forms,
		log:         log.Named("auth_handler"),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
}

// HandleRegister handles self registration. New accounts get the user role.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var user models.User
	err := h.forms.Submit(c, validation.FormRegister, func(ctx context.Context, v map[string]string) error {
		user = models.User{
			Name:     v[validation.FieldName],
			Email:    v[validation.FieldEmail],
			Address:  v[validation.FieldAddress],
			Password: v[validation.FieldPassword],
		}
		return h.authService.RegisterUser(&user)
	})
	if err != nil {
		return respondError(c, h.log, err, "Registration failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// HandleLogin checks the credentials and issues a session token together with
// the landing route of the user's role.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var (
		token string
		user  *models.User
	)
	err := h.forms.Submit(c, validation.FormLogin, func(ctx context.Context, v map[string]string) error {
		var err error
		token, user, err = h.authService.LoginUser(v[validation.FieldEmail], v[validation.FieldPassword])
		return err
	})
	if err != nil {
		return respondError(c, h.log, err, "Authentication failed")
	}

	redirect, err := shell.DashboardPath(user.Role)
	if err != nil {
		return respondError(c, h.log, err, "Authentication failed")
	}
	return c.JSON(fiber.Map{
		"message":  "Login successful",
		"token":    token,
		"role":     user.Role,
		"redirect": redirect,
		"user":     user,
	})
}

// HandleLogout tells the client where to go. Tokens are stateless, so there is
// nothing to revoke server side.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":  "Logged out",
		"redirect": shell.Logout(),
	})
}
