package handlers

import (
	"context"
	"strconv"

	"storerating/internal/middleware"
	"storerating/internal/services"
	"storerating/internal/validation"
	"storerating/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type submitRatingRequest struct {
	StoreID string `json:"-" validate:"required"`
	Rating  *int   `json:"rating" validate:"required"`
}

// RatingHandler serves the rating user's store list, rating submission and
// the store owner's dashboard.
type RatingHandler struct {
	ratingService *services.RatingService
	forms         *FormSubmitter
	validate      *validator.Validate
	log           *logger.Logger
}

// NewRatingHandler creates a new RatingHandler.
func NewRatingHandler(ratingService *services.RatingService, forms *FormSubmitter, log *logger.Logger) *RatingHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RatingHandler{
		ratingService: ratingService,
		forms:         forms,
		validate:      validator.New(),
		log:           log.Named("rating_handler"),
	}
}

// RegisterRoutes registers the rating routes. The router is expected to be
// behind the identity middleware.
func (h *RatingHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/stores", h.ListStores)
	router.Put("/stores/:id/rating", h.SubmitRating)
	router.Get("/owner/dashboard", h.OwnerDashboard)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Missing identity",
	})
}

// ListStores returns stores matching ?search= over name and address, with
// the caller's own rating.
func (h *RatingHandler) ListStores(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return unauthorized(c)
	}

	stores, err := h.ratingService.BrowseStores(c.UserContext(), claims.UserID, c.Query("search"))
	if err != nil {
		return respondError(c, h.log, err, "Failed to retrieve stores")
	}
	return c.JSON(stores)
}

// SubmitRating handles PUT /stores/:id/rating. Rating a store twice changes
// the earlier rating.
func (h *RatingHandler) SubmitRating(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return unauthorized(c)
	}

	var req submitRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	req.StoreID = c.Params("id")
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(shapeErrors(err))
	}

	var (
		updated bool
		result  any
	)
	values := map[string]string{validation.FieldRating: strconv.Itoa(*req.Rating)}
	err := h.forms.SubmitValues(c, validation.FormRating, values, func(ctx context.Context, _ map[string]string) error {
		rating, upd, err := h.ratingService.SubmitRating(ctx, claims.UserID, req.StoreID, *req.Rating)
		if err != nil {
			return err
		}
		result, updated = rating, upd
		return nil
	})
	if err != nil {
		return respondError(c, h.log, err, "Failed to submit rating")
	}

	status := fiber.StatusCreated
	message := "Rating submitted successfully"
	if updated {
		status = fiber.StatusOK
		message = "Rating updated successfully"
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"rating":  result,
		"updated": updated,
	})
}

// OwnerDashboard returns every store whose owner email is the caller's, with
// its summary and individual ratings.
func (h *RatingHandler) OwnerDashboard(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return unauthorized(c)
	}

	dashboards, err := h.ratingService.OwnerDashboard(c.UserContext(), claims.Email)
	if err != nil {
		return respondError(c, h.log, err, "Failed to load dashboard")
	}
	return c.JSON(dashboards)
}
