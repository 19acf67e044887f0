package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storerating/internal/forms"
	"storerating/internal/models"
	"storerating/internal/observability"
	"storerating/internal/validation"
	"storerating/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// FormSubmitter runs form submissions for handlers: one forms.Controller per
// request, with the configured submit delay and rejection metrics.
type FormSubmitter struct {
	delay   time.Duration
	metrics *observability.Metrics
	log     *logger.Logger
}

// NewFormSubmitter creates a FormSubmitter. metrics and log may be nil.
func NewFormSubmitter(delay time.Duration, metrics *observability.Metrics, log *logger.Logger) *FormSubmitter {
	if log == nil {
		log = logger.Nop()
	}
	return &FormSubmitter{delay: delay, metrics: metrics, log: log.Named("http")}
}

// Submit parses the JSON body as string fields, validates it as form and calls fn.
func (f *FormSubmitter) Submit(c *fiber.Ctx, form validation.Form, fn forms.SubmitFunc) error {
	values := make(map[string]string)
	if err := c.BodyParser(&values); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", models.ErrInvalidInput, err)
	}
	return f.SubmitValues(c, form, values, fn)
}

// SubmitValues is Submit for values the handler already decoded.
func (f *FormSubmitter) SubmitValues(c *fiber.Ctx, form validation.Form, values map[string]string, fn forms.SubmitFunc) error {
	ctrl := forms.New(form, forms.WithSubmitDelay(f.delay))
	ctrl.Bind(values)

	err := ctrl.Submit(c.UserContext(), fn)
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		f.metrics.FormRejected(string(form))
	}
	return err
}

func badRequest(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func shapeErrors(err error) fiber.Map {
	errorMessages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	}
}

// respondError maps a service error onto a status code and JSON body.
func respondError(c *fiber.Ctx, log *logger.Logger, err error, message string) error {
	var verr *forms.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	case errors.Is(err, models.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": message, "error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": message, "error": err.Error()})
	case errors.Is(err, models.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": message, "error": err.Error()})
	case errors.Is(err, models.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": message, "error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusRequestTimeout).JSON(fiber.Map{"message": message, "error": err.Error()})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg(message)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
