// Package forms binds submitted values to the validation rules of one form and
// tracks whether a submission is in flight.
package forms

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"storerating/internal/models"
	"storerating/internal/validation"
)

// ErrSubmitInProgress is returned when Submit is called while a previous
// submission of the same controller has not finished.
var ErrSubmitInProgress = errors.New("form submission already in progress")

// ValidationError carries the per-field messages of a rejected submission.
type ValidationError struct {
	Form   validation.Form
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s form: invalid fields: %s", e.Form, strings.Join(keys, ", "))
}

func (e *ValidationError) Unwrap() error { return models.ErrInvalidInput }

// SubmitFunc performs the actual work once the values passed validation.
type SubmitFunc func(ctx context.Context, values map[string]string) error

// Controller holds the state of one form: its values, the last validation
// result and the loading flag.
type Controller struct {
	form  validation.Form
	delay time.Duration

	mu      sync.Mutex
	values  map[string]string
	errs    validation.Errors
	loading bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithSubmitDelay makes Submit wait d before calling the submit function.
func WithSubmitDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// New returns an empty controller for form.
func New(form validation.Form, opts ...Option) *Controller {
	c := &Controller{
		form:   form,
		values: make(map[string]string),
		errs:   validation.Errors{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Form returns the form this controller validates.
func (c *Controller) Form() validation.Form { return c.form }

// Set updates a single field.
func (c *Controller) Set(field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[field] = value
}

// Bind copies every entry of values into the form.
func (c *Controller) Bind(values map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range values {
		c.values[k] = v
	}
}

// Values returns a copy of the current values.
func (c *Controller) Values() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyMap(c.values)
}

// Errors returns a copy of the messages from the last validation.
func (c *Controller) Errors() validation.Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return validation.Errors(copyMap(c.errs))
}

// Loading reports whether a submission is running.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Validate checks the current values and records the result.
func (c *Controller) Validate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked()
}

func (c *Controller) validateLocked() bool {
	c.errs = validation.Validate(c.form, c.values)
	return c.errs.Valid()
}

// Submit validates the form and, when it passes, runs fn with a snapshot of the
// values. The loading flag is set for the duration of the delay and fn and is
// always cleared afterwards.
func (c *Controller) Submit(ctx context.Context, fn SubmitFunc) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrSubmitInProgress
	}
	if !c.validateLocked() {
		err := &ValidationError{Form: c.form, Fields: validation.Errors(copyMap(c.errs))}
		c.mu.Unlock()
		return err
	}
	c.loading = true
	values := copyMap(c.values)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fn(ctx, values)
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
