package forms_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storerating/internal/forms"
	"storerating/internal/models"
	"storerating/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() map[string]string {
	return map[string]string{
		"name":            "John Alexander Thompson",
		"email":           "john@example.com",
		"address":         "123 Main St, New York, NY",
		"password":        "Abcdef1!",
		"confirmPassword": "Abcdef1!",
	}
}

func TestController_SubmitValid(t *testing.T) {
	c := forms.New(validation.FormRegister)
	c.Bind(validRegistration())

	var got map[string]string
	var loadingDuringSubmit bool
	err := c.Submit(context.Background(), func(ctx context.Context, values map[string]string) error {
		got = values
		loadingDuringSubmit = c.Loading()
		return nil
	})

	require.NoError(t, err)
	assert.True(t, loadingDuringSubmit)
	assert.False(t, c.Loading())
	assert.Equal(t, "john@example.com", got["email"])
	assert.Empty(t, c.Errors())
}

func TestController_SubmitInvalidSkipsFn(t *testing.T) {
	c := forms.New(validation.FormRegister)
	c.Bind(validRegistration())
	c.Set("confirmPassword", "Abcdef2!")

	called := false
	err := c.Submit(context.Background(), func(ctx context.Context, values map[string]string) error {
		called = true
		return nil
	})

	assert.False(t, called)
	var verr *forms.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Equal(t, "Passwords do not match", verr.Fields["confirmPassword"])
	assert.Equal(t, verr.Fields, c.Errors())
	assert.Contains(t, err.Error(), "confirmPassword")
}

func TestController_LoadingClearedOnError(t *testing.T) {
	c := forms.New(validation.FormLogin)
	c.Bind(map[string]string{"email": "a@b.com", "password": "x"})

	boom := errors.New("boom")
	err := c.Submit(context.Background(), func(ctx context.Context, values map[string]string) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Loading())
}

func TestController_ConcurrentSubmitRejected(t *testing.T) {
	c := forms.New(validation.FormLogin)
	c.Bind(map[string]string{"email": "a@b.com", "password": "x"})

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- c.Submit(context.Background(), func(ctx context.Context, values map[string]string) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	err := c.Submit(context.Background(), func(ctx context.Context, values map[string]string) error { return nil })
	assert.ErrorIs(t, err, forms.ErrSubmitInProgress)

	close(release)
	assert.NoError(t, <-done)
	assert.False(t, c.Loading())
}

func TestController_DelayHonoursCancellation(t *testing.T) {
	c := forms.New(validation.FormLogin, forms.WithSubmitDelay(time.Hour))
	c.Bind(map[string]string{"email": "a@b.com", "password": "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := c.Submit(ctx, func(ctx context.Context, values map[string]string) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
	assert.False(t, c.Loading())
}

func TestController_DelayElapses(t *testing.T) {
	c := forms.New(validation.FormRating, forms.WithSubmitDelay(10*time.Millisecond))
	c.Set("rating", "5")

	start := time.Now()
	err := c.Submit(context.Background(), func(ctx context.Context, values map[string]string) error { return nil })
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestController_ValuesAreCopies(t *testing.T) {
	c := forms.New(validation.FormLogin)
	c.Set("email", "a@b.com")
	v := c.Values()
	v["email"] = "changed"
	assert.Equal(t, "a@b.com", c.Values()["email"])
	assert.False(t, c.Validate())
	assert.Equal(t, "Password is required", c.Errors()["password"])
}
