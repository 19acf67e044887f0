package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storerating/internal/database"
	"storerating/internal/handlers"
	"storerating/internal/middleware"
	"storerating/internal/repositories"
	"storerating/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPassword = "Abcdef1!"

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	v := viper.New()
	v.SetDefault("JWT_SECRET", "test_jwt_secret")
	v.AutomaticEnv()

	// One database per test; shared cache keeps it alive across pool connections.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.Open(database.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	// Initialize Repositories
	userRepo := repositories.NewGORMUserRepository(db)
	storeRepo := repositories.NewGORMStoreRepository(db)
	ratingRepo := repositories.NewGORMRatingRepository(db)

	// Initialize Services
	authService := services.NewAuthService(userRepo, v.GetString("JWT_SECRET"), time.Hour, nil)
	storeService := services.NewStoreService(storeRepo, ratingRepo, nil, nil)
	ratingService := services.NewRatingService(ratingRepo, userRepo, storeService, nil, nil, nil)
	adminService := services.NewAdminService(userRepo, storeRepo, ratingRepo, storeService)

	// Initialize Handlers
	submitter := handlers.NewFormSubmitter(0, nil, nil)
	authHandler := handlers.NewAuthHandler(authService, submitter, nil)
	shellHandler := handlers.NewShellHandler(nil)
	adminHandler := handlers.NewAdminHandler(authService, storeService, adminService, submitter, nil)
	ratingHandler := handlers.NewRatingHandler(ratingService, submitter, nil)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	// Public routes
	authHandler.RegisterRoutes(apiV1)
	shellHandler.RegisterRoutes(apiV1)

	// Protected routes (require JWT authentication)
	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	adminHandler.RegisterRoutes(protectedRoutes)
	ratingHandler.RegisterRoutes(protectedRoutes)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	} else if len(raw) > 0 {
		var items []any
		require.NoError(t, json.Unmarshal(raw, &items))
		out["items"] = items
	}
	return resp.StatusCode, out
}

func registration(name, email string) map[string]string {
	return map[string]string{
		"name":            name,
		"email":           email,
		"address":         "123 Main St, New York, NY",
		"password":        validPassword,
		"confirmPassword": validPassword,
	}
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": validPassword,
	})
	require.Equal(t, http.StatusOK, status, resp)
	return resp["token"].(string)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	// Test Registration
	status, resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "",
		registration("John Alexander Thompson", "john@example.com"))
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "User registered successfully", resp["message"])
	user := resp["user"].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "password")

	// Test Duplicate Registration
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "",
		registration("John Alexander Thompson", "john@example.com"))
	assert.Equal(t, http.StatusConflict, status)

	// Test Login
	status, resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "john@example.com",
		"password": validPassword,
	})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, resp["token"])
	assert.Equal(t, "user", resp["role"])
	assert.Equal(t, "/user/dashboard", resp["redirect"])

	// Test Login with wrong password
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "john@example.com",
		"password": "Wrong123!",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	// Test Logout
	status, resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "/login", resp["redirect"])
}

func TestAuthRegisterValidation(t *testing.T) {
	app := setupApp(t)

	body := registration("Short Name", "not-an-email")
	body["confirmPassword"] = "Abcdef2!"
	status, resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", resp["message"])

	errs := resp["errors"].(map[string]any)
	assert.Equal(t, "Name must be at least 20 characters", errs["name"])
	assert.Equal(t, "Please enter a valid email address", errs["email"])
	assert.Equal(t, "Passwords do not match", errs["confirmPassword"])
	assert.NotContains(t, errs, "password")

	status, resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
	errs = resp["errors"].(map[string]any)
	assert.Equal(t, "Email is required", errs["email"])
	assert.Equal(t, "Password is required", errs["password"])
}

func TestShellLayout(t *testing.T) {
	app := setupApp(t)

	status, resp := doJSON(t, app, http.MethodGet, "/api/v1/shell/store_owner", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "/store/dashboard", resp["dashboard"])
	assert.Equal(t, "/login", resp["logout"])
	assert.Len(t, resp["links"], 4)

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/shell/superuser", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminUsersAndStores(t *testing.T) {
	app := setupApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "",
		registration("Robert Benjamin Anderson", "robert@admin.com"))
	require.Equal(t, http.StatusCreated, status)
	token := login(t, app, "robert@admin.com")

	// Add User with an explicit role
	status, resp := doJSON(t, app, http.MethodPost, "/api/v1/admin/users", token, map[string]string{
		"name":     "Michael Christopher Davis",
		"email":    "michael@store.com",
		"address":  "789 Pine Rd, Chicago, IL",
		"password": validPassword,
		"role":     "store_owner",
	})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "store_owner", resp["user"].(map[string]any)["role"])

	status, resp = doJSON(t, app, http.MethodPost, "/api/v1/admin/users", token, map[string]string{
		"name":     "Michael Christopher Davis",
		"email":    "michael2@store.com",
		"address":  "789 Pine Rd, Chicago, IL",
		"password": validPassword,
		"role":     "owner",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please select a valid role", resp["errors"].(map[string]any)["role"])

	// Add Store
	store := map[string]string{
		"name":       "Grocery Supermarket Plus",
		"storeEmail": "grocery@store.com",
		"address":    "123 Market St, San Francisco, CA",
		"ownerName":  "Michael Christopher Davis",
		"ownerEmail": "michael@store.com",
	}
	status, resp = doJSON(t, app, http.MethodPost, "/api/v1/admin/stores", token, store)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "grocery@store.com", resp["store"].(map[string]any)["email"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/admin/stores", token, store)
	assert.Equal(t, http.StatusConflict, status)

	store["storeEmail"] = "grocery.store.com"
	status, resp = doJSON(t, app, http.MethodPost, "/api/v1/admin/stores", token, store)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please enter a valid store email address", resp["errors"].(map[string]any)["storeEmail"])

	// Listings and dashboard
	status, resp = doJSON(t, app, http.MethodGet, "/api/v1/admin/users?search=STORE_OWNER", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, resp["items"], 1)

	status, resp = doJSON(t, app, http.MethodGet, "/api/v1/admin/stores?search=market", token, nil)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, resp["items"], 1)
	rating := resp["items"].([]any)[0].(map[string]any)["rating"].(map[string]any)
	assert.Nil(t, rating["average"])

	status, resp = doJSON(t, app, http.MethodGet, "/api/v1/admin/dashboard", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), resp["total_users"])
	assert.Equal(t, float64(1), resp["total_stores"])
	assert.Equal(t, float64(0), resp["total_ratings"])
}

func TestRatingFlow(t *testing.T) {
	app := setupApp(t)

	for _, u := range []struct{ name, email string }{
		{"Robert Benjamin Anderson", "robert@admin.com"},
		{"John Alexander Thompson", "john@example.com"},
		{"Michael Christopher Davis", "michael@store.com"},
	} {
		status, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", registration(u.name, u.email))
		require.Equal(t, http.StatusCreated, status)
	}
	adminToken := login(t, app, "robert@admin.com")
	userToken := login(t, app, "john@example.com")
	ownerToken := login(t, app, "michael@store.com")

	status, resp := doJSON(t, app, http.MethodPost, "/api/v1/admin/stores", adminToken, map[string]string{
		"name":       "Electronics Megastore Central",
		"email":      "electronics@store.com",
		"address":    "456 Tech Blvd, Seattle, WA",
		"ownerName":  "Michael Christopher Davis",
		"ownerEmail": "michael@store.com",
	})
	require.Equal(t, http.StatusCreated, status)
	storeID := resp["store"].(map[string]any)["id"].(string)
	ratingPath := "/api/v1/stores/" + storeID + "/rating"

	// First rating creates, second one changes it.
	status, resp = doJSON(t, app, http.MethodPut, ratingPath, userToken, map[string]int{"rating": 3})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, false, resp["updated"])

	status, resp = doJSON(t, app, http.MethodPut, ratingPath, adminToken, map[string]int{"rating": 5})
	assert.Equal(t, http.StatusCreated, status)

	status, resp = doJSON(t, app, http.MethodPut, ratingPath, userToken, map[string]int{"rating": 4})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, resp["updated"])

	// Out of range, missing, unknown store
	status, resp = doJSON(t, app, http.MethodPut, ratingPath, userToken, map[string]int{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Rating must be between 1 and 5", resp["errors"].(map[string]any)["rating"])

	status, _ = doJSON(t, app, http.MethodPut, ratingPath, userToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPut, "/api/v1/stores/"+uuid.New().String()+"/rating", userToken, map[string]int{"rating": 4})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodPut, "/api/v1/stores/not-a-store/rating", userToken, map[string]int{"rating": 4})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodPut, ratingPath, "", map[string]int{"rating": 4})
	assert.Equal(t, http.StatusUnauthorized, status)

	// User view carries the overall summary and the caller's own rating.
	status, resp = doJSON(t, app, http.MethodGet, "/api/v1/stores?search=tech", userToken, nil)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, resp["items"], 1)
	view := resp["items"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(4), view["user_rating"])
	assert.Equal(t, 4.5, view["rating"].(map[string]any)["average"])

	status, resp = doJSON(t, app, http.MethodGet, "/api/v1/stores?search=nowhere", userToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, resp["items"], 0)

	// Owner dashboard
	status, resp = doJSON(t, app, http.MethodGet, "/api/v1/owner/dashboard", ownerToken, nil)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, resp["items"], 1)
	dashboard := resp["items"].([]any)[0].(map[string]any)
	assert.Equal(t, 4.5, dashboard["summary"].(map[string]any)["average"])
	assert.Len(t, dashboard["ratings"], 2)
}
