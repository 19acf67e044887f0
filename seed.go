package main

import (
	"context"
	"errors"
	"fmt"

	"storerating/internal/models"
	"storerating/pkg/logger"
)

// demoPassword satisfies the password policy. Demo accounts only.
const demoPassword = "Passw0rd!"

var demoUsers = []models.User{
	{Name: "John Alexander Thompson", Email: "john@example.com", Address: "123 Main St, New York, NY", Role: models.RoleUser},
	{Name: "Sarah Elizabeth Williams", Email: "sarah@example.com", Address: "456 Oak Ave, Los Angeles, CA", Role: models.RoleUser},
	{Name: "Michael Christopher Davis", Email: "michael@store.com", Address: "789 Pine Rd, Chicago, IL", Role: models.RoleStoreOwner},
	{Name: "Jennifer Katherine Johnson", Email: "jennifer@store.com", Address: "101 Maple Dr, Houston, TX", Role: models.RoleStoreOwner},
	{Name: "Robert Benjamin Anderson", Email: "robert@admin.com", Address: "202 Cedar Ln, Phoenix, AZ", Role: models.RoleAdmin},
}

var demoStores = []models.Store{
	{Name: "Grocery Supermarket Plus", Email: "grocery@store.com", Address: "123 Market St, San Francisco, CA",
		OwnerName: "Michael Christopher Davis", OwnerEmail: "michael@store.com"},
	{Name: "Electronics Megastore Central", Email: "electronics@store.com", Address: "456 Tech Blvd, Seattle, WA",
		OwnerName: "Michael Christopher Davis", OwnerEmail: "michael@store.com"},
	{Name: "Fashion Boutique Collection", Email: "fashion@store.com", Address: "789 Style Ave, Miami, FL",
		OwnerName: "Jennifer Katherine Johnson", OwnerEmail: "jennifer@store.com"},
	{Name: "Home Improvement Warehouse", Email: "home@store.com", Address: "101 Builder St, Denver, CO",
		OwnerName: "Jennifer Katherine Johnson", OwnerEmail: "jennifer@store.com"},
	{Name: "Gourmet Restaurant Deluxe", Email: "gourmet@store.com", Address: "202 Food Ln, New Orleans, LA",
		OwnerName: "Michael Christopher Davis", OwnerEmail: "michael@store.com"},
	{Name: "Fitness Center & Gym", Email: "fitness@store.com", Address: "303 Health Blvd, Boston, MA",
		OwnerName: "Jennifer Katherine Johnson", OwnerEmail: "jennifer@store.com"},
}

// demoRatings are keyed by user email, then store email.
var demoRatings = map[string]map[string]int{
	"john@example.com": {
		"grocery@store.com":     5,
		"electronics@store.com": 4,
		"home@store.com":        3,
	},
	"sarah@example.com": {
		"grocery@store.com":     4,
		"fashion@store.com":     5,
		"gourmet@store.com":     4,
		"fitness@store.com":     4,
		"electronics@store.com": 4,
	},
	"robert@admin.com": {
		"fashion@store.com": 5,
		"home@store.com":    5,
		"gourmet@store.com": 5,
	},
}

// seedDemoData populates the repositories with the demo dataset. Records that
// already exist are kept as they are.
func seedDemoData(ctx context.Context, a *App, log *logger.Logger) error {
	userIDs := make(map[string]string, len(demoUsers))
	for _, u := range demoUsers {
		user := u
		user.Password = demoPassword
		err := a.Auth.CreateUser(&user)
		switch {
		case errors.Is(err, models.ErrConflict):
			log.Debug().Str("email", user.Email).Msg("demo user already present")
			continue
		case err != nil:
			return fmt.Errorf("failed to seed user %s: %w", user.Email, err)
		}
		userIDs[user.Email] = user.ID
	}

	storeIDs := make(map[string]string, len(demoStores))
	for _, s := range demoStores {
		store := s
		err := a.Stores.CreateStore(&store)
		switch {
		case errors.Is(err, models.ErrConflict):
			log.Debug().Str("email", store.Email).Msg("demo store already present")
			continue
		case err != nil:
			return fmt.Errorf("failed to seed store %s: %w", store.Email, err)
		}
		storeIDs[store.Email] = store.ID
	}

	seeded := 0
	for userEmail, ratings := range demoRatings {
		userID, ok := userIDs[userEmail]
		if !ok {
			continue
		}
		for storeEmail, value := range ratings {
			storeID, ok := storeIDs[storeEmail]
			if !ok {
				continue
			}
			if _, _, err := a.Ratings.SubmitRating(ctx, userID, storeID, value); err != nil {
				return fmt.Errorf("failed to seed rating %s -> %s: %w", userEmail, storeEmail, err)
			}
			seeded++
		}
	}

	log.Info().
		Int("users", len(userIDs)).
		Int("stores", len(storeIDs)).
		Int("ratings", seeded).
		Msg("demo data seeded")
	return nil
}
