package services

import (
	"context"
	"fmt"

	"storerating/internal/aggregate"
	"storerating/internal/models"
	"storerating/internal/repositories"
)

// DashboardTotals are the counters on the administrator dashboard.
type DashboardTotals struct {
	Users   int64 `json:"total_users"`
	Stores  int64 `json:"total_stores"`
	Ratings int64 `json:"total_ratings"`
}

// UserView is a user as listed to administrators. Store owners carry the
// average over all ratings of the stores referencing their email.
type UserView struct {
	models.User
	Rating *float64 `json:"rating,omitempty"`
}

// AdminService backs the administrator dashboard and listings.
type AdminService struct {
	userRepo   repositories.UserRepository
	storeRepo  repositories.StoreRepository
	ratingRepo repositories.RatingRepository
	stores     *StoreService
}

// NewAdminService creates a new AdminService.
func NewAdminService(userRepo repositories.UserRepository, storeRepo repositories.StoreRepository,
	ratingRepo repositories.RatingRepository, stores *StoreService) *AdminService {
	return &AdminService{
		userRepo:   userRepo,
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
		stores:     stores,
	}
}

// Totals counts users, stores and ratings.
func (s *AdminService) Totals() (*DashboardTotals, error) {
	users, err := s.userRepo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	stores, err := s.storeRepo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count stores: %w", err)
	}
	ratings, err := s.ratingRepo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count ratings: %w", err)
	}
	return &DashboardTotals{Users: users, Stores: stores, Ratings: ratings}, nil
}

// ListUsers returns the users whose name, email, address or role contain search.
func (s *AdminService) ListUsers(search string) ([]UserView, error) {
	users, err := s.userRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		if !matchesSearch(search, u.Name, u.Email, u.Address, string(u.Role)) {
			continue
		}
		view := UserView{User: u}
		if u.Role == models.RoleStoreOwner {
			avg, err := s.ownerAverage(u.Email)
			if err != nil {
				return nil, err
			}
			view.Rating = avg
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *AdminService) ownerAverage(email string) (*float64, error) {
	stores, err := s.storeRepo.GetByOwnerEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores of %s: %w", email, err)
	}
	var values []int
	for _, st := range stores {
		ratings, err := s.ratingRepo.GetByStoreID(st.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load ratings of store %s: %w", st.ID, err)
		}
		values = append(values, aggregate.Values(ratings)...)
	}
	return aggregate.Summarize(values).Average, nil
}

// ListStores returns the stores matching search with their summaries.
func (s *AdminService) ListStores(ctx context.Context, search string) ([]StoreView, error) {
	return s.stores.ListStores(ctx, search)
}
