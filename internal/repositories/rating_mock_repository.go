package repositories

import (
	"sort"
	"sync"
	"time"

	"storerating/internal/models"

	"github.com/google/uuid"
)

type ratingKey struct {
	userID  string
	storeID string
}

// MockRatingRepository is an in-memory implementation of RatingRepository.
type MockRatingRepository struct {
	ratings map[ratingKey]models.Rating
	mu      sync.RWMutex
}

// NewMockRatingRepository creates a new instance of MockRatingRepository.
func NewMockRatingRepository() *MockRatingRepository {
	return &MockRatingRepository{
		ratings: make(map[ratingKey]models.Rating),
	}
}

// Upsert creates the user's rating for the store or replaces its value.
func (r *MockRatingRepository) Upsert(rating *models.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ratingKey{userID: rating.UserID, storeID: rating.StoreID}
	now := time.Now()
	if existing, ok := r.ratings[key]; ok {
		existing.Value = rating.Value
		existing.UpdatedAt = now
		r.ratings[key] = existing
		*rating = existing
		return nil
	}
	if rating.ID == "" {
		rating.ID = uuid.New().String()
	}
	rating.CreatedAt = now
	rating.UpdatedAt = now
	r.ratings[key] = *rating
	return nil
}

// GetByStoreID returns the ratings of a store, oldest first.
func (r *MockRatingRepository) GetByStoreID(storeID string) ([]models.Rating, error) {
	return r.filter(func(rt models.Rating) bool { return rt.StoreID == storeID }), nil
}

// GetByUserID returns the ratings a user submitted, oldest first.
func (r *MockRatingRepository) GetByUserID(userID string) ([]models.Rating, error) {
	return r.filter(func(rt models.Rating) bool { return rt.UserID == userID }), nil
}

// GetAll returns every rating, oldest first.
func (r *MockRatingRepository) GetAll() ([]models.Rating, error) {
	return r.filter(func(models.Rating) bool { return true }), nil
}

// Count returns the number of ratings.
func (r *MockRatingRepository) Count() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.ratings)), nil
}

func (r *MockRatingRepository) filter(keep func(models.Rating) bool) []models.Rating {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Rating, 0)
	for _, rt := range r.ratings {
		if keep(rt) {
			out = append(out, rt)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
