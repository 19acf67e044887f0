package repositories

import "storerating/internal/models"

// RatingRepository defines the interface for rating data access.
type RatingRepository interface {
	// Upsert stores the rating of rating.UserID for rating.StoreID, replacing
	// the value of an earlier rating by the same user. On return rating holds
	// the persisted ID and timestamps.
	Upsert(rating *models.Rating) error
	GetByStoreID(storeID string) ([]models.Rating, error)
	GetByUserID(userID string) ([]models.Rating, error)
	GetAll() ([]models.Rating, error)
	Count() (int64, error)
}
