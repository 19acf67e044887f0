package repositories

import (
	"errors"
	"fmt"

	"storerating/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMRatingRepository is a GORM implementation of RatingRepository.
type GORMRatingRepository struct {
	db *gorm.DB
}

// NewGORMRatingRepository creates a new instance of GORMRatingRepository.
func NewGORMRatingRepository(db *gorm.DB) *GORMRatingRepository {
	return &GORMRatingRepository{
		db: db,
	}
}

// Upsert creates or updates the user's rating for a store in one transaction.
func (r *GORMRatingRepository) Upsert(rating *models.Rating) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Rating
		err := tx.Where("user_id = ? AND store_id = ?", rating.UserID, rating.StoreID).First(&existing).Error
		switch {
		case err == nil:
			existing.Value = rating.Value
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			*rating = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			if rating.ID == "" {
				rating.ID = uuid.New().String()
			}
			return tx.Create(rating).Error
		default:
			return err
		}
	})
	if err != nil {
		return fmt.Errorf("failed to save rating of user %s for store %s: %w", rating.UserID, rating.StoreID, err)
	}
	return nil
}

// GetByStoreID retrieves the ratings of a store, oldest first.
func (r *GORMRatingRepository) GetByStoreID(storeID string) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := r.db.Where("store_id = ?", storeID).Order("created_at, id").Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("failed to get ratings of store %s: %w", storeID, err)
	}
	return ratings, nil
}

// GetByUserID retrieves the ratings a user submitted, oldest first.
func (r *GORMRatingRepository) GetByUserID(userID string) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := r.db.Where("user_id = ?", userID).Order("created_at, id").Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("failed to get ratings of user %s: %w", userID, err)
	}
	return ratings, nil
}

// GetAll retrieves every rating, oldest first.
func (r *GORMRatingRepository) GetAll() ([]models.Rating, error) {
	var ratings []models.Rating
	if err := r.db.Order("created_at, id").Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("failed to get all ratings: %w", err)
	}
	return ratings, nil
}

// Count returns the number of ratings.
func (r *GORMRatingRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&models.Rating{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count ratings: %w", err)
	}
	return n, nil
}
