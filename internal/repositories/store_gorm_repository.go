package repositories

import (
	"errors"
	"fmt"

	"storerating/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMStoreRepository is a GORM implementation of StoreRepository.
type GORMStoreRepository struct {
	db *gorm.DB
}

// NewGORMStoreRepository creates a new instance of GORMStoreRepository.
func NewGORMStoreRepository(db *gorm.DB) *GORMStoreRepository {
	return &GORMStoreRepository{
		db: db,
	}
}

// Create creates a new store in the database.
func (r *GORMStoreRepository) Create(store *models.Store) error {
	if store.ID == "" {
		store.ID = uuid.New().String()
	}
	if err := r.db.Create(store).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("store with email %s: %w", store.Email, models.ErrConflict)
		}
		return fmt.Errorf("failed to create store: %w", err)
	}
	return nil
}

// GetByID retrieves a single store by its ID.
func (r *GORMStoreRepository) GetByID(id string) (*models.Store, error) {
	return r.first("id", id)
}

// GetByEmail retrieves a single store by its contact email.
func (r *GORMStoreRepository) GetByEmail(email string) (*models.Store, error) {
	return r.first("email", email)
}

func (r *GORMStoreRepository) first(column, value string) (*models.Store, error) {
	var store models.Store
	if err := r.db.First(&store, column+" = ?", value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("store with %s %s: %w", column, value, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get store by %s %s: %w", column, value, err)
	}
	return &store, nil
}

// GetByOwnerEmail retrieves the stores referencing ownerEmail.
func (r *GORMStoreRepository) GetByOwnerEmail(ownerEmail string) ([]models.Store, error) {
	var stores []models.Store
	if err := r.db.Where("owner_email = ?", ownerEmail).Order("created_at, id").Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to get stores of owner %s: %w", ownerEmail, err)
	}
	return stores, nil
}

// GetAll retrieves all stores, oldest first.
func (r *GORMStoreRepository) GetAll() ([]models.Store, error) {
	var stores []models.Store
	if err := r.db.Order("created_at, id").Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to get all stores: %w", err)
	}
	return stores, nil
}

// Count returns the number of stores.
func (r *GORMStoreRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&models.Store{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count stores: %w", err)
	}
	return n, nil
}
