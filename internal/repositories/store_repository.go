package repositories

import "storerating/internal/models"

// StoreRepository defines the interface for store data access.
type StoreRepository interface {
	Create(store *models.Store) error
	GetByID(id string) (*models.Store, error)
	GetByEmail(email string) (*models.Store, error)
	GetByOwnerEmail(ownerEmail string) ([]models.Store, error)
	GetAll() ([]models.Store, error)
	Count() (int64, error)
}
