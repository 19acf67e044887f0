package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"storerating/internal/models"

	"github.com/google/uuid"
)

// MockStoreRepository is an in-memory implementation of StoreRepository.
type MockStoreRepository struct {
	stores map[string]models.Store
	mu     sync.RWMutex
}

// NewMockStoreRepository creates a new instance of MockStoreRepository.
func NewMockStoreRepository() *MockStoreRepository {
	return &MockStoreRepository{
		stores: make(map[string]models.Store),
	}
}

// Create adds a new store. Store emails are unique.
func (r *MockStoreRepository) Create(store *models.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.stores {
		if s.Email == store.Email {
			return fmt.Errorf("store with email %s: %w", store.Email, models.ErrConflict)
		}
	}
	if store.ID == "" {
		store.ID = uuid.New().String()
	}
	now := time.Now()
	store.CreatedAt = now
	store.UpdatedAt = now
	r.stores[store.ID] = *store
	return nil
}

// GetByID returns a store by ID.
func (r *MockStoreRepository) GetByID(id string) (*models.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.stores[id]
	if !ok {
		return nil, fmt.Errorf("store with ID %s: %w", id, models.ErrNotFound)
	}
	return &store, nil
}

// GetByEmail returns a store by its contact email.
func (r *MockStoreRepository) GetByEmail(email string) (*models.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.stores {
		if s.Email == email {
			store := s
			return &store, nil
		}
	}
	return nil, fmt.Errorf("store with email %s: %w", email, models.ErrNotFound)
}

// GetByOwnerEmail returns every store referencing ownerEmail.
func (r *MockStoreRepository) GetByOwnerEmail(ownerEmail string) ([]models.Store, error) {
	all, _ := r.GetAll()
	owned := make([]models.Store, 0)
	for _, s := range all {
		if s.OwnerEmail == ownerEmail {
			owned = append(owned, s)
		}
	}
	return owned, nil
}

// GetAll returns all stores, oldest first.
func (r *MockStoreRepository) GetAll() ([]models.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stores := make([]models.Store, 0, len(r.stores))
	for _, s := range r.stores {
		stores = append(stores, s)
	}
	sort.SliceStable(stores, func(i, j int) bool {
		if stores[i].CreatedAt.Equal(stores[j].CreatedAt) {
			return stores[i].ID < stores[j].ID
		}
		return stores[i].CreatedAt.Before(stores[j].CreatedAt)
	})
	return stores, nil
}

// Count returns the number of stores.
func (r *MockStoreRepository) Count() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.stores)), nil
}
