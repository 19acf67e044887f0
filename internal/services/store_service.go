package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"storerating/internal/aggregate"
	"storerating/internal/models"
	"storerating/internal/repositories"
	"storerating/pkg/logger"
)

// StoreView is a store together with its rating summary.
type StoreView struct {
	models.Store
	Rating aggregate.Summary `json:"rating"`
}

// StoreService handles stores and their rating summaries.
type StoreService struct {
	storeRepo  repositories.StoreRepository
	ratingRepo repositories.RatingRepository
	cache      Cache
	log        *logger.Logger

	// generations counts invalidations per store. A summary computed before an
	// invalidation is not written back to the cache.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewStoreService creates a new StoreService. cache may be nil.
func NewStoreService(storeRepo repositories.StoreRepository, ratingRepo repositories.RatingRepository, cache Cache, log *logger.Logger) *StoreService {
	if log == nil {
		log = logger.Nop()
	}
	return &StoreService{
		storeRepo:   storeRepo,
		ratingRepo:  ratingRepo,
		cache:       cache,
		log:         log.Named("stores"),
		generations: make(map[string]uint64),
	}
}

// CreateStore stores a new store. The owner reference is taken as given.
func (s *StoreService) CreateStore(store *models.Store) error {
	if existing, err := s.storeRepo.GetByEmail(store.Email); err == nil && existing != nil {
		return fmt.Errorf("store email '%s' already registered: %w", store.Email, models.ErrConflict)
	}
	if err := s.storeRepo.Create(store); err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	s.log.Info().Str("store_id", store.ID).Str("owner_email", store.OwnerEmail).Msg("store created")
	return nil
}

// GetStoreByID retrieves a single store.
func (s *StoreService) GetStoreByID(id string) (*models.Store, error) {
	return s.storeRepo.GetByID(id)
}

// ListStores returns the stores whose name, email or address contain search,
// each with its rating summary.
func (s *StoreService) ListStores(ctx context.Context, search string) ([]StoreView, error) {
	stores, err := s.storeRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}

	views := make([]StoreView, 0, len(stores))
	for _, st := range stores {
		if !matchesSearch(search, st.Name, st.Email, st.Address) {
			continue
		}
		summary, err := s.Summary(ctx, st.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, StoreView{Store: st, Rating: summary})
	}
	return views, nil
}

func summaryKey(storeID string) string { return "summary:" + storeID }

// Summary returns the rating summary of a store, from the cache when possible.
func (s *StoreService) Summary(ctx context.Context, storeID string) (aggregate.Summary, error) {
	if s.cache != nil {
		if b, ok, err := s.cache.Get(ctx, summaryKey(storeID)); err != nil {
			s.log.Warn().Err(err).Str("store_id", storeID).Msg("summary cache read failed")
		} else if ok {
			var cached aggregate.Summary
			if err := json.Unmarshal(b, &cached); err == nil {
				return cached, nil
			}
		}
	}

	gen := s.generation(storeID)
	ratings, err := s.ratingRepo.GetByStoreID(storeID)
	if err != nil {
		return aggregate.Summary{}, fmt.Errorf("failed to load ratings of store %s: %w", storeID, err)
	}
	summary := aggregate.Summarize(aggregate.Values(ratings))

	if s.cache != nil {
		s.storeSummary(ctx, storeID, gen, summary)
	}
	return summary, nil
}

// storeSummary caches summary unless the store was invalidated after gen was
// read. The lock is held across the write so an invalidation either happens
// before the check or deletes the written value.
func (s *StoreService) storeSummary(ctx context.Context, storeID string, gen uint64, summary aggregate.Summary) {
	b, err := json.Marshal(summary)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[storeID] != gen {
		return
	}
	if err := s.cache.Set(ctx, summaryKey(storeID), b); err != nil {
		s.log.Warn().Err(err).Str("store_id", storeID).Msg("summary cache write failed")
	}
}

// InvalidateSummary drops the cached summary of a store.
func (s *StoreService) InvalidateSummary(ctx context.Context, storeID string) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	s.generations[storeID]++
	s.mu.Unlock()

	if err := s.cache.Delete(ctx, summaryKey(storeID)); err != nil {
		s.log.Warn().Err(err).Str("store_id", storeID).Msg("summary cache invalidation failed")
	}
}

func (s *StoreService) generation(storeID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[storeID]
}

// loadStore keeps ErrNotFound unwrapped-comparable and wraps any other failure.
func (s *StoreService) loadStore(id string) (*models.Store, error) {
	store, err := s.storeRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load store %s: %w", id, err)
	}
	return store, nil
}
