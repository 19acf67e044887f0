package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storerating/internal/aggregate"
	"storerating/internal/models"
	"storerating/internal/observability"
	"storerating/internal/repositories"
	"storerating/internal/validation"
	"storerating/pkg/logger"
)

// RoutingKeyRatingSubmitted is the routing key of RatingEvent messages.
const RoutingKeyRatingSubmitted = "rating.submitted"

// RatingEvent is published every time a rating is stored.
type RatingEvent struct {
	RatingID    string    `json:"rating_id"`
	StoreID     string    `json:"store_id"`
	UserID      string    `json:"user_id"`
	Rating      int       `json:"rating"`
	Updated     bool      `json:"updated"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// UserStoreView is a store as shown to a rating user: the overall summary and
// the user's own rating, nil when they have not rated it.
type UserStoreView struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Address    string            `json:"address"`
	Rating     aggregate.Summary `json:"rating"`
	UserRating *int              `json:"user_rating"`
}

// RatingEntry is one line of a store owner's ratings table.
type RatingEntry struct {
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	Rating    int    `json:"rating"`
	Date      string `json:"date"`
}

// OwnerStoreDashboard is the dashboard of one owned store.
type OwnerStoreDashboard struct {
	Store   models.Store      `json:"store"`
	Summary aggregate.Summary `json:"summary"`
	Ratings []RatingEntry     `json:"ratings"`
}

// RatingService handles rating submission and the rating-centric views.
type RatingService struct {
	ratingRepo repositories.RatingRepository
	userRepo   repositories.UserRepository
	stores     *StoreService
	publisher  EventPublisher
	metrics    *observability.Metrics
	log        *logger.Logger
}

// NewRatingService creates a new RatingService. publisher and metrics may be nil.
func NewRatingService(ratingRepo repositories.RatingRepository, userRepo repositories.UserRepository, stores *StoreService,
	publisher EventPublisher, metrics *observability.Metrics, log *logger.Logger) *RatingService {
	if log == nil {
		log = logger.Nop()
	}
	return &RatingService{
		ratingRepo: ratingRepo,
		userRepo:   userRepo,
		stores:     stores,
		publisher:  publisher,
		metrics:    metrics,
		log:        log.Named("ratings"),
	}
}

// SubmitRating stores userID's rating of storeID, replacing an earlier one.
// It reports whether an existing rating was changed.
func (s *RatingService) SubmitRating(ctx context.Context, userID, storeID string, value int) (*models.Rating, bool, error) {
	if msg := validation.Rating(value); msg != "" {
		return nil, false, fmt.Errorf("%w: %s", models.ErrInvalidInput, msg)
	}
	if _, err := s.stores.loadStore(storeID); err != nil {
		return nil, false, err
	}
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: unknown user %s", models.ErrUnauthorized, userID)
		}
		return nil, false, fmt.Errorf("failed to load user %s: %w", userID, err)
	}

	previous, err := s.userRatings(userID)
	if err != nil {
		return nil, false, err
	}
	_, updated := previous[storeID]

	rating := &models.Rating{UserID: userID, StoreID: storeID, Value: value}
	if err := s.ratingRepo.Upsert(rating); err != nil {
		return nil, false, fmt.Errorf("failed to save rating: %w", err)
	}

	s.stores.InvalidateSummary(ctx, storeID)
	s.metrics.RatingSubmitted(updated)
	s.publish(RatingEvent{
		RatingID:    rating.ID,
		StoreID:     storeID,
		UserID:      userID,
		Rating:      value,
		Updated:     updated,
		SubmittedAt: rating.UpdatedAt,
	})
	s.log.Info().Str("store_id", storeID).Str("user_id", userID).Int("rating", value).Bool("updated", updated).Msg("rating stored")
	return rating, updated, nil
}

func (s *RatingService) publish(event RatingEvent) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal rating event")
		return
	}
	// The rating is already stored; a broker outage must not fail the request.
	if err := s.publisher.Publish(RoutingKeyRatingSubmitted, body); err != nil {
		s.log.Warn().Err(err).Str("rating_id", event.RatingID).Msg("failed to publish rating event")
	}
}

func (s *RatingService) userRatings(userID string) (map[string]int, error) {
	ratings, err := s.ratingRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings of user %s: %w", userID, err)
	}
	byStore := make(map[string]int, len(ratings))
	for _, r := range ratings {
		byStore[r.StoreID] = r.Value
	}
	return byStore, nil
}

// BrowseStores lists the stores whose name or address contain search, with the
// overall summary and userID's own rating.
func (s *RatingService) BrowseStores(ctx context.Context, userID, search string) ([]UserStoreView, error) {
	stores, err := s.stores.storeRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	mine, err := s.userRatings(userID)
	if err != nil {
		return nil, err
	}

	views := make([]UserStoreView, 0, len(stores))
	for _, st := range stores {
		if !matchesSearch(search, st.Name, st.Address) {
			continue
		}
		summary, err := s.stores.Summary(ctx, st.ID)
		if err != nil {
			return nil, err
		}
		view := UserStoreView{ID: st.ID, Name: st.Name, Address: st.Address, Rating: summary}
		if v, ok := mine[st.ID]; ok {
			v := v
			view.UserRating = &v
		}
		views = append(views, view)
	}
	return views, nil
}

// OwnerDashboard returns, for every store referencing ownerEmail, its summary
// and the individual ratings with the rater's name and email.
func (s *RatingService) OwnerDashboard(ctx context.Context, ownerEmail string) ([]OwnerStoreDashboard, error) {
	stores, err := s.stores.storeRepo.GetByOwnerEmail(ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores of %s: %w", ownerEmail, err)
	}

	users := make(map[string]*models.User)
	dashboards := make([]OwnerStoreDashboard, 0, len(stores))
	for _, st := range stores {
		ratings, err := s.ratingRepo.GetByStoreID(st.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load ratings of store %s: %w", st.ID, err)
		}

		entries := make([]RatingEntry, 0, len(ratings))
		for _, r := range ratings {
			entry := RatingEntry{Rating: r.Value, Date: r.UpdatedAt.Format("2006-01-02")}
			u, ok := users[r.UserID]
			if !ok {
				u, err = s.userRepo.GetByID(r.UserID)
				if err != nil && !errors.Is(err, models.ErrNotFound) {
					return nil, fmt.Errorf("failed to load rater %s: %w", r.UserID, err)
				}
				users[r.UserID] = u
			}
			if u != nil {
				entry.UserName = u.Name
				entry.UserEmail = u.Email
			}
			entries = append(entries, entry)
		}

		dashboards = append(dashboards, OwnerStoreDashboard{
			Store:   st,
			Summary: aggregate.Summarize(aggregate.Values(ratings)),
			Ratings: entries,
		})
	}
	return dashboards, nil
}
