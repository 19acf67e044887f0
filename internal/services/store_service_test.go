package services_test

import (
	"context"
	"testing"

	"storerating/internal/models"
	"storerating/internal/repositories"
	"storerating/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStoreService_CreateStore_DuplicateEmail(t *testing.T) {
	f := newFixture()
	f.addStore(t, "Grocery Supermarket Plus", "grocery@store.com", "michael@store.com")

	err := f.storeService.CreateStore(&models.Store{Name: "Another Grocery Supermarket", Email: "grocery@store.com"})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestStoreService_SummaryIsCached(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	store := f.addStore(t, "Grocery Supermarket Plus", "grocery@store.com", "michael@store.com")
	require.NoError(t, f.ratings.Upsert(&models.Rating{UserID: "u1", StoreID: store.ID, Value: 4}))

	first, err := f.storeService.Summary(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.cache.hits)

	// A rating written behind the service's back is not visible until invalidation.
	require.NoError(t, f.ratings.Upsert(&models.Rating{UserID: "u2", StoreID: store.ID, Value: 2}))
	second, err := f.storeService.Summary(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits)
	assert.Equal(t, first, second)

	f.storeService.InvalidateSummary(ctx, store.ID)
	third, err := f.storeService.Summary(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Count)
	require.NotNil(t, third.Average)
	assert.Equal(t, 3.0, *third.Average)
}

func TestStoreService_ListStoresSearch(t *testing.T) {
	f := newFixture()
	f.addStore(t, "Grocery Supermarket Plus", "grocery@store.com", "michael@store.com")
	f.addStore(t, "Fashion Boutique Collection", "fashion@store.com", "jennifer@store.com")

	all, err := f.storeService.ListStores(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byEmail, err := f.storeService.ListStores(context.Background(), "FASHION@")
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	assert.Equal(t, "Fashion Boutique Collection", byEmail[0].Name)
	assert.Nil(t, byEmail[0].Rating.Average)
}

func TestAdminService_TotalsAndUsers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	john := f.addUser(t, "John Alexander Thompson", "john@example.com", models.RoleUser)
	sarah := f.addUser(t, "Sarah Elizabeth Williams", "sarah@example.com", models.RoleUser)
	f.addUser(t, "Michael Christopher Davis", "michael@store.com", models.RoleStoreOwner)
	f.addUser(t, "Jennifer Katherine Johnson", "jennifer@store.com", models.RoleStoreOwner)
	f.addUser(t, "Robert Benjamin Anderson", "robert@admin.com", models.RoleAdmin)

	a := f.addStore(t, "Grocery Supermarket Plus", "grocery@store.com", "michael@store.com")
	b := f.addStore(t, "Home Improvement Warehouse", "home@store.com", "michael@store.com")

	for _, step := range []struct {
		user  *models.User
		store *models.Store
		value int
	}{{john, a, 5}, {sarah, a, 4}, {john, b, 3}} {
		_, _, err := f.ratingService.SubmitRating(ctx, step.user.ID, step.store.ID, step.value)
		require.NoError(t, err)
	}

	totals, err := f.adminService.Totals()
	require.NoError(t, err)
	assert.Equal(t, int64(5), totals.Users)
	assert.Equal(t, int64(2), totals.Stores)
	assert.Equal(t, int64(3), totals.Ratings)

	owners, err := f.adminService.ListUsers("store_owner")
	require.NoError(t, err)
	require.Len(t, owners, 2)
	for _, o := range owners {
		switch o.Email {
		case "michael@store.com":
			require.NotNil(t, o.Rating)
			assert.Equal(t, 4.0, *o.Rating)
		case "jennifer@store.com":
			assert.Nil(t, o.Rating)
		}
	}

	users, err := f.adminService.ListUsers("")
	require.NoError(t, err)
	assert.Len(t, users, 5)
	for _, u := range users {
		if u.Role != models.RoleStoreOwner {
			assert.Nil(t, u.Rating)
		}
	}

	stores, err := f.adminService.ListStores(ctx, "warehouse")
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, b.ID, stores[0].ID)
}

// ratingsWithHook runs onRead after loading a store's ratings, to interleave a
// write with an in-flight summary computation.
type ratingsWithHook struct {
	*repositories.MockRatingRepository
	onRead func()
}

func (r *ratingsWithHook) GetByStoreID(storeID string) ([]models.Rating, error) {
	ratings, err := r.MockRatingRepository.GetByStoreID(storeID)
	if r.onRead != nil {
		hook := r.onRead
		r.onRead = nil
		hook()
	}
	return ratings, err
}

func TestStoreService_SummaryNotCachedAcrossInvalidation(t *testing.T) {
	ctx := context.Background()
	stores := repositories.NewMockStoreRepository()
	ratings := &ratingsWithHook{MockRatingRepository: repositories.NewMockRatingRepository()}
	cache := newFakeCache()
	svc := services.NewStoreService(stores, ratings, cache, nil)

	store := &models.Store{Name: "Grocery Supermarket Plus", Email: "grocery@store.com", OwnerEmail: "michael@store.com"}
	require.NoError(t, svc.CreateStore(store))
	require.NoError(t, ratings.Upsert(&models.Rating{UserID: "u1", StoreID: store.ID, Value: 4}))

	ratings.onRead = func() {
		require.NoError(t, ratings.Upsert(&models.Rating{UserID: "u2", StoreID: store.ID, Value: 2}))
		svc.InvalidateSummary(ctx, store.ID)
	}
	stale, err := svc.Summary(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stale.Count)

	_, cached, err := cache.Get(ctx, "summary:"+store.ID)
	require.NoError(t, err)
	assert.False(t, cached)

	fresh, err := svc.Summary(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Count)
	require.NotNil(t, fresh.Average)
	assert.Equal(t, 3.0, *fresh.Average)
}
