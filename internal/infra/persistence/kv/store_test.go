package kv

import (
	"context"
	"testing"
	"time"

	"waypoint/internal/domain/entity"
	"waypoint/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

func newMemStore(t *testing.T) *Store {
	t.Helper()
	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { bucket.Close() })

	return NewWithBucket(bucket)
}

func TestStore_LoadStateNotFound(t *testing.T) {
	store := newMemStore(t)

	_, err := store.LoadState(context.Background())
	assert.ErrorIs(t, err, repository.ErrStateNotFound)
}

func TestStore_StateRoundTrip(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	addressID := uuid.New()
	state := &entity.LocationState{
		Location: &entity.Location{
			Latitude:         3.8480,
			Longitude:        11.5021,
			City:             "Yaoundé",
			Region:           "Centre",
			FormattedAddress: "Yaoundé, Centre",
			IsFallback:       true,
			ResolvedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		HasPermission:       true,
		PermissionRequested: true,
		SavedAddresses: []*entity.SavedAddress{
			{ID: addressID, Label: "Home", IsDefault: true},
		},
		DefaultAddressID: &addressID,
	}

	require.NoError(t, store.SaveState(ctx, state))

	loaded, err := store.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, state.Location.City, loaded.Location.City)
	assert.True(t, loaded.Location.IsFallback)
	assert.True(t, loaded.HasPermission)
	require.Len(t, loaded.SavedAddresses, 1)
	assert.Equal(t, addressID, loaded.SavedAddresses[0].ID)
	require.NotNil(t, loaded.DefaultAddressID)
	assert.Equal(t, addressID, *loaded.DefaultAddressID)
}

func TestStore_ScheduledRoundTrip(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	_, err := store.LoadScheduled(ctx)
	assert.ErrorIs(t, err, repository.ErrStateNotFound)

	scheduled := []*entity.ScheduledNotification{
		{
			ID:    "n-1",
			Type:  entity.NotificationOrder,
			Title: "Order confirmed",
			Data:  entity.NotificationData{Type: entity.NotificationOrder, OrderID: "ORD-1"},
			Trigger: entity.Trigger{
				Kind:     entity.TriggerInterval,
				Interval: time.Hour,
			},
		},
	}
	require.NoError(t, store.SaveScheduled(ctx, scheduled))

	loaded, err := store.LoadScheduled(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "n-1", loaded[0].ID)
	assert.Equal(t, entity.TriggerInterval, loaded[0].Trigger.Kind)
	assert.Equal(t, time.Hour, loaded[0].Trigger.Interval)
}

func TestStore_SaveScheduledNilBecomesEmpty(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveScheduled(ctx, nil))

	loaded, err := store.LoadScheduled(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStore_HistoryRoundTrip(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	history := []*entity.DeliveredNotification{
		{ID: "n-1", Type: entity.NotificationPromotion, Title: "Deal of the day"},
		{ID: "n-2", Type: entity.NotificationOrder, Title: "Order delivered"},
	}
	require.NoError(t, store.SaveHistory(ctx, history))

	loaded, err := store.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "n-1", loaded[0].ID)
	assert.Equal(t, "n-2", loaded[1].ID)
}

func TestStore_KeysAreIndependent(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveState(ctx, &entity.LocationState{}))

	_, err := store.LoadScheduled(ctx)
	assert.ErrorIs(t, err, repository.ErrStateNotFound)
	_, err = store.LoadHistory(ctx)
	assert.ErrorIs(t, err, repository.ErrStateNotFound)
}
