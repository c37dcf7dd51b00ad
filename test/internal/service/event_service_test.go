package service

import (
	"context"
	"testing"
	"time"

	"go-ticket-ledger/internal/model"
	"go-ticket-ledger/internal/repository"
	"go-ticket-ledger/internal/service"
	"go-ticket-ledger/pkg/apperrors"
	cacheMocks "go-ticket-ledger/test/internal/mocks/caches"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDBEventService(gate *cacheMocks.TierGateMock) service.EventService {
	db := getTestDB()
	return service.NewEventService(db, repository.NewEventRepository(db), repository.NewTierRepository(db), gate)
}

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - event with tiers in one transaction", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc := newDBEventService(nil)
		created, err := svc.Create(ctx, &model.Event{
			Title:    "Festival",
			StartsAt: time.Now().UTC().Add(72 * time.Hour),
			Venue:    "Park",
		}, []*model.Tier{
			{Name: "GA", Price: 25, TotalCapacity: 500},
			{Name: "VIP", Price: 120, TotalCapacity: 50},
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.EventID)
		require.Len(t, created.Tiers, 2)
		assert.Equal(t, 500, created.Tiers[0].Remaining)
		assert.Equal(t, 50, created.Tiers[1].Remaining)

		fetched, err := svc.GetByEventID(ctx, created.EventID)
		require.NoError(t, err)
		assert.Len(t, fetched.Tiers, 2)
	})

	t.Run("Failed - negative capacity rejected before any insert", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc := newDBEventService(nil)
		_, err := svc.Create(ctx, &model.Event{
			Title:    "Broken",
			StartsAt: time.Now().UTC(),
			Venue:    "Park",
		}, []*model.Tier{
			{Name: "GA", Price: 25, TotalCapacity: -1},
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)

		events, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestEventService_AddTier(t *testing.T) {
	ctx := context.Background()

	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	_, eventUUID := createTestEvent(t, "Expandable")

	svc := newDBEventService(nil)
	created, err := svc.AddTier(ctx, eventUUID, &model.Tier{Name: "Balcony", Price: 60, TotalCapacity: 30})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.TierID)
	assert.Equal(t, 30, created.Remaining)

	tiers, err := svc.ListTiers(ctx, eventUUID)
	require.NoError(t, err)
	assert.Len(t, tiers, 1)
}

// OpenForSale pushes every tier's current remaining count into the gate.
func TestEventService_OpenForSale(t *testing.T) {
	ctx := context.Background()

	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	eventID, eventUUID := createTestEvent(t, "On Sale")
	t1ID, _ := createTestTier(t, eventID, "GA", 25, 100, 73)
	t2ID, _ := createTestTier(t, eventID, "VIP", 120, 20, 20)

	gate := cacheMocks.NewTierGateMock()
	gate.On("WarmUp", ctx, t1ID, 73).Return(nil).Once()
	gate.On("WarmUp", ctx, t2ID, 20).Return(nil).Once()

	svc := newDBEventService(gate)
	require.NoError(t, svc.OpenForSale(ctx, eventUUID))
	gate.AssertExpectations(t)
}

func TestEventService_OpenForSale_UnknownEvent(t *testing.T) {
	ctx := context.Background()

	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	gate := cacheMocks.NewTierGateMock()
	svc := newDBEventService(gate)

	err := svc.OpenForSale(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	gate.AssertNotCalled(t, "WarmUp")
}
