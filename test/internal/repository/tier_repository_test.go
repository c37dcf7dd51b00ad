package repository

import (
	"context"
	"testing"

	"go-ticket-ledger/internal/model"
	"go-ticket-ledger/internal/repository"
	"go-ticket-ledger/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierRepository_TryDecrement(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTierRepository(testDB)

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		eventID, _ := createTestEvent(t, "Decrement Event")
		tierID, _ := createTestTier(t, eventID, "GA", 45.5, 10, 10)

		tx := beginTx(t)
		debit, err := repo.TryDecrement(ctx, tx, tierID, 3)
		require.NoError(t, err)
		assert.Equal(t, 7, debit.Remaining)
		assert.Equal(t, 45.5, debit.Price)
		require.NoError(t, tx.Commit(ctx))

		tier, err := repo.FindByID(ctx, tierID)
		require.NoError(t, err)
		assert.Equal(t, 7, tier.Remaining)
	})

	t.Run("Success - down to exactly zero", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		eventID, _ := createTestEvent(t, "Decrement Event")
		tierID, _ := createTestTier(t, eventID, "GA", 45.5, 10, 4)

		tx := beginTx(t)
		debit, err := repo.TryDecrement(ctx, tx, tierID, 4)
		require.NoError(t, err)
		assert.Equal(t, 0, debit.Remaining)
	})

	t.Run("Failed - insufficient remaining", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		eventID, _ := createTestEvent(t, "Decrement Event")
		tierID, tierUUID := createTestTier(t, eventID, "GA", 45.5, 10, 2)

		tx := beginTx(t)
		_, err := repo.TryDecrement(ctx, tx, tierID, 3)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientCapacity)

		var capErr *apperrors.CapacityError
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, tierUUID, capErr.TierID)
		assert.Equal(t, 3, capErr.Requested)
		assert.Equal(t, 2, capErr.Remaining)
	})

	t.Run("Failed - tier not found", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		tx := beginTx(t)
		_, err := repo.TryDecrement(ctx, tx, 9999, 1)
		assert.ErrorIs(t, err, apperrors.ErrTierNotFound)
	})

	t.Run("Failed - soft-deleted tier", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		eventID, _ := createTestEvent(t, "Decrement Event")
		tierID, _ := createTestTier(t, eventID, "GA", 45.5, 10, 10)

		_, err := testDB.Exec(ctx, "UPDATE tiers SET deleted_at = NOW() WHERE id = $1", tierID)
		require.NoError(t, err)

		tx := beginTx(t)
		_, err = repo.TryDecrement(ctx, tx, tierID, 1)
		assert.ErrorIs(t, err, apperrors.ErrTierNotFound)
	})
}

func TestTierRepository_Increment(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTierRepository(testDB)

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		eventID, _ := createTestEvent(t, "Increment Event")
		tierID, _ := createTestTier(t, eventID, "GA", 10, 10, 5)

		tx := beginTx(t)
		require.NoError(t, repo.Increment(ctx, tx, tierID, 2))
		require.NoError(t, tx.Commit(ctx))

		tier, err := repo.FindByID(ctx, tierID)
		require.NoError(t, err)
		assert.Equal(t, 7, tier.Remaining)
	})

	t.Run("Failed - would exceed total capacity", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		eventID, _ := createTestEvent(t, "Increment Event")
		tierID, _ := createTestTier(t, eventID, "GA", 10, 10, 9)

		tx := beginTx(t)
		err := repo.Increment(ctx, tx, tierID, 2)
		assert.Error(t, err)
	})
}

func TestTierRepository_AdjustCapacity(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTierRepository(testDB)

	t.Run("Success - grow", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		eventID, _ := createTestEvent(t, "Capacity Event")
		tierID, _ := createTestTier(t, eventID, "GA", 10, 100, 60)

		tier, err := repo.AdjustCapacity(ctx, tierID, 20)
		require.NoError(t, err)
		assert.Equal(t, 120, tier.TotalCapacity)
		assert.Equal(t, 80, tier.Remaining)
	})

	t.Run("Success - shrink within unsold", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		eventID, _ := createTestEvent(t, "Capacity Event")
		tierID, _ := createTestTier(t, eventID, "GA", 10, 100, 60)

		tier, err := repo.AdjustCapacity(ctx, tierID, -60)
		require.NoError(t, err)
		assert.Equal(t, 40, tier.TotalCapacity)
		assert.Equal(t, 0, tier.Remaining)
	})

	t.Run("Failed - shrink past sold count", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		eventID, _ := createTestEvent(t, "Capacity Event")
		tierID, _ := createTestTier(t, eventID, "GA", 10, 100, 60)

		_, err := repo.AdjustCapacity(ctx, tierID, -61)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientCapacity)

		// Untouched on refusal.
		tier, err := repo.FindByID(ctx, tierID)
		require.NoError(t, err)
		assert.Equal(t, 100, tier.TotalCapacity)
		assert.Equal(t, 60, tier.Remaining)
	})

	t.Run("Failed - zero delta", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		eventID, _ := createTestEvent(t, "Capacity Event")
		tierID, _ := createTestTier(t, eventID, "GA", 10, 100, 60)

		_, err := repo.AdjustCapacity(ctx, tierID, 0)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	})

	t.Run("Failed - not found", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		_, err := repo.AdjustCapacity(ctx, 9999, 5)
		assert.ErrorIs(t, err, apperrors.ErrTierNotFound)
	})
}

func TestTierRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTierRepository(testDB)

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		eventID, _ := createTestEvent(t, "Delete Event")
		tierID, _ := createTestTier(t, eventID, "GA", 10, 100, 100)

		require.NoError(t, repo.Delete(ctx, tierID))

		_, err := repo.FindByID(ctx, tierID)
		assert.ErrorIs(t, err, apperrors.ErrTierNotFound)
	})

	t.Run("Failed - referenced by reservation", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		eventID, _ := createTestEvent(t, "Delete Event")
		tierID, tierUUID := createTestTier(t, eventID, "GA", 10, 100, 98)

		var reservationID int
		err := testDB.QueryRow(ctx, `
			INSERT INTO reservations (idempotency_key, event_id, total_price, committed_at)
			VALUES ('del-guard', $1, 20, NOW()) RETURNING id
		`, eventID).Scan(&reservationID)
		require.NoError(t, err)

		_, err = testDB.Exec(ctx, `
			INSERT INTO reservation_items (reservation_id, tier_id, tier_uuid, quantity, unit_price, remaining_after)
			VALUES ($1, $2, $3, 2, 10, 98)
		`, reservationID, tierID, tierUUID)
		require.NoError(t, err)

		err = repo.Delete(ctx, tierID)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)

		// Still visible.
		_, err = repo.FindByID(ctx, tierID)
		assert.NoError(t, err)
	})

	t.Run("Failed - not found", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		err := repo.Delete(ctx, 9999)
		assert.ErrorIs(t, err, apperrors.ErrTierNotFound)
	})
}

func TestTierRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTierRepository(testDB)

	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	eventID, _ := createTestEvent(t, "Create Event")

	tx := beginTx(t)
	benefits := "front row"
	created, err := repo.Create(ctx, tx, &model.Tier{
		TierID:        uuid.New(),
		EventID:       eventID,
		Name:          "VIP",
		Price:         250,
		Benefits:      &benefits,
		TotalCapacity: 40,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	// remaining always starts at total_capacity
	assert.Equal(t, 40, created.Remaining)
	assert.NotZero(t, created.ID)

	tiers, err := repo.ListByEventID(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, tiers, 1)
	assert.Equal(t, "VIP", tiers[0].Name)
}

func TestTierRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTierRepository(testDB)

	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	eventID, _ := createTestEvent(t, "Update Event")
	tierID, _ := createTestTier(t, eventID, "GA", 10, 100, 100)

	newName := "General Admission"
	newPrice := 15.0
	updated, err := repo.Update(ctx, tierID, model.UpdateTierParams{Name: &newName, Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, "General Admission", updated.Name)
	assert.Equal(t, 15.0, updated.Price)
	// Capacity fields are not touchable through Update.
	assert.Equal(t, 100, updated.TotalCapacity)
	assert.Equal(t, 100, updated.Remaining)
}
