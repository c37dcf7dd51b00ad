package repository

import (
	"context"
	"testing"
	"time"

	"go-ticket-ledger/internal/model"
	"go-ticket-ledger/internal/repository"
	"go-ticket-ledger/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewEventRepository(testDB)

	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	tx := beginTx(t)
	description := "season opener"
	created, err := repo.Create(ctx, tx, &model.Event{
		EventID:     uuid.New(),
		Title:       "Opening Night",
		Description: &description,
		StartsAt:    time.Now().UTC().Add(72 * time.Hour),
		Venue:       "Main Hall",
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.NotZero(t, created.ID)
	assert.NotZero(t, created.CreatedAt)

	found, err := repo.FindByEventID(ctx, created.EventID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Opening Night", found.Title)
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewEventRepository(testDB)

	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	// Insert out of chronological order; List must sort by starts_at.
	_, err := testDB.Exec(ctx, `
		INSERT INTO events (event_id, title, description, starts_at, venue) VALUES
			($1, 'Later', NULL, NOW() + INTERVAL '2 days', 'Hall'),
			($2, 'Sooner', NULL, NOW() + INTERVAL '1 day', 'Hall')
	`, uuid.New(), uuid.New())
	require.NoError(t, err)

	events, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Sooner", events[0].Title)
	assert.Equal(t, "Later", events[1].Title)
}

func TestEventRepository_Find(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewEventRepository(testDB)

	t.Run("Failed - FindByID not found", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		_, err := repo.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})

	t.Run("Failed - FindByEventID not found", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		_, err := repo.FindByEventID(ctx, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewEventRepository(testDB)

	t.Run("Success - partial update", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		id, _ := createTestEvent(t, "Before")

		newTitle := "After"
		newVenue := "Annex"
		updated, err := repo.Update(ctx, id, model.UpdateEventParams{Title: &newTitle, Venue: &newVenue})
		require.NoError(t, err)
		assert.Equal(t, "After", updated.Title)
		assert.Equal(t, "Annex", updated.Venue)
		// Untouched field survives.
		require.NotNil(t, updated.Description)
		assert.Equal(t, "test event", *updated.Description)
	})

	t.Run("Failed - no fields", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		id, _ := createTestEvent(t, "Before")
		_, err := repo.Update(ctx, id, model.UpdateEventParams{})
		assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	})

	t.Run("Failed - not found", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		newTitle := "Ghost"
		_, err := repo.Update(ctx, 9999, model.UpdateEventParams{Title: &newTitle})
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})
}
