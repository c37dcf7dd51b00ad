package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-ticket-ledger/internal/model"
	"go-ticket-ledger/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateKey signals that another request already committed under the
// same idempotency key. The caller rolls back and serves the stored record.
var ErrDuplicateKey = errors.New("duplicate idempotency key")

type ReservationRepository interface {
	FindByKey(ctx context.Context, key string) (*model.Reservation, []*model.ReservationItem, error)
	MarkNotified(ctx context.Context, id int) error

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation, items []*model.ReservationItem) error
}

type ReservationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &ReservationRepositoryImpl{
		pool: pool,
	}
}

// Create inserts the reservation and its line items in the caller's
// transaction. The unique index on idempotency_key is the arbiter for
// concurrent duplicate submissions: the loser gets ErrDuplicateKey.
func (r *ReservationRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation, items []*model.ReservationItem) error {
	query := `
		INSERT INTO reservations (idempotency_key, event_id, total_price, committed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		reservation.IdempotencyKey, reservation.EventID, reservation.TotalPrice, reservation.CommittedAt,
	).Scan(&reservation.ID, &reservation.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	itemQuery := `
		INSERT INTO reservation_items (reservation_id, tier_id, tier_uuid, quantity, unit_price, remaining_after)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	for _, item := range items {
		item.ReservationID = reservation.ID
		err := tx.QueryRow(ctx, itemQuery,
			item.ReservationID, item.TierID, item.TierUUID,
			item.Quantity, item.UnitPrice, item.RemainingAfter,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to create reservation item: %w", err)
		}
	}

	return nil
}

func (r *ReservationRepositoryImpl) FindByKey(ctx context.Context, key string) (*model.Reservation, []*model.ReservationItem, error) {
	query := `
		SELECT id, idempotency_key, event_id, total_price, committed_at, notified_at, created_at
		FROM reservations
		WHERE idempotency_key = $1
	`

	var reservation model.Reservation
	err := r.pool.QueryRow(ctx, query, key).Scan(
		&reservation.ID,
		&reservation.IdempotencyKey,
		&reservation.EventID,
		&reservation.TotalPrice,
		&reservation.CommittedAt,
		&reservation.NotifiedAt,
		&reservation.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, apperrors.ErrReservationNotFound
		}
		return nil, nil, err
	}

	itemQuery := `
		SELECT id, reservation_id, tier_id, tier_uuid, quantity, unit_price, remaining_after
		FROM reservation_items
		WHERE reservation_id = $1
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, itemQuery, reservation.ID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	items := make([]*model.ReservationItem, 0)
	for rows.Next() {
		var item model.ReservationItem
		err := rows.Scan(
			&item.ID,
			&item.ReservationID,
			&item.TierID,
			&item.TierUUID,
			&item.Quantity,
			&item.UnitPrice,
			&item.RemainingAfter,
		)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return &reservation, items, nil
}

func (r *ReservationRepositoryImpl) MarkNotified(ctx context.Context, id int) error {
	query := `
		UPDATE reservations
		SET notified_at = $1
		WHERE id = $2 AND notified_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	// Already-notified rows are left alone so redelivered stream messages
	// stay harmless.
	if result.RowsAffected() == 0 {
		var exists bool
		err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM reservations WHERE id = $1)`, id,
		).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrReservationNotFound
		}
	}

	return nil
}
