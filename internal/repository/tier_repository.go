package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-ticket-ledger/internal/model"
	"go-ticket-ledger/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TierRepository interface {
	Create(ctx context.Context, tx pgx.Tx, tier *model.Tier) (*model.Tier, error)
	ListByEventID(ctx context.Context, eventID int) ([]*model.Tier, error)
	FindByID(ctx context.Context, id int) (*model.Tier, error)
	FindByTierID(ctx context.Context, tierID uuid.UUID) (*model.Tier, error)
	Update(ctx context.Context, id int, params model.UpdateTierParams) (*model.Tier, error)
	AdjustCapacity(ctx context.Context, id int, delta int) (*model.Tier, error)
	Delete(ctx context.Context, id int) error

	// Transaction methods
	TryDecrement(ctx context.Context, tx pgx.Tx, id int, quantity int) (*model.TierDebit, error)
	Increment(ctx context.Context, tx pgx.Tx, id int, quantity int) error
}

type TierRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTierRepository(pool *pgxpool.Pool) TierRepository {
	return &TierRepositoryImpl{
		pool: pool,
	}
}

func (r *TierRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, tier *model.Tier) (*model.Tier, error) {
	// remaining always starts equal to total_capacity
	query := `
		INSERT INTO tiers (tier_id, event_id, name, price, benefits, total_capacity, remaining)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, tier_id, event_id, name, price, benefits,
			total_capacity, remaining, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		tier.TierID, tier.EventID, tier.Name, tier.Price, tier.Benefits, tier.TotalCapacity,
	).Scan(
		&tier.ID,
		&tier.TierID,
		&tier.EventID,
		&tier.Name,
		&tier.Price,
		&tier.Benefits,
		&tier.TotalCapacity,
		&tier.Remaining,
		&tier.CreatedAt,
		&tier.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return tier, nil
}

func (r *TierRepositoryImpl) ListByEventID(ctx context.Context, eventID int) ([]*model.Tier, error) {
	query := `
		SELECT id, tier_id, event_id, name, price, benefits,
			total_capacity, remaining, created_at, updated_at, deleted_at
		FROM tiers
		WHERE event_id = $1 AND deleted_at IS NULL
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tiers := make([]*model.Tier, 0)
	for rows.Next() {
		var tier model.Tier
		err := rows.Scan(
			&tier.ID,
			&tier.TierID,
			&tier.EventID,
			&tier.Name,
			&tier.Price,
			&tier.Benefits,
			&tier.TotalCapacity,
			&tier.Remaining,
			&tier.CreatedAt,
			&tier.UpdatedAt,
			&tier.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, &tier)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tiers, nil
}

func (r *TierRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Tier, error) {
	return r.findOne(ctx, "id", id)
}

func (r *TierRepositoryImpl) FindByTierID(ctx context.Context, tierID uuid.UUID) (*model.Tier, error) {
	return r.findOne(ctx, "tier_id", tierID)
}

func (r *TierRepositoryImpl) findOne(ctx context.Context, column string, value interface{}) (*model.Tier, error) {
	query := fmt.Sprintf(`
		SELECT id, tier_id, event_id, name, price, benefits,
			total_capacity, remaining, created_at, updated_at, deleted_at
		FROM tiers
		WHERE %s = $1 AND deleted_at IS NULL
	`, column)

	var tier model.Tier
	err := r.pool.QueryRow(ctx, query, value).Scan(
		&tier.ID,
		&tier.TierID,
		&tier.EventID,
		&tier.Name,
		&tier.Price,
		&tier.Benefits,
		&tier.TotalCapacity,
		&tier.Remaining,
		&tier.CreatedAt,
		&tier.UpdatedAt,
		&tier.DeletedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTierNotFound
		}
		return nil, err
	}

	return &tier, nil
}

// TryDecrement is the single atomic conditional update at the heart of the
// ledger: the guard (remaining >= quantity) and the write are one statement,
// so no interleaving of concurrent purchases can drive remaining below zero.
// The post-decrement remaining and the unit price are read back in the same
// statement for the confirmation.
func (r *TierRepositoryImpl) TryDecrement(ctx context.Context, tx pgx.Tx, id int, quantity int) (*model.TierDebit, error) {
	query := `
		UPDATE tiers
		SET remaining = remaining - $1, updated_at = $2
		WHERE id = $3 AND remaining >= $1 AND deleted_at IS NULL
		RETURNING remaining, price
	`

	var debit model.TierDebit
	err := tx.QueryRow(ctx, query, quantity, time.Now().UTC(), id).Scan(&debit.Remaining, &debit.Price)
	if err == nil {
		return &debit, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	// Guard refused. Read the row in the same transaction to tell a missing
	// tier apart from an exhausted one.
	var tierUUID uuid.UUID
	var remaining int
	err = tx.QueryRow(ctx,
		`SELECT tier_id, remaining FROM tiers WHERE id = $1 AND deleted_at IS NULL`,
		id,
	).Scan(&tierUUID, &remaining)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTierNotFound
		}
		return nil, err
	}

	return nil, &apperrors.CapacityError{
		TierID:    tierUUID,
		Requested: quantity,
		Remaining: remaining,
	}
}

// Increment is the compensation path (cancellations). It never pushes
// remaining above total_capacity.
func (r *TierRepositoryImpl) Increment(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	query := `
		UPDATE tiers
		SET remaining = remaining + $1, updated_at = $2
		WHERE id = $3 AND remaining + $1 <= total_capacity
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTierNotFound
	}

	return nil
}

func (r *TierRepositoryImpl) Update(ctx context.Context, id int, params model.UpdateTierParams) (*model.Tier, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if params.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argPos))
		args = append(args, *params.Name)
		argPos++
	}

	if params.Price != nil {
		sets = append(sets, fmt.Sprintf("price = $%d", argPos))
		args = append(args, *params.Price)
		argPos++
	}

	if params.Benefits != nil {
		sets = append(sets, fmt.Sprintf("benefits = $%d", argPos))
		args = append(args, *params.Benefits)
		argPos++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidRequest
	}

	// add updated_at
	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE tiers
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING id, tier_id, event_id, name, price, benefits,
			total_capacity, remaining, created_at, updated_at, deleted_at
	`, strings.Join(sets, ", "), argPos)

	var tier model.Tier
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&tier.ID,
		&tier.TierID,
		&tier.EventID,
		&tier.Name,
		&tier.Price,
		&tier.Benefits,
		&tier.TotalCapacity,
		&tier.Remaining,
		&tier.CreatedAt,
		&tier.UpdatedAt,
		&tier.DeletedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTierNotFound
		}
		return nil, err
	}

	return &tier, nil
}

// AdjustCapacity moves total_capacity and remaining together by delta in one
// guarded statement, so sold count (total - remaining) is preserved and
// remaining is never overwritten blindly. A negative delta larger than the
// unsold count is refused.
func (r *TierRepositoryImpl) AdjustCapacity(ctx context.Context, id int, delta int) (*model.Tier, error) {
	if delta == 0 {
		return nil, apperrors.ErrInvalidRequest
	}

	query := `
		UPDATE tiers
		SET total_capacity = total_capacity + $1,
			remaining = remaining + $1,
			updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
			AND remaining + $1 >= 0
			AND total_capacity + $1 >= 0
		RETURNING id, tier_id, event_id, name, price, benefits,
			total_capacity, remaining, created_at, updated_at, deleted_at
	`

	var tier model.Tier
	err := r.pool.QueryRow(ctx, query, delta, time.Now().UTC(), id).Scan(
		&tier.ID,
		&tier.TierID,
		&tier.EventID,
		&tier.Name,
		&tier.Price,
		&tier.Benefits,
		&tier.TotalCapacity,
		&tier.Remaining,
		&tier.CreatedAt,
		&tier.UpdatedAt,
		&tier.DeletedAt,
	)

	if err == nil {
		return &tier, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	// Distinguish a missing tier from a refused reduction.
	var tierUUID uuid.UUID
	var remaining int
	err = r.pool.QueryRow(ctx,
		`SELECT tier_id, remaining FROM tiers WHERE id = $1 AND deleted_at IS NULL`,
		id,
	).Scan(&tierUUID, &remaining)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTierNotFound
		}
		return nil, err
	}

	return nil, &apperrors.CapacityError{
		TierID:    tierUUID,
		Requested: -delta,
		Remaining: remaining,
	}
}

// Delete soft-deletes a tier, refused while any committed reservation still
// references it.
func (r *TierRepositoryImpl) Delete(ctx context.Context, id int) error {
	query := `
		UPDATE tiers
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
			AND NOT EXISTS (
				SELECT 1 FROM reservation_items WHERE tier_id = $2
			)
	`

	result, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		// Either the tier is gone or a reservation still references it.
		var exists bool
		err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM tiers WHERE id = $1 AND deleted_at IS NULL)`,
			id,
		).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrTierNotFound
		}
		return fmt.Errorf("%w: tier is referenced by committed reservations", apperrors.ErrInvalidRequest)
	}

	return nil
}
