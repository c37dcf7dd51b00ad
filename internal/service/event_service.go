package service

import (
	"context"
	"fmt"

	"go-ticket-ledger/internal/cache"
	"go-ticket-ledger/internal/model"
	"go-ticket-ledger/internal/repository"
	"go-ticket-ledger/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventService interface {
	List(ctx context.Context) ([]*model.Event, error)
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error)
	// Create inserts the event together with its tier set atomically.
	Create(ctx context.Context, event *model.Event, tiers []*model.Tier) (*model.Event, error)
	UpdateByEventID(ctx context.Context, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error)
	AddTier(ctx context.Context, eventID uuid.UUID, tier *model.Tier) (*model.Tier, error)
	ListTiers(ctx context.Context, eventID uuid.UUID) ([]*model.Tier, error)
	// OpenForSale warms the admission gate with every tier's current
	// remaining count.
	OpenForSale(ctx context.Context, eventID uuid.UUID) error
}

type EventServiceImpl struct {
	pool     *pgxpool.Pool
	repo     repository.EventRepository
	tierRepo repository.TierRepository
	gate     cache.TierGate
}

func NewEventService(pool *pgxpool.Pool, repo repository.EventRepository, tierRepo repository.TierRepository, gate cache.TierGate) EventService {
	return &EventServiceImpl{pool: pool, repo: repo, tierRepo: tierRepo, gate: gate}
}

func (s *EventServiceImpl) List(ctx context.Context) ([]*model.Event, error) {
	return s.repo.List(ctx)
}

func (s *EventServiceImpl) GetByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	event, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	tiers, err := s.tierRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	event.Tiers = tiers
	return event, nil
}

func (s *EventServiceImpl) Create(ctx context.Context, event *model.Event, tiers []*model.Tier) (*model.Event, error) {
	for _, t := range tiers {
		if t.TotalCapacity < 0 {
			return nil, fmt.Errorf("%w: total capacity cannot be negative", apperrors.ErrInvalidRequest)
		}
		if t.Price < 0 {
			return nil, fmt.Errorf("%w: price cannot be negative", apperrors.ErrInvalidRequest)
		}
	}

	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	created, err := s.repo.Create(ctx, tx, event)
	if err != nil {
		return nil, err
	}

	for _, t := range tiers {
		t.EventID = created.ID
		t.TierID = uuid.New()
		if _, err := s.tierRepo.Create(ctx, tx, t); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	created.Tiers = tiers
	return created, nil
}

func (s *EventServiceImpl) UpdateByEventID(ctx context.Context, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	event, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, event.ID, params)
}

func (s *EventServiceImpl) AddTier(ctx context.Context, eventID uuid.UUID, tier *model.Tier) (*model.Tier, error) {
	if tier.TotalCapacity < 0 {
		return nil, fmt.Errorf("%w: total capacity cannot be negative", apperrors.ErrInvalidRequest)
	}
	if tier.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", apperrors.ErrInvalidRequest)
	}

	event, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	tier.EventID = event.ID
	tier.TierID = uuid.New()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	created, err := s.tierRepo.Create(ctx, tx, tier)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	return created, nil
}

func (s *EventServiceImpl) ListTiers(ctx context.Context, eventID uuid.UUID) ([]*model.Tier, error) {
	event, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.tierRepo.ListByEventID(ctx, event.ID)
}

func (s *EventServiceImpl) OpenForSale(ctx context.Context, eventID uuid.UUID) error {
	event, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return err
	}
	tiers, err := s.tierRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return err
	}
	for _, t := range tiers {
		if err := s.gate.WarmUp(ctx, t.ID, t.Remaining); err != nil {
			return err
		}
	}
	return nil
}
