package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go-ticket-ledger/internal/cache"
	"go-ticket-ledger/internal/model"
	"go-ticket-ledger/internal/queue"
	"go-ticket-ledger/internal/repository"
	"go-ticket-ledger/pkg/apperrors"
	"go-ticket-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type LedgerService interface {
	// PurchaseTickets is the single externally exposed purchase operation:
	// all-or-nothing decrement of every requested tier, idempotent under
	// retry with the same key.
	PurchaseTickets(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseConfirmation, error)
	// GetPurchase returns the stored confirmation for an idempotency key.
	GetPurchase(ctx context.Context, key string) (*model.PurchaseConfirmation, error)
}

type LedgerServiceImpl struct {
	pool         *pgxpool.Pool
	events       repository.EventRepository
	tiers        repository.TierRepository
	reservations repository.ReservationRepository
	gate         cache.TierGate
	queue        queue.ConfirmationQueue
}

func NewLedgerService(
	pool *pgxpool.Pool,
	events repository.EventRepository,
	tiers repository.TierRepository,
	reservations repository.ReservationRepository,
	gate cache.TierGate,
	confirmationQueue queue.ConfirmationQueue,
) LedgerService {
	return &LedgerServiceImpl{
		pool:         pool,
		events:       events,
		tiers:        tiers,
		reservations: reservations,
		gate:         gate,
		queue:        confirmationQueue,
	}
}

func (s *LedgerServiceImpl) PurchaseTickets(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseConfirmation, error) {
	// 1. Shape validation. Nothing below touches any store until this passes.
	if err := validatePurchaseRequest(req); err != nil {
		return nil, err
	}

	// 2. Idempotent replay: a committed record under this key answers the
	// request without re-execution, so retry-after-timeout is safe.
	reservation, items, err := s.reservations.FindByKey(ctx, req.IdempotencyKey)
	if err == nil {
		return s.buildConfirmation(ctx, reservation, items)
	}
	if !errors.Is(err, apperrors.ErrReservationNotFound) {
		return nil, err
	}

	// 3. Resolve the event and its tier set.
	event, err := s.events.FindByEventID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}

	tiers, err := s.tiers.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	tiersByUUID := make(map[uuid.UUID]*model.Tier, len(tiers))
	for _, t := range tiers {
		tiersByUUID[t.TierID] = t
	}

	resolved := make([]*model.Tier, len(req.Items))
	gateItems := make([]cache.GateItem, len(req.Items))
	for i, item := range req.Items {
		tier, ok := tiersByUUID[item.TierID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrTierNotFound, item.TierID)
		}
		resolved[i] = tier
		gateItems[i] = cache.GateItem{TierID: tier.ID, TierUUID: tier.TierID, Quantity: item.Quantity}
	}

	// 4. Admission gate. Advisory only: a warm gate sheds doomed requests
	// before they cost a database transaction, a cold or broken gate is
	// bypassed. Postgres below remains the authority.
	acquired := false
	if s.gate != nil {
		switch err := s.gate.TryAcquire(ctx, gateItems); {
		case err == nil:
			acquired = true
		case errors.Is(err, apperrors.ErrInsufficientCapacity):
			return nil, err
		case errors.Is(err, cache.ErrGateCold):
			// sale not opened through the gate; go straight to the store
		default:
			logger.WithComponent("ledger").Warn("gate unavailable, bypassing", zap.Error(err))
		}
	}

	confirmation, replayed, err := s.reserve(ctx, event, req, resolved)
	if err != nil {
		// The sale did not commit: re-credit the gate so its counters keep
		// tracking the store. Background context so rollback survives a
		// caller that has already gone away.
		if acquired {
			s.releaseGate(gateItems)
		}
		return nil, err
	}

	// A replayed duplicate never debited the store; its gate debit has to be
	// returned too, or every same-key race would drain the gate for good.
	if replayed && acquired {
		s.releaseGate(gateItems)
	}

	return confirmation, nil
}

func (s *LedgerServiceImpl) releaseGate(gateItems []cache.GateItem) {
	if err := s.gate.Release(context.Background(), gateItems); err != nil {
		logger.WithComponent("ledger").Error("gate release failed", zap.Error(err))
	}
}

// reserve runs the all-or-nothing decrement set in one database transaction.
// Any line failure rolls back every decrement already applied, so no partial
// debit is ever observable to a concurrent caller. The second return value is
// true when the result came from replaying a concurrent duplicate's record
// instead of this transaction committing.
func (s *LedgerServiceImpl) reserve(ctx context.Context, event *model.Event, req model.PurchaseRequest, resolved []*model.Tier) (*model.PurchaseConfirmation, bool, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	committedAt := time.Now().UTC()
	lines := make([]model.ConfirmationLine, len(req.Items))
	items := make([]*model.ReservationItem, len(req.Items))
	totalPrice := 0.0

	// Decrement in ascending row-id order so two carts naming the same tiers
	// in different orders cannot deadlock each other. The confirmation keeps
	// the caller's line order.
	order := make([]int, len(req.Items))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return resolved[order[a]].ID < resolved[order[b]].ID })

	for _, i := range order {
		item := req.Items[i]
		tier := resolved[i]
		debit, err := s.tiers.TryDecrement(ctx, tx, tier.ID, item.Quantity)
		if err != nil {
			return nil, false, storeErr(err)
		}

		lines[i] = model.ConfirmationLine{
			TierID:    tier.TierID,
			Quantity:  item.Quantity,
			UnitPrice: debit.Price,
			Remaining: debit.Remaining,
		}
		items[i] = &model.ReservationItem{
			TierID:         tier.ID,
			TierUUID:       tier.TierID,
			Quantity:       item.Quantity,
			UnitPrice:      debit.Price,
			RemainingAfter: debit.Remaining,
		}
		totalPrice += debit.Price * float64(item.Quantity)
	}

	reservation := &model.Reservation{
		IdempotencyKey: req.IdempotencyKey,
		EventID:        event.ID,
		TotalPrice:     totalPrice,
		CommittedAt:    committedAt,
	}

	err = s.reservations.Create(ctx, tx, reservation, items)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// A concurrent submission with the same key won the race. Drop
			// our transaction and serve the winner's record.
			_ = tx.Rollback(ctx)
			confirmation, err := s.replay(ctx, req.IdempotencyKey)
			return confirmation, true, err
		}
		return nil, false, storeErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	// Commit is durable; from here failures are logged, never surfaced as a
	// purchase error.
	s.publishConfirmation(ctx, reservation, event)

	return &model.PurchaseConfirmation{
		EventID:     event.EventID,
		Items:       lines,
		TotalPrice:  totalPrice,
		CommittedAt: committedAt,
	}, false, nil
}

// storeErr surfaces transaction aborts Postgres tells us to retry (deadlock,
// serialization failure) as store unavailability, so the client retries with
// the same idempotency key instead of seeing an internal error.
func storeErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return err
}

func (s *LedgerServiceImpl) GetPurchase(ctx context.Context, key string) (*model.PurchaseConfirmation, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: idempotency key is required", apperrors.ErrInvalidRequest)
	}
	return s.replay(ctx, key)
}

func (s *LedgerServiceImpl) replay(ctx context.Context, key string) (*model.PurchaseConfirmation, error) {
	reservation, items, err := s.reservations.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.buildConfirmation(ctx, reservation, items)
}

// buildConfirmation rebuilds the original response from the stored record;
// item rows carry price and remaining as committed, so the replayed
// confirmation is identical to the first one.
func (s *LedgerServiceImpl) buildConfirmation(ctx context.Context, reservation *model.Reservation, items []*model.ReservationItem) (*model.PurchaseConfirmation, error) {
	event, err := s.events.FindByID(ctx, reservation.EventID)
	if err != nil {
		return nil, err
	}

	lines := make([]model.ConfirmationLine, len(items))
	for i, item := range items {
		lines[i] = model.ConfirmationLine{
			TierID:    item.TierUUID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Remaining: item.RemainingAfter,
		}
	}

	return &model.PurchaseConfirmation{
		EventID:     event.EventID,
		Items:       lines,
		TotalPrice:  reservation.TotalPrice,
		CommittedAt: reservation.CommittedAt,
	}, nil
}

func (s *LedgerServiceImpl) publishConfirmation(ctx context.Context, reservation *model.Reservation, event *model.Event) {
	if s.queue == nil {
		return
	}
	msg := &model.ConfirmationMessage{
		ReservationID:  reservation.ID,
		IdempotencyKey: reservation.IdempotencyKey,
		EventID:        event.EventID,
		TotalPrice:     reservation.TotalPrice,
		CommittedAt:    reservation.CommittedAt,
	}
	if err := s.queue.PublishConfirmation(ctx, msg); err != nil {
		logger.WithComponent("ledger").Error("publish confirmation failed",
			zap.String("idempotency_key", reservation.IdempotencyKey), zap.Error(err))
	}
}

func validatePurchaseRequest(req model.PurchaseRequest) error {
	if req.IdempotencyKey == "" {
		return fmt.Errorf("%w: idempotency key is required", apperrors.ErrInvalidRequest)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: at least one line item is required", apperrors.ErrInvalidRequest)
	}

	seen := make(map[uuid.UUID]bool, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive for tier %s", apperrors.ErrInvalidRequest, item.TierID)
		}
		// Duplicate tiers are rejected outright, never merged.
		if seen[item.TierID] {
			return fmt.Errorf("%w: duplicate tier %s in request", apperrors.ErrInvalidRequest, item.TierID)
		}
		seen[item.TierID] = true
	}

	return nil
}
