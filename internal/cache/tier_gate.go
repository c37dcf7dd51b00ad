package cache

import (
	"context"
	"errors"
	"fmt"

	"go-ticket-ledger/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrGateCold means at least one requested tier has no warmed counter. The
// ledger treats a cold gate as "no opinion" and goes straight to Postgres.
var ErrGateCold = errors.New("gate not warmed for tier")

// GateItem is one tier line of an admission check.
type GateItem struct {
	TierID   int
	TierUUID uuid.UUID
	Quantity int
}

// TierGate is a Redis mirror of tier remaining counts, warmed when a sale
// opens. It sheds obviously doomed purchase requests before they reach the
// database; Postgres stays the sole authority for the capacity invariant.
type TierGate interface {
	WarmUp(ctx context.Context, tierID int, remaining int) error
	Remaining(ctx context.Context, tierID int) (int, error)
	// TryAcquire checks and decrements every item's counter in one Lua
	// script, so a multi-tier request is admitted or refused atomically.
	TryAcquire(ctx context.Context, items []GateItem) error
	// Release re-credits counters after a failed database transaction.
	Release(ctx context.Context, items []GateItem) error
}

type RedisTierGateImpl struct {
	client *redis.Client
}

func NewRedisTierGate(client *redis.Client) TierGate {
	return &RedisTierGateImpl{
		client: client,
	}
}

func (g *RedisTierGateImpl) remainingKey(tierID int) string {
	return fmt.Sprintf("tier:%d:remaining", tierID)
}

func (g *RedisTierGateImpl) WarmUp(ctx context.Context, tierID int, remaining int) error {
	return g.client.Set(ctx, g.remainingKey(tierID), remaining, 0).Err()
}

func (g *RedisTierGateImpl) Remaining(ctx context.Context, tierID int) (int, error) {
	val, err := g.client.Get(ctx, g.remainingKey(tierID)).Int()
	if err == redis.Nil {
		return -1, ErrGateCold
	}
	return val, err
}

// acquireScript checks all counters first, then decrements all of them, so
// concurrent multi-tier requests never observe a partial debit in the gate.
//
// Returns {1, 0, 0} on success, {-1, i, remaining} when item i lacks capacity,
// {-2, i, 0} when item i's counter is not warmed.
const acquireScript = `
	for i = 1, #KEYS do
		local remaining = redis.call('GET', KEYS[i])
		if not remaining then
			return {-2, i, 0}
		end
		if tonumber(remaining) < tonumber(ARGV[i]) then
			return {-1, i, tonumber(remaining)}
		end
	end
	for i = 1, #KEYS do
		redis.call('DECRBY', KEYS[i], ARGV[i])
	end
	return {1, 0, 0}
`

const releaseScript = `
	for i = 1, #KEYS do
		redis.call('INCRBY', KEYS[i], ARGV[i])
	end
	return 'OK'
`

func (g *RedisTierGateImpl) TryAcquire(ctx context.Context, items []GateItem) error {
	keys := make([]string, len(items))
	argv := make([]interface{}, len(items))
	for i, item := range items {
		keys[i] = g.remainingKey(item.TierID)
		argv[i] = item.Quantity
	}

	result, err := g.client.Eval(ctx, acquireScript, keys, argv...).Result()
	if err != nil {
		return err
	}

	resSlice, ok := result.([]interface{})
	if !ok || len(resSlice) != 3 {
		return errors.New("unexpected gate script result")
	}
	code := resSlice[0].(int64)
	index := resSlice[1].(int64)
	remaining := resSlice[2].(int64)

	switch code {
	case 1:
		return nil
	case -1:
		item := items[index-1]
		return &apperrors.CapacityError{
			TierID:    item.TierUUID,
			Requested: item.Quantity,
			Remaining: int(remaining),
		}
	case -2:
		return ErrGateCold
	default:
		return errors.New("unexpected gate script result")
	}
}

func (g *RedisTierGateImpl) Release(ctx context.Context, items []GateItem) error {
	keys := make([]string, len(items))
	argv := make([]interface{}, len(items))
	for i, item := range items {
		keys[i] = g.remainingKey(item.TierID)
		argv[i] = item.Quantity
	}

	_, err := g.client.Eval(ctx, releaseScript, keys, argv...).Result()
	return err
}
