package repositories

import (
	"context"
	"go-ticket-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type TierRepositoryMock struct {
	mock.Mock
}

func NewTierRepositoryMock() *TierRepositoryMock {
	return &TierRepositoryMock{}
}

func (m *TierRepositoryMock) Create(ctx context.Context, tx pgx.Tx, tier *model.Tier) (*model.Tier, error) {
	args := m.Called(ctx, tx, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tier), args.Error(1)
}

func (m *TierRepositoryMock) ListByEventID(ctx context.Context, eventID int) ([]*model.Tier, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Tier), args.Error(1)
}

func (m *TierRepositoryMock) FindByID(ctx context.Context, id int) (*model.Tier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tier), args.Error(1)
}

func (m *TierRepositoryMock) FindByTierID(ctx context.Context, tierID uuid.UUID) (*model.Tier, error) {
	args := m.Called(ctx, tierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tier), args.Error(1)
}

func (m *TierRepositoryMock) Update(ctx context.Context, id int, params model.UpdateTierParams) (*model.Tier, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tier), args.Error(1)
}

func (m *TierRepositoryMock) AdjustCapacity(ctx context.Context, id int, delta int) (*model.Tier, error) {
	args := m.Called(ctx, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tier), args.Error(1)
}

func (m *TierRepositoryMock) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TierRepositoryMock) TryDecrement(ctx context.Context, tx pgx.Tx, id int, quantity int) (*model.TierDebit, error) {
	args := m.Called(ctx, tx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TierDebit), args.Error(1)
}

func (m *TierRepositoryMock) Increment(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	args := m.Called(ctx, tx, id, quantity)
	return args.Error(0)
}
