package services

import (
	"context"
	"go-ticket-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type TierServiceMock struct {
	mock.Mock
}

func NewTierServiceMock() *TierServiceMock {
	return &TierServiceMock{}
}

func (m *TierServiceMock) GetByTierID(ctx context.Context, tierID uuid.UUID) (*model.Tier, error) {
	args := m.Called(ctx, tierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tier), args.Error(1)
}

func (m *TierServiceMock) UpdateByTierID(ctx context.Context, tierID uuid.UUID, params model.UpdateTierParams) (*model.Tier, error) {
	args := m.Called(ctx, tierID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tier), args.Error(1)
}

func (m *TierServiceMock) AdjustCapacityByTierID(ctx context.Context, tierID uuid.UUID, delta int) (*model.Tier, error) {
	args := m.Called(ctx, tierID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tier), args.Error(1)
}

func (m *TierServiceMock) DeleteByTierID(ctx context.Context, tierID uuid.UUID) error {
	args := m.Called(ctx, tierID)
	return args.Error(0)
}
