package caches

import (
	"context"
	"go-ticket-ledger/internal/cache"

	"github.com/stretchr/testify/mock"
)

type TierGateMock struct {
	mock.Mock
}

func NewTierGateMock() *TierGateMock {
	return &TierGateMock{}
}

func (m *TierGateMock) WarmUp(ctx context.Context, tierID int, remaining int) error {
	args := m.Called(ctx, tierID, remaining)
	return args.Error(0)
}

func (m *TierGateMock) Remaining(ctx context.Context, tierID int) (int, error) {
	args := m.Called(ctx, tierID)
	return args.Int(0), args.Error(1)
}

func (m *TierGateMock) TryAcquire(ctx context.Context, items []cache.GateItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *TierGateMock) Release(ctx context.Context, items []cache.GateItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}
