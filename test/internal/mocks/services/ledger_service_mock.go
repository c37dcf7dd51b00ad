package services

import (
	"context"
	"go-ticket-ledger/internal/model"

	"github.com/stretchr/testify/mock"
)

type LedgerServiceMock struct {
	mock.Mock
}

func NewLedgerServiceMock() *LedgerServiceMock {
	return &LedgerServiceMock{}
}

func (m *LedgerServiceMock) PurchaseTickets(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseConfirmation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PurchaseConfirmation), args.Error(1)
}

func (m *LedgerServiceMock) GetPurchase(ctx context.Context, key string) (*model.PurchaseConfirmation, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PurchaseConfirmation), args.Error(1)
}
