package repositories

import (
	"context"
	"go-ticket-ledger/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type ReservationRepositoryMock struct {
	mock.Mock
}

func NewReservationRepositoryMock() *ReservationRepositoryMock {
	return &ReservationRepositoryMock{}
}

func (m *ReservationRepositoryMock) FindByKey(ctx context.Context, key string) (*model.Reservation, []*model.ReservationItem, error) {
	args := m.Called(ctx, key)
	var reservation *model.Reservation
	var items []*model.ReservationItem
	if args.Get(0) != nil {
		reservation = args.Get(0).(*model.Reservation)
	}
	if args.Get(1) != nil {
		items = args.Get(1).([]*model.ReservationItem)
	}
	return reservation, items, args.Error(2)
}

func (m *ReservationRepositoryMock) MarkNotified(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ReservationRepositoryMock) Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation, items []*model.ReservationItem) error {
	args := m.Called(ctx, tx, reservation, items)
	return args.Error(0)
}
