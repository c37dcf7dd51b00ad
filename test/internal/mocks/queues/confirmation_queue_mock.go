package queues

import (
	"context"
	"go-ticket-ledger/internal/model"
	"go-ticket-ledger/internal/queue"

	"github.com/stretchr/testify/mock"
)

type ConfirmationQueueMock struct {
	mock.Mock
}

func NewConfirmationQueueMock() *ConfirmationQueueMock {
	return &ConfirmationQueueMock{}
}

func (m *ConfirmationQueueMock) PublishConfirmation(ctx context.Context, msg *model.ConfirmationMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *ConfirmationQueueMock) SubscribeConfirmations(ctx context.Context) (<-chan queue.Delivery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan queue.Delivery), args.Error(1)
}
