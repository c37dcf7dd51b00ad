package worker

import (
	"context"
	"go-ticket-ledger/internal/queue"
	"go-ticket-ledger/internal/repository"
	"go-ticket-ledger/pkg/logger"

	"go.uber.org/zap"
)

// ConfirmationWorker drains the confirmation stream and marks each
// reservation notified. This is the hand-off point for external collaborators
// (mail, reports); the purchase path itself never waits on any of this.
type ConfirmationWorker interface {
	Start(ctx context.Context) error
}

type ConfirmationWorkerImpl struct {
	reservations repository.ReservationRepository
	queue        queue.ConfirmationQueue
}

func NewConfirmationWorker(reservations repository.ReservationRepository, queue queue.ConfirmationQueue) ConfirmationWorker {
	return &ConfirmationWorkerImpl{
		reservations: reservations,
		queue:        queue,
	}
}

func (w *ConfirmationWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeConfirmations(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			err := w.reservations.MarkNotified(ctx, msg.Data.ReservationID)
			if err != nil {
				logger.WithComponent("worker").Warn("mark notified failed, will retry",
					zap.Int("reservation_id", msg.Data.ReservationID), zap.Error(err))
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}
