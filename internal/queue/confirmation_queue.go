package queue

import (
	"context"
	"go-ticket-ledger/internal/model"
	"go-ticket-ledger/pkg/logger"

	"go.uber.org/zap"
)

type Delivery struct {
	Data *model.ConfirmationMessage
	Ack  func()
	Nack func(requeue bool)
}

// ConfirmationQueue carries committed-purchase events from the ledger to
// downstream consumers (notification hand-off, audit). Publishing happens
// strictly after the database commit; a lost publish never undoes a sale.
type ConfirmationQueue interface {
	PublishConfirmation(ctx context.Context, msg *model.ConfirmationMessage) error
	SubscribeConfirmations(ctx context.Context) (<-chan Delivery, error)
}

// MemoryConfirmationQueue is a channel-backed queue used in tests and
// single-process deployments.
type MemoryConfirmationQueue struct {
	ch chan *model.ConfirmationMessage
}

func NewMemoryConfirmationQueue(bufferSize int) ConfirmationQueue {
	return &MemoryConfirmationQueue{
		ch: make(chan *model.ConfirmationMessage, bufferSize),
	}
}

func (q *MemoryConfirmationQueue) PublishConfirmation(ctx context.Context, msg *model.ConfirmationMessage) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryConfirmationQueue) SubscribeConfirmations(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: msg,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if !requeue {
							return
						}
						// Never block the consumer on a full buffer; drop
						// and log instead, like the stream impl discards
						// poison messages.
						select {
						case q.ch <- msg:
						default:
							logger.WithComponent("mq").Warn("memory queue full, dropping requeued message",
								zap.Int("reservation_id", msg.ReservationID))
						}
					},
				}
			}
		}
	}()

	return out, nil
}
