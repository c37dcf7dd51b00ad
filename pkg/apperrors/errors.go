package apperrors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrTierNotFound         = errors.New("tier not found")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrStoreUnavailable     = errors.New("store unavailable")
	ErrInternalServerError  = errors.New("internal server error")
)

// CapacityError reports which tier could not cover the requested quantity and
// how many units were left when the decrement was refused, so callers can offer
// a reduced quantity instead of a generic failure.
type CapacityError struct {
	TierID    uuid.UUID
	Requested int
	Remaining int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity for tier %s: requested %d, remaining %d",
		e.TierID, e.Requested, e.Remaining)
}

// Unwrap lets errors.Is(err, ErrInsufficientCapacity) match.
func (e *CapacityError) Unwrap() error {
	return ErrInsufficientCapacity
}
