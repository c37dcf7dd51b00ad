package model

import (
	"time"

	"github.com/google/uuid"
)

// Reservation is the durable record of a committed purchase, keyed by the
// caller-supplied idempotency key. A retried request with the same key is
// answered from this record instead of being re-executed.
type Reservation struct {
	ID             int        `json:"id" db:"id"`
	IdempotencyKey string     `json:"idempotency_key" db:"idempotency_key"`
	EventID        int        `json:"event_id" db:"event_id"`
	TotalPrice     float64    `json:"total_price" db:"total_price"`
	CommittedAt    time.Time  `json:"committed_at" db:"committed_at"`
	NotifiedAt     *time.Time `json:"notified_at,omitempty" db:"notified_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// ReservationItem captures one committed line: quantity, the unit price at
// commit time and the tier's remaining count right after the decrement. The
// tier UUID is denormalized so a replay rebuilds the original confirmation
// without depending on later tier edits.
type ReservationItem struct {
	ID             int       `json:"id" db:"id"`
	ReservationID  int       `json:"reservation_id" db:"reservation_id"`
	TierID         int       `json:"tier_id" db:"tier_id"`
	TierUUID       uuid.UUID `json:"tier_uuid" db:"tier_uuid"`
	Quantity       int       `json:"quantity" db:"quantity"`
	UnitPrice      float64   `json:"unit_price" db:"unit_price"`
	RemainingAfter int       `json:"remaining_after" db:"remaining_after"`
}

// PurchaseLineItem is one requested line of a purchase.
type PurchaseLineItem struct {
	TierID   uuid.UUID `json:"tier_id" binding:"required"`
	Quantity int       `json:"quantity"`
}

// PurchaseRequest is the externally exposed purchase payload. Prices are
// deliberately absent: they are always recomputed from the tier store.
type PurchaseRequest struct {
	EventID        uuid.UUID          `json:"event_id" binding:"required"`
	Items          []PurchaseLineItem `json:"items" binding:"required"`
	IdempotencyKey string             `json:"idempotency_key" binding:"required"`
}

// ConfirmationLine mirrors one committed line item in the response.
type ConfirmationLine struct {
	TierID    uuid.UUID `json:"tier_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	Remaining int       `json:"remaining"`
}

// PurchaseConfirmation is returned on success and verbatim on idempotent
// replay.
type PurchaseConfirmation struct {
	EventID     uuid.UUID          `json:"event_id"`
	Items       []ConfirmationLine `json:"items"`
	TotalPrice  float64            `json:"total_price"`
	CommittedAt time.Time          `json:"committed_at"`
}

// ConfirmationMessage is the payload published to the confirmation stream
// after commit; downstream collaborators (mail, reports) consume it from
// there, never synchronously from the purchase path.
type ConfirmationMessage struct {
	ReservationID  int       `json:"reservation_id"`
	IdempotencyKey string    `json:"idempotency_key"`
	EventID        uuid.UUID `json:"event_id"`
	TotalPrice     float64   `json:"total_price"`
	CommittedAt    time.Time `json:"committed_at"`
}
