package model

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID          int       `json:"id" db:"id"`
	EventID     uuid.UUID `json:"event_id" db:"event_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	StartsAt    time.Time `json:"starts_at" db:"starts_at"`
	Venue       string    `json:"venue" db:"venue"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	Tiers []*Tier `json:"tiers,omitempty" db:"-"`
}

// UpdateEventParams covers metadata only. Tier capacity is never touched
// through the event edit path.
type UpdateEventParams struct {
	Title       *string
	Description *string
	StartsAt    *time.Time
	Venue       *string
}
