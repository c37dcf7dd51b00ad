package model

import (
	"time"

	"github.com/google/uuid"
)

// Tier is a priced ticket category within an event. TotalCapacity is fixed at
// creation (admin capacity adjustments move both columns together); Remaining
// is the only contended field and is mutated exclusively by the tier
// repository's guarded updates.
type Tier struct {
	ID            int        `json:"id" db:"id"`
	TierID        uuid.UUID  `json:"tier_id" db:"tier_id"`
	EventID       int        `json:"event_id" db:"event_id"`
	Name          string     `json:"name" db:"name"`
	Price         float64    `json:"price" db:"price"`
	Benefits      *string    `json:"benefits,omitempty" db:"benefits"`
	TotalCapacity int        `json:"total_capacity" db:"total_capacity"`
	Remaining     int        `json:"remaining" db:"remaining"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func (t *Tier) IsDeleted() bool {
	return t.DeletedAt != nil
}

func (t *Tier) IsAvailable() bool {
	return !t.IsDeleted() && t.Remaining > 0
}

type UpdateTierParams struct {
	Name     *string
	Price    *float64
	Benefits *string
}

// TierDebit is the post-decrement state returned by a successful conditional
// decrement: the new remaining count and the unit price read in the same
// statement, so the committed price never comes from the client.
type TierDebit struct {
	Remaining int
	Price     float64
}
