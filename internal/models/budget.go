package models

import (
	"time"

	"github.com/google/uuid"
)

// Budget caps spending for one category of one user.
// Spent is adjusted incrementally by expense transactions and is never
// recomputed from the transaction history.
type Budget struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user"`
	Category  string    `json:"category"`
	Limit     float64   `json:"limit"`
	Spent     float64   `json:"spent"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Remaining returns how much of the limit is left; negative when overspent.
func (b *Budget) Remaining() float64 {
	return b.Limit - b.Spent
}
