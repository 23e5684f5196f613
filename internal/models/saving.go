package models

import (
	"time"

	"github.com/google/uuid"
)

// SavingType is the direction of a savings movement
type SavingType string

const (
	SavingDeposit    SavingType = "deposit"
	SavingWithdrawal SavingType = "withdrawal"
)

// Valid reports whether t is one of the known saving types.
func (t SavingType) Valid() bool {
	return t == SavingDeposit || t == SavingWithdrawal
}

// Saving is a single deposit into or withdrawal from a user's savings
type Saving struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user"`
	Type      SavingType `json:"type"`
	Amount    float64    `json:"amount"`
	Date      time.Time  `json:"date"`
	Note      string     `json:"note,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Delta returns the signed effect of the movement on a savings balance.
func (s *Saving) Delta() float64 {
	if s.Type == SavingWithdrawal {
		return -s.Amount
	}
	return s.Amount
}
