package models

import (
	"time"

	"github.com/google/uuid"
)

// FeatureFlag toggles a section of the application for every user
type FeatureFlag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsEnabled bool      `json:"isEnabled"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultFeatures are created at startup when missing.
var DefaultFeatures = []string{"Transactions", "Budgets", "Reports", "Savings", "Goals"}
