package models

import (
	"time"

	"github.com/google/uuid"
)

// GoalStatus tracks whether a goal has been reached
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

// Contribution is money put towards a goal
type Contribution struct {
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

// Goal is a savings target
type Goal struct {
	ID            uuid.UUID      `json:"id"`
	UserID        uuid.UUID      `json:"user"`
	Name          string         `json:"name"`
	TargetAmount  float64        `json:"targetAmount"`
	CurrentAmount float64        `json:"currentAmount"`
	Deadline      *time.Time     `json:"deadline,omitempty"`
	ReminderDate  *time.Time     `json:"reminderDate,omitempty"`
	Status        GoalStatus     `json:"status"`
	Contributions []Contribution `json:"contributions"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Contribute records amount against the goal. Completion is one-way:
// a completed goal keeps accepting contributions and never reverts.
func (g *Goal) Contribute(amount float64, at time.Time) {
	g.CurrentAmount += amount
	g.Contributions = append(g.Contributions, Contribution{Amount: amount, Date: at})
	g.RefreshStatus()
}

// RefreshStatus marks the goal completed once the target is reached.
func (g *Goal) RefreshStatus() {
	if g.CurrentAmount >= g.TargetAmount {
		g.Status = GoalCompleted
	}
	if g.Status == "" {
		g.Status = GoalActive
	}
}

// Progress returns the completed fraction, capped at 1.
func (g *Goal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 1
	}
	p := g.CurrentAmount / g.TargetAmount
	if p > 1 {
		return 1
	}
	return p
}
