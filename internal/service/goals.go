package service

import (
	"context"
	"strings"
	"time"

	"github.com/finaurial/finance-tracker/internal/auth"
	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/google/uuid"
)

// GoalInput is the body of POST /api/goals
type GoalInput struct {
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
	Deadline      string  `json:"deadline"`
	ReminderDate  string  `json:"reminderDate"`
}

// GoalUpdateInput is the body of PUT /api/goals/:id; absent fields are kept.
// An empty date string clears that date.
type GoalUpdateInput struct {
	Name         *string  `json:"name"`
	TargetAmount *float64 `json:"targetAmount"`
	Deadline     *string  `json:"deadline"`
	ReminderDate *string  `json:"reminderDate"`
}

// ContributionInput is the body of POST /api/goals/:id/contribute
type ContributionInput struct {
	Amount float64 `json:"amount"`
}

// ListGoals returns the caller's goals
func (s *Service) ListGoals(ctx context.Context, caller auth.Identity) ([]models.Goal, error) {
	return s.repo.ListGoals(ctx, caller.ID)
}

// CreateGoal adds a savings goal. A starting amount that already meets the
// target creates the goal completed.
func (s *Service) CreateGoal(ctx context.Context, caller auth.Identity, in GoalInput) (*models.Goal, error) {
	var c checker
	goal := &models.Goal{
		UserID:        caller.ID,
		Name:          strings.TrimSpace(in.Name),
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		Status:        models.GoalActive,
	}
	c.require(goal.Name != "", "Please add a name")
	c.require(goal.TargetAmount > 0, "Please enter a valid target amount")
	c.require(goal.CurrentAmount >= 0, "Current amount cannot be negative")

	var err error
	goal.Deadline, err = optionalDate(in.Deadline)
	c.require(err == nil, "Please enter a valid deadline")
	goal.ReminderDate, err = optionalDate(in.ReminderDate)
	c.require(err == nil, "Please enter a valid reminder date")
	if err := c.err(); err != nil {
		return nil, err
	}

	goal.RefreshStatus()
	if err := s.repo.CreateGoal(ctx, goal); err != nil {
		return nil, err
	}

	s.log.Infof("Goal created for user %s: %s %.2f", caller.ID, goal.Name, goal.TargetAmount)
	return goal, nil
}

func (s *Service) findOwnedGoal(ctx context.Context, caller auth.Identity, id uuid.UUID) (*models.Goal, error) {
	goal, err := s.repo.FindGoalByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Goal")
	}
	if !owns(caller, goal.UserID) && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return goal, nil
}

func updateDate(value *string, current **time.Time, message string, c *checker) {
	if value == nil {
		return
	}
	date, err := optionalDate(*value)
	c.require(err == nil, message)
	if err == nil {
		*current = date
	}
}

// UpdateGoal edits name, target and dates. Lowering the target under the
// current amount completes the goal; raising it never reopens one.
func (s *Service) UpdateGoal(ctx context.Context, caller auth.Identity, id uuid.UUID, in GoalUpdateInput) (*models.Goal, error) {
	goal, err := s.findOwnedGoal(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	var c checker
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		c.require(name != "", "Please add a name")
		goal.Name = name
	}
	if in.TargetAmount != nil {
		c.require(*in.TargetAmount > 0, "Please enter a valid target amount")
		goal.TargetAmount = *in.TargetAmount
	}
	updateDate(in.Deadline, &goal.Deadline, "Please enter a valid deadline", &c)
	updateDate(in.ReminderDate, &goal.ReminderDate, "Please enter a valid reminder date", &c)
	if err := c.err(); err != nil {
		return nil, err
	}

	goal.RefreshStatus()
	if err := s.repo.UpdateGoal(ctx, goal); err != nil {
		return nil, notFound(err, "Goal")
	}
	s.log.Infof("Goal %s updated by %s", goal.ID, caller.ID)
	return goal, nil
}

// DeleteGoal removes one of the caller's goals
func (s *Service) DeleteGoal(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	goal, err := s.findOwnedGoal(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteGoal(ctx, goal.ID); err != nil {
		return notFound(err, "Goal")
	}
	s.log.Infof("Goal %s deleted by %s", goal.ID, caller.ID)
	return nil
}

// Contribute adds money to a goal and completes it once the target is reached
func (s *Service) Contribute(ctx context.Context, caller auth.Identity, id uuid.UUID, in ContributionInput) (*models.Goal, error) {
	if in.Amount <= 0 {
		return nil, invalid("Please enter a valid amount")
	}
	goal, err := s.findOwnedGoal(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	wasCompleted := goal.Status == models.GoalCompleted
	goal.Contribute(in.Amount, s.now())
	if err := s.repo.UpdateGoal(ctx, goal); err != nil {
		return nil, notFound(err, "Goal")
	}

	if !wasCompleted && goal.Status == models.GoalCompleted {
		s.log.Infof("Goal %s of user %s completed", goal.ID, goal.UserID)
	}
	s.log.Infof("Contribution of %.2f added to goal %s", in.Amount, goal.ID)
	return goal, nil
}
