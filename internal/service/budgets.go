package service

import (
	"context"
	"errors"
	"strings"

	"github.com/finaurial/finance-tracker/internal/auth"
	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/finaurial/finance-tracker/internal/repository"
	"github.com/google/uuid"
)

// BudgetInput is the body of POST and PUT /api/budgets. Amount is accepted
// as an alias of Limit.
type BudgetInput struct {
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
	Amount   float64 `json:"amount"`
}

func (in *BudgetInput) validate() (string, float64, error) {
	category := strings.TrimSpace(in.Category)
	limit := in.Limit
	if limit == 0 {
		limit = in.Amount
	}

	var c checker
	c.require(category != "", "Please add a category")
	c.require(limit > 0, "Amount must be a positive number")
	return category, limit, c.err()
}

// ListBudgets returns the caller's budgets with their stored spent values
func (s *Service) ListBudgets(ctx context.Context, caller auth.Identity) ([]models.Budget, error) {
	return s.repo.ListBudgets(ctx, caller.ID)
}

// CreateBudget adds a budget; a user has at most one budget per category
func (s *Service) CreateBudget(ctx context.Context, caller auth.Identity, in BudgetInput) (*models.Budget, error) {
	category, limit, err := in.validate()
	if err != nil {
		return nil, err
	}

	budget := &models.Budget{UserID: caller.ID, Category: category, Limit: limit}
	if err := s.repo.CreateBudget(ctx, budget); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("A budget for this category already exists")
		}
		return nil, err
	}

	s.log.Infof("Budget created for user %s: %s %.2f", caller.ID, budget.Category, budget.Limit)
	return budget, nil
}

func (s *Service) findOwnedBudget(ctx context.Context, caller auth.Identity, id uuid.UUID) (*models.Budget, error) {
	budget, err := s.repo.FindBudgetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Budget")
	}
	if !owns(caller, budget.UserID) && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return budget, nil
}

// UpdateBudget changes category and limit; spent is left as is
func (s *Service) UpdateBudget(ctx context.Context, caller auth.Identity, id uuid.UUID, in BudgetInput) (*models.Budget, error) {
	budget, err := s.findOwnedBudget(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	category, limit, err := in.validate()
	if err != nil {
		return nil, err
	}

	budget.Category = category
	budget.Limit = limit
	if err := s.repo.UpdateBudget(ctx, budget); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("A budget for this category already exists")
		}
		return nil, notFound(err, "Budget")
	}

	s.log.Infof("Budget %s updated by %s", budget.ID, caller.ID)
	return budget, nil
}

// DeleteBudget removes one of the caller's budgets
func (s *Service) DeleteBudget(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	budget, err := s.findOwnedBudget(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBudget(ctx, budget.ID); err != nil {
		return notFound(err, "Budget")
	}
	s.log.Infof("Budget %s deleted by %s", budget.ID, caller.ID)
	return nil
}
