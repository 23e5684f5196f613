package service

import (
	"context"
	"errors"
	"strings"

	"github.com/finaurial/finance-tracker/internal/analytics"
	"github.com/finaurial/finance-tracker/internal/auth"
	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/finaurial/finance-tracker/internal/repository"
	"github.com/google/uuid"
)

// SavingInput is the body of POST /api/savings
type SavingInput struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
	Note   string  `json:"note"`
}

// SavingUpdateInput is the body of PUT /api/savings/:id. Type and amount
// are fixed once the balance has moved.
type SavingUpdateInput struct {
	Date *string `json:"date"`
	Note *string `json:"note"`
}

// SavingsSummary is the payload of GET /api/savings/summary
type SavingsSummary struct {
	TotalSavings    float64 `json:"totalSavings"`
	RecordedBalance float64 `json:"recordedBalance"`
}

// ListSavings returns the caller's savings records, newest first
func (s *Service) ListSavings(ctx context.Context, caller auth.Identity) ([]models.Saving, error) {
	return s.repo.ListSavings(ctx, caller.ID)
}

// CreateSaving moves the cached balance and records the movement. A
// withdrawal larger than the balance is refused before anything is stored.
func (s *Service) CreateSaving(ctx context.Context, caller auth.Identity, in SavingInput) (*models.Saving, error) {
	var c checker
	saving := &models.Saving{
		UserID: caller.ID,
		Type:   models.SavingType(strings.TrimSpace(in.Type)),
		Amount: in.Amount,
		Note:   strings.TrimSpace(in.Note),
		Date:   s.now(),
	}
	c.require(saving.Type.Valid(), "Type must be deposit or withdrawal")
	c.require(saving.Amount > 0, "Please enter a valid amount")
	date, err := optionalDate(in.Date)
	c.require(err == nil, "Please enter a valid date")
	if date != nil {
		saving.Date = *date
	}
	if err := c.err(); err != nil {
		return nil, err
	}

	balance, err := s.repo.AdjustUserSavings(ctx, caller.ID, saving.Delta())
	switch {
	case errors.Is(err, repository.ErrInsufficientSavings):
		return nil, invalid("Insufficient savings")
	case err != nil:
		return nil, notFound(err, "User")
	}

	if err := s.repo.CreateSaving(ctx, saving); err != nil {
		if _, undoErr := s.repo.AdjustUserSavings(ctx, caller.ID, -saving.Delta()); undoErr != nil {
			s.log.WithError(undoErr).Errorf("Failed to restore savings balance of user %s", caller.ID)
		}
		return nil, err
	}

	s.log.Infof("Saving %s of %.2f recorded for user %s, balance %.2f", saving.Type, saving.Amount, caller.ID, balance)
	return saving, nil
}

func (s *Service) findOwnedSaving(ctx context.Context, caller auth.Identity, id uuid.UUID) (*models.Saving, error) {
	saving, err := s.repo.FindSavingByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Saving")
	}
	if !owns(caller, saving.UserID) && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return saving, nil
}

// UpdateSaving edits the note and date of a savings record
func (s *Service) UpdateSaving(ctx context.Context, caller auth.Identity, id uuid.UUID, in SavingUpdateInput) (*models.Saving, error) {
	saving, err := s.findOwnedSaving(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if in.Date != nil {
		date, err := parseDate(*in.Date)
		if err != nil {
			return nil, invalid("Please enter a valid date")
		}
		saving.Date = date
	}
	if in.Note != nil {
		saving.Note = strings.TrimSpace(*in.Note)
	}

	if err := s.repo.UpdateSaving(ctx, saving); err != nil {
		return nil, notFound(err, "Saving")
	}
	s.log.Infof("Saving %s updated by %s", saving.ID, caller.ID)
	return saving, nil
}

// DeleteSaving removes a savings record. The cached balance keeps the
// movement; it only changes when a record is created.
func (s *Service) DeleteSaving(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	saving, err := s.findOwnedSaving(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSaving(ctx, saving.ID); err != nil {
		return notFound(err, "Saving")
	}
	s.log.Infof("Saving %s deleted by %s, cached balance of user %s left unchanged", saving.ID, caller.ID, saving.UserID)
	return nil
}

// SavingsSummary reports the cached balance next to the balance the
// remaining records add up to
func (s *Service) SavingsSummary(ctx context.Context, caller auth.Identity) (*SavingsSummary, error) {
	user, err := s.Me(ctx, caller)
	if err != nil {
		return nil, err
	}
	savings, err := s.repo.ListSavings(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return &SavingsSummary{
		TotalSavings:    user.Savings,
		RecordedBalance: analytics.SavingsBalance(savings),
	}, nil
}
