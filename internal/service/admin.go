package service

import (
	"context"

	"github.com/finaurial/finance-tracker/internal/auth"
	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/google/uuid"
)

// ListUsers returns every user without password hashes
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.ListUsers(ctx)
}

// ToggleSuspension flips the suspended flag of a user. Admins cannot suspend themselves.
func (s *Service) ToggleSuspension(ctx context.Context, caller auth.Identity, id uuid.UUID) (*models.User, error) {
	if caller.ID == id {
		return nil, invalid("You cannot suspend your own account")
	}
	user, err := s.repo.FindUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User")
	}

	user.IsSuspended = !user.IsSuspended
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, notFound(err, "User")
	}

	s.log.Infof("User %s suspended=%t by %s", user.Email, user.IsSuspended, caller.ID)
	return user, nil
}

// ListContacts returns contact messages newest first, decrypted when stored sealed
func (s *Service) ListContacts(ctx context.Context) ([]models.Contact, error) {
	contacts, err := s.repo.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range contacts {
		message, err := s.cipher.Open(contacts[i].Message)
		if err != nil {
			s.log.WithError(err).Warnf("Failed to decrypt contact %s", contacts[i].ID)
			continue
		}
		contacts[i].Message = message
	}
	return contacts, nil
}
