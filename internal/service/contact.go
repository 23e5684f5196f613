package service

import (
	"context"
	"strings"

	"github.com/finaurial/finance-tracker/internal/models"
)

// ContactInput is the body of POST /api/contact
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// SubmitContact stores a contact form message and notifies the support
// inbox. Notification failures are logged; the message is kept either way.
func (s *Service) SubmitContact(ctx context.Context, in ContactInput) error {
	contact := &models.Contact{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}

	var c checker
	c.require(contact.Name != "", "Please add a name")
	c.require(emailPattern.MatchString(contact.Email), "Please enter a valid email")
	c.require(contact.Message != "", "Please add a message")
	if err := c.err(); err != nil {
		return err
	}

	plain := contact.Message
	sealed, err := s.cipher.Seal(plain)
	if err != nil {
		return err
	}
	contact.Message = sealed
	if err := s.repo.CreateContact(ctx, contact); err != nil {
		return err
	}
	s.log.Infof("Contact message %s received from %s", contact.ID, contact.Email)

	contact.Message = plain
	if err := s.mailer.SendContactNotification(contact); err != nil {
		s.log.WithError(err).Warnf("Failed to send notification for contact %s", contact.ID)
	}
	return nil
}
