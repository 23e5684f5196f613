package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/finaurial/finance-tracker/internal/config"
	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Mailer sends the application's outgoing emails
type Mailer interface {
	SendContactNotification(contact *models.Contact) error
	SendGoalReminder(to, username string, goal *models.Goal) error
}

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendContactNotification forwards a contact form submission to CONTACT_RECIPIENT
func (s *Sender) SendContactNotification(contact *models.Contact) error {
	if s.cfg.ContactRecipient == "" {
		return nil
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.ContactRecipient}
	e.ReplyTo = []string{contact.Email}
	subject := contact.Subject
	if subject == "" {
		subject = "New message"
	}
	e.Subject = "Contact form: " + subject
	e.Text = []byte(fmt.Sprintf(
		"From: %s <%s>\nReceived: %s\n\n%s\n",
		contact.Name, contact.Email, contact.CreatedAt.Format("2006-01-02 15:04:05"), contact.Message,
	))

	return s.deliver(e)
}

// SendGoalReminder reminds a user about an active savings goal
func (s *Sender) SendGoalReminder(to, username string, goal *models.Goal) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Reminder: your goal \"%s\"", goal.Name)

	body := fmt.Sprintf("Dear %s,\n\n", username)
	body += fmt.Sprintf(
		"You have saved %.2f of %.2f (%.0f%%) towards \"%s\".\n",
		goal.CurrentAmount, goal.TargetAmount, goal.Progress()*100, goal.Name,
	)
	if goal.Deadline != nil {
		days := int(time.Until(*goal.Deadline).Hours() / 24)
		body += fmt.Sprintf("The deadline is %s (%d days left).\n", goal.Deadline.Format("2006-01-02"), days)
	}
	body += "\nBest regards,\nFinance Tracker"
	e.Text = []byte(body)

	return s.deliver(e)
}

func (s *Sender) deliver(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %v: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %v: %s", e.To, e.Subject)
	return nil
}

// Nop discards every email; used when no SMTP relay is configured
type Nop struct{}

func (Nop) SendContactNotification(*models.Contact) error       { return nil }
func (Nop) SendGoalReminder(string, string, *models.Goal) error { return nil }
