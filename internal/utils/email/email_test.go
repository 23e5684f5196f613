package email

import (
	"errors"
	"io"
	"net/smtp"
	"testing"
	"time"

	"github.com/finaurial/finance-tracker/internal/config"
	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	sent []*email.Email
	addr string
	err  error
}

func newTestSender(cfg *config.Config) (*Sender, *capture) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c := &capture{}
	s := NewSender(cfg, logger)
	s.send = func(e *email.Email, addr string, _ smtp.Auth) error {
		c.sent = append(c.sent, e)
		c.addr = addr
		return c.err
	}
	return s, c
}

func TestSendContactNotification(t *testing.T) {
	s, c := newTestSender(&config.Config{
		SMTPHost: "smtp.local", SMTPPort: "2525", SenderEmail: "noreply@local", ContactRecipient: "support@local",
	})

	err := s.SendContactNotification(&models.Contact{
		Name: "Ann", Email: "ann@example.com", Subject: "Hello", Message: "Great app", CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, c.sent, 1)
	assert.Equal(t, "smtp.local:2525", c.addr)
	assert.Equal(t, []string{"support@local"}, c.sent[0].To)
	assert.Equal(t, []string{"ann@example.com"}, c.sent[0].ReplyTo)
	assert.Equal(t, "Contact form: Hello", c.sent[0].Subject)
	assert.Contains(t, string(c.sent[0].Text), "Great app")
}

func TestSendContactNotificationWithoutRecipient(t *testing.T) {
	s, c := newTestSender(&config.Config{SMTPHost: "smtp.local"})
	require.NoError(t, s.SendContactNotification(&models.Contact{Message: "hi"}))
	assert.Empty(t, c.sent)
}

func TestSendGoalReminder(t *testing.T) {
	s, c := newTestSender(&config.Config{SMTPHost: "smtp.local", SMTPPort: "25", SenderEmail: "noreply@local"})
	deadline := time.Now().AddDate(0, 0, 10)

	err := s.SendGoalReminder("bob@example.com", "bob", &models.Goal{
		Name: "Car", TargetAmount: 1000, CurrentAmount: 250, Deadline: &deadline,
	})
	require.NoError(t, err)
	require.Len(t, c.sent, 1)
	body := string(c.sent[0].Text)
	assert.Contains(t, body, "Dear bob")
	assert.Contains(t, body, "250.00 of 1000.00 (25%)")
	assert.Contains(t, body, deadline.Format("2006-01-02"))
}

func TestDeliverWrapsTransportError(t *testing.T) {
	s, c := newTestSender(&config.Config{SMTPHost: "smtp.local"})
	c.err = errors.New("connection refused")

	err := s.SendGoalReminder("bob@example.com", "bob", &models.Goal{Name: "Car", TargetAmount: 1})
	assert.ErrorContains(t, err, "connection refused")
}

func TestNopMailer(t *testing.T) {
	var m Mailer = Nop{}
	assert.NoError(t, m.SendContactNotification(&models.Contact{Name: "Ann"}))
	assert.NoError(t, m.SendGoalReminder("ann@example.com", "ann", &models.Goal{Name: "Trip"}))
}
