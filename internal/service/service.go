package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/finaurial/finance-tracker/internal/auth"
	"github.com/finaurial/finance-tracker/internal/integrations/ecb"
	"github.com/finaurial/finance-tracker/internal/notify"
	"github.com/finaurial/finance-tracker/internal/repository"
	"github.com/finaurial/finance-tracker/internal/utils"
	"github.com/finaurial/finance-tracker/internal/utils/email"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RatesProvider serves currency reference rates
type RatesProvider interface {
	Rates(ctx context.Context, base string) (*ecb.Rates, error)
}

// Dependencies are the optional collaborators of Service. Nil fields fall
// back to no-op implementations.
type Dependencies struct {
	Tokens *auth.Issuer
	Alerts notify.Publisher
	Mailer email.Mailer
	Cipher *utils.FieldCipher
	Rates  RatesProvider
}

// Service handles business logic
type Service struct {
	repo   repository.Store
	log    *logrus.Logger
	tokens *auth.Issuer
	alerts notify.Publisher
	mailer email.Mailer
	cipher *utils.FieldCipher
	rates  RatesProvider
	now    func() time.Time
}

// NewService initializes a new service
func NewService(repo repository.Store, log *logrus.Logger, deps Dependencies) *Service {
	s := &Service{
		repo:   repo,
		log:    log,
		tokens: deps.Tokens,
		alerts: deps.Alerts,
		mailer: deps.Mailer,
		cipher: deps.Cipher,
		rates:  deps.Rates,
		now:    func() time.Time { return time.Now().UTC() },
	}
	if s.alerts == nil {
		s.alerts = notify.Nop{}
	}
	if s.mailer == nil {
		s.mailer = email.Nop{}
	}
	if s.cipher == nil {
		s.cipher = &utils.FieldCipher{}
	}
	return s
}

// Ping reports whether the store is reachable
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// parseDate accepts RFC 3339 timestamps and plain calendar dates, returned in UTC
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

// optionalDate parses value when present; an empty value yields nil
func optionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// owns reports whether caller may act on a record owned by owner
func owns(caller auth.Identity, owner uuid.UUID) bool {
	return caller.ID == owner
}
