// Package scheduler runs the periodic background jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/finaurial/finance-tracker/internal/repository"
	"github.com/finaurial/finance-tracker/internal/utils/email"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler emails goal owners on the reminder date of their active goals
type Scheduler struct {
	cron   *cron.Cron
	repo   repository.Store
	mailer email.Mailer
	log    *logrus.Logger
	now    func() time.Time
}

// New registers the reminder job on schedule, a standard five field cron expression evaluated in UTC
func New(schedule string, repo repository.Store, mailer email.Mailer, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		repo:   repo,
		mailer: mailer,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
	_, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.SendGoalReminders(context.Background()); err != nil {
			s.log.WithError(err).Error("Goal reminder run failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Run starts the cron loop and blocks until ctx is cancelled and running jobs finish
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.log.Info("Scheduler started")
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
	return nil
}

// SendGoalReminders emails every owner of an active goal whose reminder is
// due today and returns how many emails went out. A failed email is logged
// and does not stop the run.
func (s *Scheduler) SendGoalReminders(ctx context.Context) (int, error) {
	goals, err := s.repo.GoalsWithReminderOn(ctx, s.now())
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range goals {
		goal := &goals[i]
		user, err := s.repo.FindUserByID(ctx, goal.UserID)
		if err != nil {
			s.log.WithError(err).Warnf("Skipping reminder for goal %s", goal.ID)
			continue
		}
		if user.IsSuspended {
			continue
		}
		if err := s.mailer.SendGoalReminder(user.Email, user.Username, goal); err != nil {
			s.log.WithError(err).Warnf("Failed to send reminder for goal %s to %s", goal.ID, user.Email)
			continue
		}
		sent++
	}

	s.log.Infof("Goal reminders sent: %d of %d", sent, len(goals))
	return sent, nil
}
