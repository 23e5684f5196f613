package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finaurial/finance-tracker/internal/auth"
	"github.com/finaurial/finance-tracker/internal/config"
	"github.com/finaurial/finance-tracker/internal/handler"
	"github.com/finaurial/finance-tracker/internal/integrations/ecb"
	"github.com/finaurial/finance-tracker/internal/notify"
	"github.com/finaurial/finance-tracker/internal/repository"
	"github.com/finaurial/finance-tracker/internal/router"
	"github.com/finaurial/finance-tracker/internal/scheduler"
	"github.com/finaurial/finance-tracker/internal/service"
	"github.com/finaurial/finance-tracker/internal/utils"
	"github.com/finaurial/finance-tracker/internal/utils/email"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := run(logger); err != nil {
		logger.Fatalf("Server stopped with error: %v", err)
	}
	logger.Info("Server stopped gracefully")
}

// run wires every layer and serves until a signal arrives. Deferred closes run
// before main decides the exit status.
func run(logger *logrus.Logger) error {
	// Load configuration
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize storage
	store, err := repository.Open(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer store.Close()
	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
	}

	// Initialize collaborators
	key, err := cfg.EncryptionKeyBytes()
	if err != nil {
		return fmt.Errorf("invalid encryption key: %w", err)
	}
	cipher, err := utils.NewFieldCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}

	var alerts notify.Publisher = notify.Nop{}
	if cfg.AMQPURL != "" {
		publisher, err := notify.NewRabbitMQPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		alerts = publisher
	}
	defer alerts.Close()

	var mailer email.Mailer = email.Nop{}
	if cfg.EmailEnabled() {
		mailer = email.NewSender(cfg, logger)
	} else {
		logger.Warn("SMTP_HOST is not set, outgoing email disabled")
	}

	// Initialize layers
	svc := service.NewService(store, logger, service.Dependencies{
		Tokens: auth.NewIssuer(cfg.JWTSecret),
		Alerts: alerts,
		Mailer: mailer,
		Cipher: cipher,
		Rates:  ecb.NewClient(cfg, logger),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.SeedDefaultFeatures(ctx); err != nil {
		return fmt.Errorf("failed to seed feature flags: %w", err)
	}

	h := handler.NewHandler(svc, logger)
	jobs, err := scheduler.New(cfg.ReminderSchedule, store, mailer, logger)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr: addr,
		Handler: router.New(h, svc, logger, router.Options{
			CORSOrigin:     cfg.CORSOrigin,
			RequestTimeout: cfg.RequestTimeout,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Starting server on %s (backend %s)", addr, cfg.DataBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return jobs.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
