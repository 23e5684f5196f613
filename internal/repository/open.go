package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/finaurial/finance-tracker/internal/config"
)

// Open returns the store selected by cfg.DataBackend. The postgres store is
// migrated first when cfg.RunMigrations is set and pinged before use.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.DataBackend == config.BackendMemory {
		return NewMemoryRepository(), nil
	}

	if cfg.RunMigrations {
		if err := RunMigrations(cfg.DBConn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewRepository(db), nil
}
