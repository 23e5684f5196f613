package repository

import (
	"context"
	"errors"
	"time"

	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicate           = errors.New("record already exists")
	ErrInsufficientSavings = errors.New("insufficient savings")
)

// Store is the persistence surface used by the service layer.
// Each method is atomic on a single record; nothing spans records.
type Store interface {
	Ping(ctx context.Context) error
	Close() error

	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	// AdjustUserSavings adds delta to the cached savings balance and returns the
	// new balance. It fails with ErrInsufficientSavings instead of going negative.
	AdjustUserSavings(ctx context.Context, userID uuid.UUID, delta float64) (float64, error)

	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	FindTransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, int, error)
	// TransactionsBetween returns the user's transactions dated in [from, to).
	// A zero from or to leaves that side open.
	TransactionsBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Transaction, error)

	CreateBudget(ctx context.Context, budget *models.Budget) error
	FindBudgetByID(ctx context.Context, id uuid.UUID) (*models.Budget, error)
	ListBudgets(ctx context.Context, userID uuid.UUID) ([]models.Budget, error)
	UpdateBudget(ctx context.Context, budget *models.Budget) error
	DeleteBudget(ctx context.Context, id uuid.UUID) error
	// AdjustBudgetSpent adds delta to spent of the user's budget for category.
	// It returns nil without error when the user has no such budget.
	AdjustBudgetSpent(ctx context.Context, userID uuid.UUID, category string, delta float64) (*models.Budget, error)

	CreateSaving(ctx context.Context, saving *models.Saving) error
	FindSavingByID(ctx context.Context, id uuid.UUID) (*models.Saving, error)
	ListSavings(ctx context.Context, userID uuid.UUID) ([]models.Saving, error)
	UpdateSaving(ctx context.Context, saving *models.Saving) error
	DeleteSaving(ctx context.Context, id uuid.UUID) error

	CreateGoal(ctx context.Context, goal *models.Goal) error
	FindGoalByID(ctx context.Context, id uuid.UUID) (*models.Goal, error)
	ListGoals(ctx context.Context, userID uuid.UUID) ([]models.Goal, error)
	// UpdateGoal saves the goal fields and appends contributions not yet stored.
	UpdateGoal(ctx context.Context, goal *models.Goal) error
	DeleteGoal(ctx context.Context, id uuid.UUID) error
	// GoalsWithReminderOn returns active goals whose reminder date falls on day (UTC).
	GoalsWithReminderOn(ctx context.Context, day time.Time) ([]models.Goal, error)

	ListFeatureFlags(ctx context.Context) ([]models.FeatureFlag, error)
	FindFeatureFlagByID(ctx context.Context, id uuid.UUID) (*models.FeatureFlag, error)
	FindFeatureFlagByName(ctx context.Context, name string) (*models.FeatureFlag, error)
	CreateFeatureFlag(ctx context.Context, flag *models.FeatureFlag) error
	UpdateFeatureFlag(ctx context.Context, flag *models.FeatureFlag) error
	DeleteFeatureFlag(ctx context.Context, id uuid.UUID) error

	CreateContact(ctx context.Context, contact *models.Contact) error
	ListContacts(ctx context.Context) ([]models.Contact, error)
}
