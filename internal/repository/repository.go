package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Repository provides database operations on PostgreSQL
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the underlying connection pool
func (r *Repository) Close() error {
	return r.db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w", what, err)
}

func execOne(res sql.Result, err error, what string) error {
	if err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- users ----------

const userColumns = `id, username, email, password_hash, role, savings, is_suspended, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Savings, &u.IsSuspended, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `
		INSERT INTO users (id, username, email, password_hash, role, savings, is_suspended, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.Savings, user.IsSuspended).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "find user")
	}
	return u, nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		return nil, notFound(err, "find user")
	}
	return u, nil
}

// FindUserByUsername retrieves a user by username
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`, username))
	if err != nil {
		return nil, notFound(err, "find user")
	}
	return u, nil
}

// ListUsers returns every user ordered by creation time
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser saves profile, role and suspension state. Savings is only
// changed through AdjustUserSavings.
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET username = $1, email = $2, password_hash = $3, role = $4, is_suspended = $5,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $6
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.Role, user.IsSuspended, user.ID).
		Scan(&user.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return notFound(err, "update user")
	}
	return nil
}

// AdjustUserSavings applies delta to the cached savings balance in one statement
func (r *Repository) AdjustUserSavings(ctx context.Context, userID uuid.UUID, delta float64) (float64, error) {
	var balance float64
	err := r.db.QueryRowContext(ctx, `
		UPDATE users SET savings = savings + $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND savings + $1 >= 0
		RETURNING savings`, delta, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		if _, findErr := r.FindUserByID(ctx, userID); findErr != nil {
			return 0, findErr
		}
		return 0, ErrInsufficientSavings
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust savings: %w", err)
	}
	return balance, nil
}

// ---------- transactions ----------

const transactionColumns = `id, user_id, type, category, amount, date, description, created_at, updated_at`

var transactionSortColumns = map[string]string{
	"date":     "date",
	"amount":   "amount",
	"category": "category",
	"type":     "type",
}

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.Category, &t.Amount, &t.Date, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func collectTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	defer rows.Close()
	txs := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

// CreateTransaction inserts a transaction
func (r *Repository) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	query := `
		INSERT INTO transactions (id, user_id, type, category, amount, date, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, tx.ID, tx.UserID, tx.Type, tx.Category, tx.Amount, tx.Date, tx.Description).
		Scan(&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// FindTransactionByID retrieves a transaction by id
func (r *Repository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "find transaction")
	}
	return t, nil
}

// UpdateTransaction saves every mutable field of a transaction
func (r *Repository) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	query := `
		UPDATE transactions SET type = $1, category = $2, amount = $3, date = $4, description = $5,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $6
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, tx.Type, tx.Category, tx.Amount, tx.Date, tx.Description, tx.ID).
		Scan(&tx.UpdatedAt)
	if err != nil {
		return notFound(err, "update transaction")
	}
	return nil
}

// DeleteTransaction removes a transaction
func (r *Repository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	return execOne(res, err, "delete transaction")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListTransactions returns one page of matching transactions and the total match count
func (r *Repository) ListTransactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.AllUsers {
		where = append(where, "user_id = "+arg(f.UserID))
	}
	if f.Type != "" {
		where = append(where, "type = "+arg(f.Type))
	}
	if f.Category != "" {
		where = append(where, "category ILIKE "+arg("%"+likeEscaper.Replace(f.Category)+"%"))
	}
	if f.Search != "" {
		p := arg("%" + likeEscaper.Replace(f.Search) + "%")
		where = append(where, fmt.Sprintf("(description ILIKE %s OR category ILIKE %s)", p, p))
	}
	if f.StartDate != nil {
		where = append(where, "date >= "+arg(*f.StartDate))
	}
	if f.EndDate != nil {
		where = append(where, "date <= "+arg(*f.EndDate))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	column, ok := transactionSortColumns[f.SortField]
	if !ok {
		column = "date"
	}
	direction := "ASC"
	if f.SortDesc {
		direction = "DESC"
	}
	query := fmt.Sprintf(`SELECT %s FROM transactions%s ORDER BY %s %s, id %s`, transactionColumns, clause, column, direction, direction)
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += " LIMIT " + arg(f.Limit) + " OFFSET " + arg((page-1)*f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	txs, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// TransactionsBetween returns the user's transactions in [from, to), oldest first
func (r *Repository) TransactionsBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND date < $%d", len(args))
	}
	query += " ORDER BY date ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	return collectTransactions(rows)
}

// ---------- budgets ----------

const budgetColumns = `id, user_id, category, "limit", spent, created_at, updated_at`

func scanBudget(row interface{ Scan(...any) error }) (*models.Budget, error) {
	b := &models.Budget{}
	err := row.Scan(&b.ID, &b.UserID, &b.Category, &b.Limit, &b.Spent, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// CreateBudget inserts a budget; one budget per user and category
func (r *Repository) CreateBudget(ctx context.Context, budget *models.Budget) error {
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	query := `
		INSERT INTO budgets (id, user_id, category, "limit", spent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, budget.ID, budget.UserID, budget.Category, budget.Limit, budget.Spent).
		Scan(&budget.CreatedAt, &budget.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

// FindBudgetByID retrieves a budget by id
func (r *Repository) FindBudgetByID(ctx context.Context, id uuid.UUID) (*models.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "find budget")
	}
	return b, nil
}

// ListBudgets returns the user's budgets ordered by category
func (r *Repository) ListBudgets(ctx context.Context, userID uuid.UUID) ([]models.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY category`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []models.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

// UpdateBudget saves category and limit; spent is owned by AdjustBudgetSpent
func (r *Repository) UpdateBudget(ctx context.Context, budget *models.Budget) error {
	query := `
		UPDATE budgets SET category = $1, "limit" = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
		RETURNING spent, updated_at`
	err := r.db.QueryRowContext(ctx, query, budget.Category, budget.Limit, budget.ID).Scan(&budget.Spent, &budget.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return notFound(err, "update budget")
	}
	return nil
}

// DeleteBudget removes a budget
func (r *Repository) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	return execOne(res, err, "delete budget")
}

// AdjustBudgetSpent moves spent of the matching budget by delta
func (r *Repository) AdjustBudgetSpent(ctx context.Context, userID uuid.UUID, category string, delta float64) (*models.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, `
		UPDATE budgets SET spent = spent + $1, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $2 AND category = $3
		RETURNING `+budgetColumns, delta, userID, category))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust budget: %w", err)
	}
	return b, nil
}

// ---------- savings ----------

const savingColumns = `id, user_id, type, amount, date, note, created_at`

func scanSaving(row interface{ Scan(...any) error }) (*models.Saving, error) {
	s := &models.Saving{}
	err := row.Scan(&s.ID, &s.UserID, &s.Type, &s.Amount, &s.Date, &s.Note, &s.CreatedAt)
	return s, err
}

// CreateSaving inserts a savings movement
func (r *Repository) CreateSaving(ctx context.Context, saving *models.Saving) error {
	if saving.ID == uuid.Nil {
		saving.ID = uuid.New()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO savings (id, user_id, type, amount, date, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		RETURNING created_at`, saving.ID, saving.UserID, saving.Type, saving.Amount, saving.Date, saving.Note).
		Scan(&saving.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create saving: %w", err)
	}
	return nil
}

// FindSavingByID retrieves a savings movement by id
func (r *Repository) FindSavingByID(ctx context.Context, id uuid.UUID) (*models.Saving, error) {
	s, err := scanSaving(r.db.QueryRowContext(ctx, `SELECT `+savingColumns+` FROM savings WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "find saving")
	}
	return s, nil
}

// ListSavings returns the user's savings movements, newest first
func (r *Repository) ListSavings(ctx context.Context, userID uuid.UUID) ([]models.Saving, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+savingColumns+` FROM savings WHERE user_id = $1 ORDER BY date DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list savings: %w", err)
	}
	defer rows.Close()

	savings := []models.Saving{}
	for rows.Next() {
		s, err := scanSaving(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saving: %w", err)
		}
		savings = append(savings, *s)
	}
	return savings, rows.Err()
}

// UpdateSaving saves date and note of a savings movement
func (r *Repository) UpdateSaving(ctx context.Context, saving *models.Saving) error {
	res, err := r.db.ExecContext(ctx, `UPDATE savings SET date = $1, note = $2 WHERE id = $3`, saving.Date, saving.Note, saving.ID)
	return execOne(res, err, "update saving")
}

// DeleteSaving removes a savings movement
func (r *Repository) DeleteSaving(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM savings WHERE id = $1`, id)
	return execOne(res, err, "delete saving")
}

// ---------- goals ----------

const goalColumns = `id, user_id, name, target_amount, current_amount, deadline, reminder_date, status, created_at, updated_at`

func scanGoal(row interface{ Scan(...any) error }) (*models.Goal, error) {
	g := &models.Goal{}
	var deadline, reminder sql.NullTime
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &deadline, &reminder, &g.Status, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	if deadline.Valid {
		g.Deadline = &deadline.Time
	}
	if reminder.Valid {
		g.ReminderDate = &reminder.Time
	}
	g.Contributions = []models.Contribution{}
	return g, nil
}

// loadContributions fills in the contributions of every goal in one query
func (r *Repository) loadContributions(ctx context.Context, goals []models.Goal) error {
	if len(goals) == 0 {
		return nil
	}
	ids := make([]string, len(goals))
	byID := make(map[uuid.UUID]*models.Goal, len(goals))
	for i := range goals {
		ids[i] = goals[i].ID.String()
		byID[goals[i].ID] = &goals[i]
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT goal_id, amount, date FROM goal_contributions
		WHERE goal_id = ANY($1::uuid[])
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load contributions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			goalID uuid.UUID
			c      models.Contribution
		)
		if err := rows.Scan(&goalID, &c.Amount, &c.Date); err != nil {
			return fmt.Errorf("failed to scan contribution: %w", err)
		}
		if g, ok := byID[goalID]; ok {
			g.Contributions = append(g.Contributions, c)
		}
	}
	return rows.Err()
}

func (r *Repository) queryGoals(ctx context.Context, query string, args ...any) ([]models.Goal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadContributions(ctx, goals); err != nil {
		return nil, err
	}
	return goals, nil
}

// CreateGoal inserts a goal together with any initial contributions
func (r *Repository) CreateGoal(ctx context.Context, goal *models.Goal) error {
	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	if goal.Contributions == nil {
		goal.Contributions = []models.Contribution{}
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	err = dbTx.QueryRowContext(ctx, `
		INSERT INTO goals (id, user_id, name, target_amount, current_amount, deadline, reminder_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`,
		goal.ID, goal.UserID, goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.Deadline, goal.ReminderDate, goal.Status).
		Scan(&goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	if err := insertContributions(ctx, dbTx, goal.ID, goal.Contributions); err != nil {
		return err
	}
	return dbTx.Commit()
}

func insertContributions(ctx context.Context, dbTx *sql.Tx, goalID uuid.UUID, contributions []models.Contribution) error {
	for _, c := range contributions {
		if _, err := dbTx.ExecContext(ctx, `INSERT INTO goal_contributions (goal_id, amount, date) VALUES ($1, $2, $3)`, goalID, c.Amount, c.Date); err != nil {
			return fmt.Errorf("failed to add contribution: %w", err)
		}
	}
	return nil
}

// FindGoalByID retrieves a goal and its contributions
func (r *Repository) FindGoalByID(ctx context.Context, id uuid.UUID) (*models.Goal, error) {
	goals, err := r.queryGoals(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return nil, ErrNotFound
	}
	return &goals[0], nil
}

// ListGoals returns the user's goals, oldest first
func (r *Repository) ListGoals(ctx context.Context, userID uuid.UUID) ([]models.Goal, error) {
	return r.queryGoals(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY created_at, id`, userID)
}

// UpdateGoal saves the goal and appends contributions that are not stored yet
func (r *Repository) UpdateGoal(ctx context.Context, goal *models.Goal) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	err = dbTx.QueryRowContext(ctx, `
		UPDATE goals SET name = $1, target_amount = $2, current_amount = $3, deadline = $4, reminder_date = $5,
			status = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $7
		RETURNING updated_at`,
		goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.Deadline, goal.ReminderDate, goal.Status, goal.ID).
		Scan(&goal.UpdatedAt)
	if err != nil {
		return notFound(err, "update goal")
	}

	var stored int
	if err := dbTx.QueryRowContext(ctx, `SELECT COUNT(*) FROM goal_contributions WHERE goal_id = $1`, goal.ID).Scan(&stored); err != nil {
		return fmt.Errorf("failed to count contributions: %w", err)
	}
	if stored < len(goal.Contributions) {
		if err := insertContributions(ctx, dbTx, goal.ID, goal.Contributions[stored:]); err != nil {
			return err
		}
	}
	return dbTx.Commit()
}

// DeleteGoal removes a goal; contributions cascade
func (r *Repository) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, id)
	return execOne(res, err, "delete goal")
}

// GoalsWithReminderOn returns active goals whose reminder falls on day
func (r *Repository) GoalsWithReminderOn(ctx context.Context, day time.Time) ([]models.Goal, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return r.queryGoals(ctx, `
		SELECT `+goalColumns+` FROM goals
		WHERE status = 'active' AND reminder_date >= $1 AND reminder_date < $2
		ORDER BY created_at, id`, start, start.AddDate(0, 0, 1))
}

// ---------- feature flags ----------

func scanFeatureFlag(row interface{ Scan(...any) error }) (*models.FeatureFlag, error) {
	f := &models.FeatureFlag{}
	err := row.Scan(&f.ID, &f.Name, &f.IsEnabled, &f.UpdatedAt)
	return f, err
}

// ListFeatureFlags returns every flag ordered by name
func (r *Repository) ListFeatureFlags(ctx context.Context) ([]models.FeatureFlag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, is_enabled, updated_at FROM feature_flags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feature flags: %w", err)
	}
	defer rows.Close()

	flags := []models.FeatureFlag{}
	for rows.Next() {
		f, err := scanFeatureFlag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feature flag: %w", err)
		}
		flags = append(flags, *f)
	}
	return flags, rows.Err()
}

// FindFeatureFlagByID retrieves a flag by id
func (r *Repository) FindFeatureFlagByID(ctx context.Context, id uuid.UUID) (*models.FeatureFlag, error) {
	f, err := scanFeatureFlag(r.db.QueryRowContext(ctx, `SELECT id, name, is_enabled, updated_at FROM feature_flags WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "find feature flag")
	}
	return f, nil
}

// FindFeatureFlagByName retrieves a flag by its unique name
func (r *Repository) FindFeatureFlagByName(ctx context.Context, name string) (*models.FeatureFlag, error) {
	f, err := scanFeatureFlag(r.db.QueryRowContext(ctx, `SELECT id, name, is_enabled, updated_at FROM feature_flags WHERE name = $1`, name))
	if err != nil {
		return nil, notFound(err, "find feature flag")
	}
	return f, nil
}

// CreateFeatureFlag inserts a flag
func (r *Repository) CreateFeatureFlag(ctx context.Context, flag *models.FeatureFlag) error {
	if flag.ID == uuid.Nil {
		flag.ID = uuid.New()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO feature_flags (id, name, is_enabled, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING updated_at`, flag.ID, flag.Name, flag.IsEnabled).Scan(&flag.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create feature flag: %w", err)
	}
	return nil
}

// UpdateFeatureFlag saves name and state of a flag
func (r *Repository) UpdateFeatureFlag(ctx context.Context, flag *models.FeatureFlag) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE feature_flags SET name = $1, is_enabled = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
		RETURNING updated_at`, flag.Name, flag.IsEnabled, flag.ID).Scan(&flag.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return notFound(err, "update feature flag")
	}
	return nil
}

// DeleteFeatureFlag removes a flag
func (r *Repository) DeleteFeatureFlag(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feature_flags WHERE id = $1`, id)
	return execOne(res, err, "delete feature flag")
}

// ---------- contacts ----------

// CreateContact stores a contact form submission
func (r *Repository) CreateContact(ctx context.Context, contact *models.Contact) error {
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO contacts (id, name, email, subject, message, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING created_at`, contact.ID, contact.Name, contact.Email, contact.Subject, contact.Message).
		Scan(&contact.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// ListContacts returns contact submissions, newest first
func (r *Repository) ListContacts(ctx context.Context) ([]models.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, email, subject, message, created_at FROM contacts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Subject, &c.Message, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
