package service

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/finaurial/finance-tracker/internal/auth"
	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/finaurial/finance-tracker/internal/notify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageSize = 10
	maxPageSize     = 500
)

// TransactionInput is the body of POST and PUT /api/transactions
type TransactionInput struct {
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

// validate checks the input; dateRequired is false on update, where an
// empty date keeps the stored one
func (in *TransactionInput) validate(dateRequired bool) (*models.Transaction, error) {
	var c checker
	tx := &models.Transaction{
		Type:        models.TransactionType(strings.TrimSpace(in.Type)),
		Category:    strings.TrimSpace(in.Category),
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
	}

	c.require(tx.Type.Valid(), "Type must be income or expense")
	c.require(tx.Category != "", "Please add a category")
	c.require(tx.Amount > 0, "Please enter a valid amount")

	switch {
	case strings.TrimSpace(in.Date) != "":
		date, err := parseDate(in.Date)
		c.require(err == nil, "Please enter a valid date")
		tx.Date = date
	case dateRequired:
		c.require(false, "Please enter a valid date")
	}

	if err := c.err(); err != nil {
		return nil, err
	}
	return tx, nil
}

// CreateTransaction stores a transaction for the caller and reconciles the matching budget
func (s *Service) CreateTransaction(ctx context.Context, caller auth.Identity, in TransactionInput) (*models.Transaction, error) {
	tx, err := in.validate(true)
	if err != nil {
		return nil, err
	}
	tx.UserID = caller.ID

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	if tx.IsExpense() {
		s.adjustBudget(ctx, tx.UserID, tx.Category, tx.Amount)
	}

	s.log.Infof("Transaction created for user %s: %s %.2f (%s)", tx.UserID, tx.Type, tx.Amount, tx.Category)
	return tx, nil
}

// findOwnedTransaction loads a transaction the caller may modify
func (s *Service) findOwnedTransaction(ctx context.Context, caller auth.Identity, id uuid.UUID) (*models.Transaction, error) {
	tx, err := s.repo.FindTransactionByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Transaction")
	}
	if !owns(caller, tx.UserID) && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return tx, nil
}

// UpdateTransaction replaces a transaction. The budget of the old values is
// reversed first and the new values are applied afterwards; the two steps are
// independent, so a failure between them leaves spent out of step.
func (s *Service) UpdateTransaction(ctx context.Context, caller auth.Identity, id uuid.UUID, in TransactionInput) (*models.Transaction, error) {
	tx, err := s.findOwnedTransaction(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	next, err := in.validate(false)
	if err != nil {
		return nil, err
	}

	old := *tx
	tx.Type = next.Type
	tx.Category = next.Category
	tx.Amount = next.Amount
	tx.Description = next.Description
	if !next.Date.IsZero() {
		tx.Date = next.Date
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, notFound(err, "Transaction")
	}

	if old.IsExpense() {
		s.adjustBudget(ctx, old.UserID, old.Category, -old.Amount)
	}
	if tx.IsExpense() {
		s.adjustBudget(ctx, tx.UserID, tx.Category, tx.Amount)
	}

	s.log.Infof("Transaction %s updated by %s", tx.ID, caller.ID)
	return tx, nil
}

// DeleteTransaction removes a transaction and releases its amount from the matching budget
func (s *Service) DeleteTransaction(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	tx, err := s.findOwnedTransaction(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return notFound(err, "Transaction")
	}
	if tx.IsExpense() {
		s.adjustBudget(ctx, tx.UserID, tx.Category, -tx.Amount)
	}

	s.log.Infof("Transaction %s deleted by %s", tx.ID, caller.ID)
	return nil
}

// adjustBudget moves spent on the user's budget for category. Failures are
// logged and do not undo the transaction write. Increases that cross the
// alert thresholds publish a budget alert.
func (s *Service) adjustBudget(ctx context.Context, userID uuid.UUID, category string, delta float64) {
	budget, err := s.repo.AdjustBudgetSpent(ctx, userID, category, delta)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id":  userID,
			"category": category,
			"delta":    delta,
		}).Error("Failed to reconcile budget")
		return
	}
	if budget == nil || delta <= 0 {
		return
	}

	alert := notify.Evaluate(budget, s.now())
	if alert == nil {
		return
	}
	if err := s.alerts.Publish(ctx, *alert); err != nil {
		s.log.WithError(err).Warnf("Failed to publish %s alert for budget %s", alert.Level, budget.ID)
	}
}

// TransactionQuery holds the raw query parameters of GET /api/transactions
type TransactionQuery struct {
	Type      string
	Category  string
	Search    string
	StartDate string
	EndDate   string
	Sort      string
	Page      string
	Limit     string
	All       bool
}

// TransactionPage is one page of a transaction listing
type TransactionPage struct {
	Items []models.Transaction
	Total int
}

func parsePositive(value string, fallback int, name string, c *checker) int {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	c.require(err == nil && n > 0, name+" must be a positive integer")
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (q *TransactionQuery) filter(caller auth.Identity) (models.TransactionFilter, error) {
	var c checker
	f := models.TransactionFilter{
		UserID:    caller.ID,
		AllUsers:  q.All && caller.IsAdmin(),
		Type:      models.TransactionType(q.Type),
		Category:  strings.TrimSpace(q.Category),
		Search:    strings.TrimSpace(q.Search),
		SortField: "date",
		SortDesc:  true,
	}
	c.require(q.Type == "" || f.Type.Valid(), "Type must be income or expense")

	if q.StartDate != "" {
		start, err := parseDate(q.StartDate)
		c.require(err == nil, "Please enter a valid startDate")
		f.StartDate = &start
	}
	if q.EndDate != "" {
		end, err := parseDate(q.EndDate)
		c.require(err == nil, "Please enter a valid endDate")
		if len(strings.TrimSpace(q.EndDate)) == len("2006-01-02") {
			end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.EndDate = &end
	}

	if q.Sort != "" {
		field, direction, _ := strings.Cut(q.Sort, ",")
		switch field {
		case "date", "amount", "category", "type":
			f.SortField = field
		default:
			c.require(false, "Sort field must be one of date, amount, category, type")
		}
		f.SortDesc = strings.EqualFold(direction, "desc")
	}

	f.Page = parsePositive(q.Page, 1, "page", &c)
	f.Limit = parsePositive(q.Limit, defaultPageSize, "limit", &c)
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}

	return f, c.err()
}

// ListTransactions filters, sorts and paginates the caller's transactions.
// Admins passing all=true see every user's transactions.
func (s *Service) ListTransactions(ctx context.Context, caller auth.Identity, q TransactionQuery) (*TransactionPage, error) {
	f, err := q.filter(caller)
	if err != nil {
		return nil, err
	}
	items, total, err := s.repo.ListTransactions(ctx, f)
	if err != nil {
		return nil, err
	}
	return &TransactionPage{Items: items, Total: total}, nil
}

// ExportTransactions returns every transaction of the caller, oldest first
func (s *Service) ExportTransactions(ctx context.Context, caller auth.Identity) ([]models.Transaction, error) {
	txs, err := s.repo.TransactionsBetween(ctx, caller.ID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, &NotFoundError{Message: "No transactions found to export"}
	}
	return txs, nil
}

var sampleCategories = []string{"Salary", "Groceries", "Bills", "Entertainment", "Shopping"}

// SeedSampleTransaction creates one random transaction for the caller
func (s *Service) SeedSampleTransaction(ctx context.Context, caller auth.Identity) (*models.Transaction, error) {
	typ := models.TransactionExpense
	if rand.Intn(2) == 0 {
		typ = models.TransactionIncome
	}
	in := TransactionInput{
		Type:        string(typ),
		Category:    sampleCategories[rand.Intn(len(sampleCategories))],
		Amount:      float64(rand.Intn(281) + 20),
		Date:        s.now().Format(time.RFC3339),
		Description: "Sample seeded transaction",
	}

	return s.CreateTransaction(ctx, caller, in)
}
