package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType distinguishes money coming in from money going out
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Transaction represents a financial transaction
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Amount      float64         `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// IsExpense reports whether the transaction counts against a budget.
func (t *Transaction) IsExpense() bool {
	return t.Type == TransactionExpense
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	UserID    uuid.UUID // ignored when AllUsers is set
	AllUsers  bool
	Type      TransactionType
	Category  string // case-insensitive substring
	Search    string // matches description or category
	StartDate *time.Time
	EndDate   *time.Time
	SortField string // date, amount, category, type
	SortDesc  bool
	Page      int
	Limit     int
}
