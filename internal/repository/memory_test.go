package repository

import (
	"context"
	"testing"
	"time"

	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MemoryRepositoryTestSuite exercises the in-memory store
type MemoryRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	repo *MemoryRepository
	user *models.User
}

func (suite *MemoryRepositoryTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.repo = NewMemoryRepository()
	suite.user = &models.User{Username: "alice", Email: "alice@example.com", Role: models.RoleUser}
	require.NoError(suite.T(), suite.repo.CreateUser(suite.ctx, suite.user))
}

func (suite *MemoryRepositoryTestSuite) addTx(typ models.TransactionType, category string, amount float64, date time.Time, desc string) *models.Transaction {
	tx := &models.Transaction{UserID: suite.user.ID, Type: typ, Category: category, Amount: amount, Date: date, Description: desc}
	require.NoError(suite.T(), suite.repo.CreateTransaction(suite.ctx, tx))
	return tx
}

func (suite *MemoryRepositoryTestSuite) TestDuplicateUser() {
	err := suite.repo.CreateUser(suite.ctx, &models.User{Username: "other", Email: "ALICE@example.com"})
	assert.ErrorIs(suite.T(), err, ErrDuplicate)

	err = suite.repo.CreateUser(suite.ctx, &models.User{Username: "Alice", Email: "new@example.com"})
	assert.ErrorIs(suite.T(), err, ErrDuplicate)

	found, err := suite.repo.FindUserByEmail(suite.ctx, "Alice@Example.com")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user.ID, found.ID)
}

func (suite *MemoryRepositoryTestSuite) TestAdjustUserSavingsRefusesNegative() {
	balance, err := suite.repo.AdjustUserSavings(suite.ctx, suite.user.ID, 100)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 100.0, balance)

	_, err = suite.repo.AdjustUserSavings(suite.ctx, suite.user.ID, -150)
	assert.ErrorIs(suite.T(), err, ErrInsufficientSavings)

	u, err := suite.repo.FindUserByID(suite.ctx, suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 100.0, u.Savings)

	_, err = suite.repo.AdjustUserSavings(suite.ctx, uuid.New(), 1)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *MemoryRepositoryTestSuite) TestListTransactionsFilterSortPage() {
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	suite.addTx(models.TransactionExpense, "Groceries", 40, base.AddDate(0, 0, 1), "weekly shop")
	suite.addTx(models.TransactionExpense, "Rent", 900, base.AddDate(0, 0, 2), "")
	suite.addTx(models.TransactionIncome, "Salary", 3000, base.AddDate(0, 0, 3), "january pay")
	suite.addTx(models.TransactionExpense, "groceries", 15, base.AddDate(0, 0, 4), "snacks")

	other := &models.User{Username: "bob", Email: "bob@example.com"}
	require.NoError(suite.T(), suite.repo.CreateUser(suite.ctx, other))
	require.NoError(suite.T(), suite.repo.CreateTransaction(suite.ctx, &models.Transaction{
		UserID: other.ID, Type: models.TransactionExpense, Category: "Groceries", Amount: 1, Date: base,
	}))

	txs, total, err := suite.repo.ListTransactions(suite.ctx, models.TransactionFilter{UserID: suite.user.ID, Category: "grocer"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, total)
	assert.Len(suite.T(), txs, 2)

	txs, _, err = suite.repo.ListTransactions(suite.ctx, models.TransactionFilter{UserID: suite.user.ID, Search: "PAY"})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), txs, 1)
	assert.Equal(suite.T(), "Salary", txs[0].Category)

	txs, total, err = suite.repo.ListTransactions(suite.ctx, models.TransactionFilter{
		UserID: suite.user.ID, SortField: "amount", SortDesc: true, Page: 2, Limit: 2,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 4, total)
	require.Len(suite.T(), txs, 2)
	assert.Equal(suite.T(), 40.0, txs[0].Amount)
	assert.Equal(suite.T(), 15.0, txs[1].Amount)

	start := base.AddDate(0, 0, 2)
	txs, total, err = suite.repo.ListTransactions(suite.ctx, models.TransactionFilter{
		UserID: suite.user.ID, Type: models.TransactionExpense, StartDate: &start,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, total)
	assert.Equal(suite.T(), "Rent", txs[0].Category)

	_, total, err = suite.repo.ListTransactions(suite.ctx, models.TransactionFilter{AllUsers: true})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 5, total)
}

func (suite *MemoryRepositoryTestSuite) TestTransactionsBetweenIsHalfOpen() {
	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	suite.addTx(models.TransactionIncome, "Salary", 1, jan, "")
	suite.addTx(models.TransactionIncome, "Salary", 2, jan.AddDate(0, 1, 0), "")

	txs, err := suite.repo.TransactionsBetween(suite.ctx, suite.user.ID, jan, jan.AddDate(0, 1, 0))
	require.NoError(suite.T(), err)
	require.Len(suite.T(), txs, 1)
	assert.Equal(suite.T(), 1.0, txs[0].Amount)

	txs, err = suite.repo.TransactionsBetween(suite.ctx, suite.user.ID, time.Time{}, time.Time{})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), txs, 2)
}

func (suite *MemoryRepositoryTestSuite) TestBudgetUniquenessAndSpent() {
	budget := &models.Budget{UserID: suite.user.ID, Category: "Food", Limit: 200}
	require.NoError(suite.T(), suite.repo.CreateBudget(suite.ctx, budget))
	assert.ErrorIs(suite.T(), suite.repo.CreateBudget(suite.ctx, &models.Budget{UserID: suite.user.ID, Category: "Food", Limit: 10}), ErrDuplicate)

	b, err := suite.repo.AdjustBudgetSpent(suite.ctx, suite.user.ID, "Food", 50)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), b)
	assert.Equal(suite.T(), 50.0, b.Spent)

	b, err = suite.repo.AdjustBudgetSpent(suite.ctx, suite.user.ID, "Travel", 50)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), b)

	budget.Limit = 300
	budget.Spent = 0
	require.NoError(suite.T(), suite.repo.UpdateBudget(suite.ctx, budget))
	assert.Equal(suite.T(), 50.0, budget.Spent, "update keeps the reconciled spent value")
}

func (suite *MemoryRepositoryTestSuite) TestGoalContributionsAreCopied() {
	goal := &models.Goal{UserID: suite.user.ID, Name: "Bike", TargetAmount: 100, Status: models.GoalActive}
	require.NoError(suite.T(), suite.repo.CreateGoal(suite.ctx, goal))

	goal.Contribute(30, time.Now())
	require.NoError(suite.T(), suite.repo.UpdateGoal(suite.ctx, goal))

	found, err := suite.repo.FindGoalByID(suite.ctx, goal.ID)
	require.NoError(suite.T(), err)
	found.Contributions[0].Amount = 999

	again, err := suite.repo.FindGoalByID(suite.ctx, goal.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 30.0, again.Contributions[0].Amount)
}

func (suite *MemoryRepositoryTestSuite) TestGoalsWithReminderOn() {
	today := time.Date(2024, time.May, 10, 15, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	due := &models.Goal{UserID: suite.user.ID, Name: "Due", TargetAmount: 10, Status: models.GoalActive, ReminderDate: &today}
	later := &models.Goal{UserID: suite.user.ID, Name: "Later", TargetAmount: 10, Status: models.GoalActive, ReminderDate: &tomorrow}
	done := &models.Goal{UserID: suite.user.ID, Name: "Done", TargetAmount: 10, Status: models.GoalCompleted, ReminderDate: &today}
	for _, g := range []*models.Goal{due, later, done} {
		require.NoError(suite.T(), suite.repo.CreateGoal(suite.ctx, g))
	}

	goals, err := suite.repo.GoalsWithReminderOn(suite.ctx, today)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), goals, 1)
	assert.Equal(suite.T(), "Due", goals[0].Name)
}

func (suite *MemoryRepositoryTestSuite) TestFeatureFlagNamesAreUnique() {
	require.NoError(suite.T(), suite.repo.CreateFeatureFlag(suite.ctx, &models.FeatureFlag{Name: "Goals", IsEnabled: true}))
	assert.ErrorIs(suite.T(), suite.repo.CreateFeatureFlag(suite.ctx, &models.FeatureFlag{Name: "Goals"}), ErrDuplicate)

	flag, err := suite.repo.FindFeatureFlagByName(suite.ctx, "Goals")
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.repo.DeleteFeatureFlag(suite.ctx, flag.ID))
	assert.ErrorIs(suite.T(), suite.repo.DeleteFeatureFlag(suite.ctx, flag.ID), ErrNotFound)
}

func TestMemoryRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(MemoryRepositoryTestSuite))
}
