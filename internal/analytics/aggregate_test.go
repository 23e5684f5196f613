package analytics

import (
	"testing"
	"time"

	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func tx(typ models.TransactionType, category string, amount float64, date time.Time) models.Transaction {
	return models.Transaction{Type: typ, Category: category, Amount: amount, Date: date}
}

func TestMonthAxis(t *testing.T) {
	axis, err := MonthAxis(day(2024, time.February, 20), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dec 2023", "Jan 2024", "Feb 2024"}, axis.Labels())

	from, to := axis.Window()
	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestMonthAxisRejectsBadLength(t *testing.T) {
	for _, n := range []int{0, -1, MaxMonths + 1} {
		_, err := MonthAxis(time.Now(), n)
		assert.ErrorIs(t, err, ErrInvalidWindow, "months=%d", n)
	}
}

func TestAxisFromRange(t *testing.T) {
	axis, err := AxisFromRange(day(2023, time.November, 30), day(2024, time.January, 2))
	require.NoError(t, err)
	assert.Equal(t, []string{"Nov 2023", "Dec 2023", "Jan 2024"}, axis.Labels())

	_, err = AxisFromRange(day(2024, time.January, 2), day(2023, time.November, 30))
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestMonthlyTotalsScenario(t *testing.T) {
	txs := []models.Transaction{
		tx(models.TransactionIncome, "Salary", 1000, day(2024, time.January, 5)),
		tx(models.TransactionExpense, "Rent", 300, day(2024, time.January, 10)),
		tx(models.TransactionExpense, "Food", 50, day(2024, time.February, 1)),
	}
	axis, err := MonthAxis(day(2024, time.February, 15), 2)
	require.NoError(t, err)

	series := MonthlyTotals(axis, txs)
	assert.Equal(t, []string{"Jan 2024", "Feb 2024"}, series.Labels)
	assert.Equal(t, []float64{1000, 0}, series.IncomeData)
	assert.Equal(t, []float64{300, 50}, series.ExpenseData)
	assert.Equal(t, []float64{700, 650}, series.Cumulative)
}

func TestMonthlyTotalsZeroFillsEmptyWindow(t *testing.T) {
	axis, err := MonthAxis(day(2024, time.June, 1), 6)
	require.NoError(t, err)

	series := MonthlyTotals(axis, nil)
	assert.Len(t, series.Labels, 6)
	assert.Equal(t, make([]float64, 6), series.IncomeData)
	assert.Equal(t, make([]float64, 6), series.ExpenseData)
	assert.Equal(t, make([]float64, 6), series.Cumulative)
}

func TestMonthlyTotalsIgnoresOutOfWindow(t *testing.T) {
	txs := []models.Transaction{
		tx(models.TransactionIncome, "Salary", 500, day(2023, time.December, 31)),
		tx(models.TransactionIncome, "Salary", 200, day(2024, time.March, 1)),
		tx(models.TransactionExpense, "Food", 20, day(2024, time.January, 31)),
	}
	axis, err := MonthAxis(day(2024, time.February, 1), 2)
	require.NoError(t, err)

	series := MonthlyTotals(axis, txs)
	assert.Equal(t, []float64{0, 0}, series.IncomeData)
	assert.Equal(t, []float64{20, 0}, series.ExpenseData)
	assert.Equal(t, []float64{-20, -20}, series.Cumulative)
}

func TestCumulativeIsPrefixSumOfNet(t *testing.T) {
	txs := []models.Transaction{
		tx(models.TransactionIncome, "A", 0.1, day(2024, time.January, 1)),
		tx(models.TransactionIncome, "A", 0.2, day(2024, time.January, 2)),
		tx(models.TransactionExpense, "B", 12.35, day(2024, time.March, 3)),
		tx(models.TransactionIncome, "A", 40, day(2024, time.April, 3)),
	}
	axis, err := MonthAxis(day(2024, time.April, 30), 4)
	require.NoError(t, err)

	series := MonthlyTotals(axis, txs)
	running := 0.0
	for i := range series.NetData {
		running += series.NetData[i]
		assert.InDelta(t, running, series.Cumulative[i], 1e-9)
	}
	assert.Equal(t, 0.3, series.IncomeData[0])
	assert.InDelta(t, 27.95, series.Cumulative[len(series.Cumulative)-1], 1e-9)
}

func TestSavingsTrend(t *testing.T) {
	savings := []models.Saving{
		{Type: models.SavingDeposit, Amount: 100, Date: day(2024, time.January, 3)},
		{Type: models.SavingWithdrawal, Amount: 30, Date: day(2024, time.March, 3)},
		{Type: models.SavingDeposit, Amount: 10, Date: day(2024, time.March, 9)},
	}
	axis, err := MonthAxis(day(2024, time.March, 1), 3)
	require.NoError(t, err)

	trend := SavingsTrend(axis, savings)
	assert.Equal(t, []string{"Jan 2024", "Feb 2024", "Mar 2024"}, trend.Labels)
	assert.Equal(t, []float64{100, 100, 80}, trend.Values)
	assert.Equal(t, 80.0, SavingsBalance(savings))
}

func TestCategoryBreakdownExcludesIncomeAndSorts(t *testing.T) {
	txs := []models.Transaction{
		tx(models.TransactionIncome, "Salary", 5000, day(2024, time.January, 1)),
		tx(models.TransactionExpense, "Food", 20, day(2024, time.January, 2)),
		tx(models.TransactionExpense, "Rent", 900, day(2024, time.January, 3)),
		tx(models.TransactionExpense, "Food", 35.5, day(2024, time.January, 4)),
		tx(models.TransactionExpense, "Bills", 55.5, day(2024, time.January, 5)),
	}

	breakdown := CategoryBreakdown(txs)
	require.Len(t, breakdown, 3)
	assert.Equal(t, "Rent", breakdown[0].Category)
	// Bills and Food tie at 55.5; ties resolve by name
	assert.Equal(t, "Bills", breakdown[1].Category)
	assert.Equal(t, "Food", breakdown[2].Category)

	sum := 0.0
	for _, ct := range breakdown {
		assert.GreaterOrEqual(t, ct.Total, 0.0)
		sum += ct.Total
	}
	assert.InDelta(t, Summarize(txs).Expense, sum, 1e-9)
}

func TestCategoryBreakdownIsDeterministic(t *testing.T) {
	txs := []models.Transaction{
		tx(models.TransactionExpense, "c", 10, day(2024, time.January, 1)),
		tx(models.TransactionExpense, "a", 10, day(2024, time.January, 1)),
		tx(models.TransactionExpense, "b", 10, day(2024, time.January, 1)),
	}
	first := CategoryBreakdown(txs)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, CategoryBreakdown(txs))
	}
}

func TestTopCategories(t *testing.T) {
	txs := []models.Transaction{
		tx(models.TransactionExpense, "Food", 10, day(2024, time.January, 1)),
		tx(models.TransactionExpense, "Rent", 800, day(2024, time.January, 2)),
		tx(models.TransactionExpense, "Fun", 40, day(2024, time.January, 3)),
		tx(models.TransactionExpense, "Travel", 30, day(2024, time.January, 4)),
		tx(models.TransactionExpense, "Travel", 9000, day(2024, time.February, 4)),
	}

	top := TopCategories(txs, Month{Year: 2024, Month: time.January}, 3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"Rent", "Fun", "Travel"}, []string{top[0].Category, top[1].Category, top[2].Category})
	assert.Equal(t, 30.0, top[2].Total)

	assert.Empty(t, TopCategories(txs, Month{Year: 2023, Month: time.January}, 3))
}

func TestMonthlyCategoryExpenses(t *testing.T) {
	txs := []models.Transaction{
		tx(models.TransactionExpense, "Food", 10, day(2024, time.January, 1)),
		tx(models.TransactionExpense, "Food", 15, day(2024, time.March, 1)),
		tx(models.TransactionExpense, "Rent", 500, day(2024, time.February, 1)),
		tx(models.TransactionIncome, "Salary", 1000, day(2024, time.February, 1)),
	}
	axis, err := MonthAxis(day(2024, time.March, 1), 3)
	require.NoError(t, err)

	m := MonthlyCategoryExpenses(axis, txs)
	assert.Equal(t, []string{"Jan 2024", "Feb 2024", "Mar 2024"}, m.Labels)
	require.Len(t, m.Categories, 2)
	assert.Equal(t, models.CategorySeries{Category: "Rent", Values: []float64{0, 500, 0}}, m.Categories[0])
	assert.Equal(t, models.CategorySeries{Category: "Food", Values: []float64{10, 0, 15}}, m.Categories[1])
}

func TestPeriodBreakdownMonthlyKeepsEmptyMonths(t *testing.T) {
	txs := []models.Transaction{
		tx(models.TransactionExpense, "Food", 10, day(2024, time.January, 1)),
	}
	axis, err := MonthAxis(day(2024, time.February, 1), 2)
	require.NoError(t, err)

	out := PeriodBreakdown(axis, PeriodMonthly, txs)
	require.Len(t, out, 2)
	assert.Equal(t, "2024-01", out[0].Period)
	assert.Equal(t, []models.CategoryTotal{{Category: "Food", Total: 10}}, out[0].Categories)
	assert.Equal(t, "2024-02", out[1].Period)
	assert.Empty(t, out[1].Categories)
}

func TestPeriodBreakdownWeekly(t *testing.T) {
	txs := []models.Transaction{
		tx(models.TransactionExpense, "Food", 10, day(2024, time.January, 10)),
		tx(models.TransactionExpense, "Food", 5, day(2024, time.January, 2)),
		tx(models.TransactionExpense, "Fun", 7, day(2024, time.January, 3)),
	}
	axis, err := MonthAxis(day(2024, time.January, 31), 1)
	require.NoError(t, err)

	out := PeriodBreakdown(axis, PeriodWeekly, txs)
	require.Len(t, out, 2)
	assert.Equal(t, "2024-W01", out[0].Period)
	assert.Equal(t, "Fun", out[0].Categories[0].Category)
	assert.Equal(t, "2024-W02", out[1].Period)

	_, err = ParsePeriod("yearly")
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestLastCalendarMonth(t *testing.T) {
	assert.Equal(t, Month{Year: 2023, Month: time.December}, LastCalendarMonth(day(2024, time.January, 15)))
	m, err := ParseMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, "Feb 2024", m.Label())
	_, err = ParseMonth("02/2024")
	assert.Error(t, err)
}
