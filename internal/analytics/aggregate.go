package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
)

func toFloats(values []decimal.Decimal) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.InexactFloat64()
	}
	return out
}

func zeros(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}

// prefixSums returns running totals; out[i] = out[i-1] + net[i] with out[-1] = 0.
func prefixSums(net []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(net))
	running := decimal.Zero
	for i, v := range net {
		running = running.Add(v)
		out[i] = running
	}
	return out
}

// MonthlyTotals projects transactions onto the axis. Transactions outside the
// axis are ignored; months without transactions stay at zero.
func MonthlyTotals(axis Axis, txs []models.Transaction) models.MonthlySeries {
	idx := axis.index()
	income := zeros(len(axis))
	expense := zeros(len(axis))

	for i := range txs {
		slot, ok := idx[MonthOf(txs[i].Date)]
		if !ok {
			continue
		}
		amount := decimal.NewFromFloat(txs[i].Amount)
		switch txs[i].Type {
		case models.TransactionIncome:
			income[slot] = income[slot].Add(amount)
		case models.TransactionExpense:
			expense[slot] = expense[slot].Add(amount)
		}
	}

	net := make([]decimal.Decimal, len(axis))
	for i := range axis {
		net[i] = income[i].Sub(expense[i])
	}

	return models.MonthlySeries{
		Labels:      axis.Labels(),
		IncomeData:  toFloats(income),
		ExpenseData: toFloats(expense),
		NetData:     toFloats(net),
		Cumulative:  toFloats(prefixSums(net)),
	}
}

// TransactionTrend is the running income-minus-expense total over the axis.
func TransactionTrend(axis Axis, txs []models.Transaction) models.CumulativeSeries {
	series := MonthlyTotals(axis, txs)
	return models.CumulativeSeries{Labels: series.Labels, Values: series.Cumulative}
}

// SavingsTrend is the running deposit-minus-withdrawal total over the axis.
func SavingsTrend(axis Axis, savings []models.Saving) models.CumulativeSeries {
	idx := axis.index()
	net := zeros(len(axis))
	for i := range savings {
		slot, ok := idx[MonthOf(savings[i].Date)]
		if !ok {
			continue
		}
		net[slot] = net[slot].Add(decimal.NewFromFloat(savings[i].Delta()))
	}
	return models.CumulativeSeries{
		Labels: axis.Labels(),
		Values: toFloats(prefixSums(net)),
	}
}

// SavingsBalance sums deposits minus withdrawals over the whole history.
func SavingsBalance(savings []models.Saving) float64 {
	total := decimal.Zero
	for i := range savings {
		total = total.Add(decimal.NewFromFloat(savings[i].Delta()))
	}
	return total.InexactFloat64()
}

// Summarize totals income and expense.
func Summarize(txs []models.Transaction) models.IncomeExpenseStats {
	income, expense := decimal.Zero, decimal.Zero
	for i := range txs {
		amount := decimal.NewFromFloat(txs[i].Amount)
		switch txs[i].Type {
		case models.TransactionIncome:
			income = income.Add(amount)
		case models.TransactionExpense:
			expense = expense.Add(amount)
		}
	}
	return models.IncomeExpenseStats{
		Income:  income.InexactFloat64(),
		Expense: expense.InexactFloat64(),
		Net:     income.Sub(expense).InexactFloat64(),
	}
}

// CategoryBreakdown totals expenses per category, largest first. Income is
// excluded. Equal totals are ordered by category name.
func CategoryBreakdown(txs []models.Transaction) []models.CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	for i := range txs {
		if !txs[i].IsExpense() {
			continue
		}
		totals[txs[i].Category] = totals[txs[i].Category].Add(decimal.NewFromFloat(txs[i].Amount))
	}
	return sortedTotals(totals)
}

func sortedTotals(totals map[string]decimal.Decimal) []models.CategoryTotal {
	type entry struct {
		category string
		total    decimal.Decimal
	}
	entries := make([]entry, 0, len(totals))
	for c, t := range totals {
		entries = append(entries, entry{c, t})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if cmp := entries[i].total.Cmp(entries[j].total); cmp != 0 {
			return cmp > 0
		}
		return entries[i].category < entries[j].category
	})

	out := make([]models.CategoryTotal, len(entries))
	for i, e := range entries {
		out[i] = models.CategoryTotal{Category: e.category, Total: e.total.InexactFloat64()}
	}
	return out
}

// TopCategories returns at most n categories with the largest expense total in month.
func TopCategories(txs []models.Transaction, month Month, n int) []models.CategoryTotal {
	inMonth := make([]models.Transaction, 0, len(txs))
	for i := range txs {
		if MonthOf(txs[i].Date) == month {
			inMonth = append(inMonth, txs[i])
		}
	}
	breakdown := CategoryBreakdown(inMonth)
	if n >= 0 && len(breakdown) > n {
		breakdown = breakdown[:n]
	}
	return breakdown
}

// MonthlyCategoryExpenses lays out every expense category across the axis.
// Categories are ordered by their total over the axis, largest first.
func MonthlyCategoryExpenses(axis Axis, txs []models.Transaction) models.MonthlyCategoryExpenses {
	idx := axis.index()
	rows := make(map[string][]decimal.Decimal)
	totals := make(map[string]decimal.Decimal)

	for i := range txs {
		if !txs[i].IsExpense() {
			continue
		}
		slot, ok := idx[MonthOf(txs[i].Date)]
		if !ok {
			continue
		}
		row, ok := rows[txs[i].Category]
		if !ok {
			row = zeros(len(axis))
			rows[txs[i].Category] = row
		}
		amount := decimal.NewFromFloat(txs[i].Amount)
		row[slot] = row[slot].Add(amount)
		totals[txs[i].Category] = totals[txs[i].Category].Add(amount)
	}

	order := sortedTotals(totals)
	categories := make([]models.CategorySeries, len(order))
	for i, ct := range order {
		categories[i] = models.CategorySeries{Category: ct.Category, Values: toFloats(rows[ct.Category])}
	}
	return models.MonthlyCategoryExpenses{Labels: axis.Labels(), Categories: categories}
}

// Period selects the bucket size of a spending breakdown.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodWeekly  Period = "weekly"
)

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodMonthly, PeriodWeekly:
		return Period(s), nil
	}
	return "", fmt.Errorf("%w: period must be %q or %q", ErrInvalidWindow, PeriodMonthly, PeriodWeekly)
}

// PeriodBreakdown groups expenses by period and category. Monthly buckets
// follow the axis and include empty months; weekly buckets are ISO weeks with
// at least one expense inside the axis window, oldest first.
func PeriodBreakdown(axis Axis, period Period, txs []models.Transaction) []models.PeriodBreakdown {
	from, to := axis.Window()
	buckets := make(map[string]map[string]decimal.Decimal)
	var keys []string

	bucketKey := func(t time.Time) string {
		if period == PeriodWeekly {
			y, w := t.UTC().ISOWeek()
			return fmt.Sprintf("%04d-W%02d", y, w)
		}
		return MonthOf(t).Key()
	}

	if period == PeriodMonthly {
		for _, m := range axis {
			keys = append(keys, m.Key())
			buckets[m.Key()] = make(map[string]decimal.Decimal)
		}
	}

	for i := range txs {
		tx := &txs[i]
		if !tx.IsExpense() || tx.Date.Before(from) || !tx.Date.Before(to) {
			continue
		}
		key := bucketKey(tx.Date)
		bucket, ok := buckets[key]
		if !ok {
			bucket = make(map[string]decimal.Decimal)
			buckets[key] = bucket
			keys = append(keys, key)
		}
		bucket[tx.Category] = bucket[tx.Category].Add(decimal.NewFromFloat(tx.Amount))
	}

	if period == PeriodWeekly {
		sort.Strings(keys)
	}

	out := make([]models.PeriodBreakdown, len(keys))
	for i, key := range keys {
		out[i] = models.PeriodBreakdown{Period: key, Categories: sortedTotals(buckets[key])}
	}
	return out
}
