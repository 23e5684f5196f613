package models

// IncomeExpenseStats represents income and expense totals over a period
type IncomeExpenseStats struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

// MonthlySeries holds parallel per-month sequences over a contiguous month axis.
// All slices have the same length as Labels, oldest month first.
type MonthlySeries struct {
	Labels      []string  `json:"labels"`
	IncomeData  []float64 `json:"incomeData"`
	ExpenseData []float64 `json:"expenseData"`
	NetData     []float64 `json:"netData"`
	Cumulative  []float64 `json:"cumulative"`
}

// CumulativeSeries is a running total over a month axis
type CumulativeSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// CategoryTotal is the expense total of one category
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// CategorySeries is one category's expenses across a month axis
type CategorySeries struct {
	Category string    `json:"category"`
	Values   []float64 `json:"values"`
}

// MonthlyCategoryExpenses is the expense matrix (category x month)
type MonthlyCategoryExpenses struct {
	Labels     []string         `json:"labels"`
	Categories []CategorySeries `json:"categories"`
}

// PeriodBreakdown is the category spending of one month or ISO week
type PeriodBreakdown struct {
	Period     string          `json:"period"`
	Categories []CategoryTotal `json:"categories"`
}

// DashboardSummary is the payload of GET /api/dashboard/summary
type DashboardSummary struct {
	TotalBalance     float64         `json:"totalBalance"`
	TotalIncome      float64         `json:"totalIncome"`
	TotalExpenses    float64         `json:"totalExpenses"`
	TotalSavings     float64         `json:"totalSavings"`
	MonthlySummary   MonthlySeries   `json:"monthlySummary"`
	CategorySpending []CategoryTotal `json:"categorySpending"`
}

// Report is the payload of GET /api/transactions/reports
type Report struct {
	Month             string             `json:"month"`
	Summary           IncomeExpenseStats `json:"summary"`
	SpendingBreakdown []CategoryTotal    `json:"spendingBreakdown"`
	IncomeVsExpense   IncomeExpenseStats `json:"incomeVsExpense"`
	CumulativeSavings CumulativeSeries   `json:"cumulativeSavings"`
	TopCategories     []CategoryTotal    `json:"topCategories"`
}
