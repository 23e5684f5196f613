package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/finaurial/finance-tracker/internal/analytics"
	"github.com/finaurial/finance-tracker/internal/auth"
	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/google/uuid"
)

const (
	reportTrendMonths   = 6
	reportTopCategories = 3
)

// CumulativeSource selects which records feed a cumulative savings series
type CumulativeSource string

const (
	SourceTransactions CumulativeSource = "transactions"
	SourceSavings      CumulativeSource = "savings"
)

// WindowQuery describes an aggregation window: either N trailing months
// ending at End (YYYY-MM, default current month) or an explicit date range.
type WindowQuery struct {
	Months    string
	End       string
	StartDate string
	EndDate   string
}

// axis builds the month axis for the query before any data is read
func (q WindowQuery) axis(now time.Time) (analytics.Axis, error) {
	if q.StartDate != "" || q.EndDate != "" {
		if q.StartDate == "" || q.EndDate == "" {
			return nil, invalid("startDate and endDate must be given together")
		}
		start, err := parseDate(q.StartDate)
		if err != nil {
			return nil, invalid("Please enter a valid startDate")
		}
		end, err := parseDate(q.EndDate)
		if err != nil {
			return nil, invalid("Please enter a valid endDate")
		}
		axis, err := analytics.AxisFromRange(start, end)
		if err != nil {
			return nil, invalid(err.Error())
		}
		return axis, nil
	}

	months := analytics.DefaultMonths
	if strings.TrimSpace(q.Months) != "" {
		n, err := strconv.Atoi(q.Months)
		if err != nil {
			return nil, invalid("months must be a positive integer")
		}
		months = n
	}

	anchor := now
	if q.End != "" {
		m, err := analytics.ParseMonth(q.End)
		if err != nil {
			return nil, invalid("end must be formatted as YYYY-MM")
		}
		anchor = m.Start()
	}

	axis, err := analytics.MonthAxis(anchor, months)
	if errors.Is(err, analytics.ErrInvalidWindow) {
		return nil, invalid(err.Error())
	}
	return axis, err
}

func checkCaller(caller auth.Identity) error {
	if caller.ID == uuid.Nil {
		return invalid("Invalid user ID")
	}
	return nil
}

// windowTransactions resolves the axis and loads the caller's transactions inside it
func (s *Service) windowTransactions(ctx context.Context, caller auth.Identity, q WindowQuery) (analytics.Axis, []models.Transaction, error) {
	if err := checkCaller(caller); err != nil {
		return nil, nil, err
	}
	axis, err := q.axis(s.now())
	if err != nil {
		return nil, nil, err
	}
	from, to := axis.Window()
	txs, err := s.repo.TransactionsBetween(ctx, caller.ID, from, to)
	if err != nil {
		return nil, nil, err
	}
	return axis, txs, nil
}

func (s *Service) allTransactions(ctx context.Context, caller auth.Identity) ([]models.Transaction, error) {
	if err := checkCaller(caller); err != nil {
		return nil, err
	}
	return s.repo.TransactionsBetween(ctx, caller.ID, time.Time{}, time.Time{})
}

// TransactionSummary totals the caller's income and expense over all time
func (s *Service) TransactionSummary(ctx context.Context, caller auth.Identity) (models.IncomeExpenseStats, error) {
	txs, err := s.allTransactions(ctx, caller)
	if err != nil {
		return models.IncomeExpenseStats{}, err
	}
	return analytics.Summarize(txs), nil
}

// MonthlySummary returns income and expense per month over the window
func (s *Service) MonthlySummary(ctx context.Context, caller auth.Identity, q WindowQuery) (models.MonthlySeries, error) {
	axis, txs, err := s.windowTransactions(ctx, caller, q)
	if err != nil {
		return models.MonthlySeries{}, err
	}
	return analytics.MonthlyTotals(axis, txs), nil
}

// Report assembles the reports page: last calendar month summary and
// breakdown, the six-month cumulative trend and the top three categories
func (s *Service) Report(ctx context.Context, caller auth.Identity) (*models.Report, error) {
	if err := checkCaller(caller); err != nil {
		return nil, err
	}
	now := s.now()
	lastMonth := analytics.LastCalendarMonth(now)

	trendAxis, err := analytics.MonthAxis(now, reportTrendMonths)
	if err != nil {
		return nil, err
	}
	from, to := trendAxis.Window()
	if lastMonth.Start().Before(from) {
		from = lastMonth.Start()
	}
	txs, err := s.repo.TransactionsBetween(ctx, caller.ID, from, to)
	if err != nil {
		return nil, err
	}

	var inLastMonth []models.Transaction
	for i := range txs {
		if analytics.MonthOf(txs[i].Date) == lastMonth {
			inLastMonth = append(inLastMonth, txs[i])
		}
	}
	summary := analytics.Summarize(inLastMonth)

	return &models.Report{
		Month:             lastMonth.Label(),
		Summary:           summary,
		SpendingBreakdown: analytics.CategoryBreakdown(inLastMonth),
		IncomeVsExpense:   summary,
		CumulativeSavings: analytics.TransactionTrend(trendAxis, txs),
		TopCategories:     analytics.TopCategories(txs, lastMonth, reportTopCategories),
	}, nil
}

// SpendingBreakdown groups expenses by month or ISO week and category
func (s *Service) SpendingBreakdown(ctx context.Context, caller auth.Identity, period string, q WindowQuery) ([]models.PeriodBreakdown, error) {
	p, err := analytics.ParsePeriod(period)
	if err != nil {
		return nil, invalid(`Invalid period specified. Use "monthly" or "weekly".`)
	}
	axis, txs, err := s.windowTransactions(ctx, caller, q)
	if err != nil {
		return nil, err
	}
	return analytics.PeriodBreakdown(axis, p, txs), nil
}

// CategorySpending totals the caller's expenses per category over all time
func (s *Service) CategorySpending(ctx context.Context, caller auth.Identity) ([]models.CategoryTotal, error) {
	txs, err := s.allTransactions(ctx, caller)
	if err != nil {
		return nil, err
	}
	return analytics.CategoryBreakdown(txs), nil
}

// DashboardSummary returns all-time totals, the savings ledger balance, a
// twelve month income/expense series and the category breakdown
func (s *Service) DashboardSummary(ctx context.Context, caller auth.Identity) (*models.DashboardSummary, error) {
	txs, err := s.allTransactions(ctx, caller)
	if err != nil {
		return nil, err
	}
	savings, err := s.repo.ListSavings(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	axis, err := analytics.MonthAxis(s.now(), analytics.DefaultMonths)
	if err != nil {
		return nil, err
	}

	totals := analytics.Summarize(txs)
	return &models.DashboardSummary{
		TotalBalance:     totals.Net,
		TotalIncome:      totals.Income,
		TotalExpenses:    totals.Expense,
		TotalSavings:     analytics.SavingsBalance(savings),
		MonthlySummary:   analytics.MonthlyTotals(axis, txs),
		CategorySpending: analytics.CategoryBreakdown(txs),
	}, nil
}

// CumulativeSavings returns the running net total over the window, built
// from income minus expense or from deposits minus withdrawals
func (s *Service) CumulativeSavings(ctx context.Context, caller auth.Identity, source string, q WindowQuery) (models.CumulativeSeries, error) {
	switch CumulativeSource(source) {
	case "", SourceTransactions:
		axis, txs, err := s.windowTransactions(ctx, caller, q)
		if err != nil {
			return models.CumulativeSeries{}, err
		}
		return analytics.TransactionTrend(axis, txs), nil

	case SourceSavings:
		if err := checkCaller(caller); err != nil {
			return models.CumulativeSeries{}, err
		}
		axis, err := q.axis(s.now())
		if err != nil {
			return models.CumulativeSeries{}, err
		}
		savings, err := s.repo.ListSavings(ctx, caller.ID)
		if err != nil {
			return models.CumulativeSeries{}, err
		}
		return analytics.SavingsTrend(axis, savings), nil
	}
	return models.CumulativeSeries{}, invalid("source must be transactions or savings")
}

// MonthlyCategoryExpenses lays out expense categories across the window
func (s *Service) MonthlyCategoryExpenses(ctx context.Context, caller auth.Identity, q WindowQuery) (models.MonthlyCategoryExpenses, error) {
	axis, txs, err := s.windowTransactions(ctx, caller, q)
	if err != nil {
		return models.MonthlyCategoryExpenses{}, err
	}
	return analytics.MonthlyCategoryExpenses(axis, txs), nil
}
