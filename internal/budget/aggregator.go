package budget

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_dashboard/customErrors"
)

// AggregateExpenses computes the dashboard figures for userID as of now. All
// reads share one consistent view of the store.
func (bt *BudgetTracker) AggregateExpenses(ctx context.Context, userID string, now time.Time) (ExpenseSummary, error) {
	now = now.UTC()
	var summary ExpenseSummary

	err := bt.storage.ReadDashboard(ctx, func(r DashboardReader) error {
		current, err := resolveCurrentBudget(ctx, r, userID)
		if err != nil {
			return err
		}
		if current.MonthlyIncome < 0 || IsFloatZero(current.MonthlyIncome) {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrInvalidBudget,
				Message: "Budget monthly income must be greater than zero, please update your budget.",
			}
		}

		window, err := r.GetExpensesBetween(ctx, userID, now.Add(-TOP_DAY_WINDOW), now)
		if err != nil {
			return fmt.Errorf("failed to get expenses of the last week: %w", err)
		}

		recent, err := r.GetRecentExpenses(ctx, userID, RECENT_EXPENSES_LIMIT)
		if err != nil {
			return fmt.Errorf("failed to get recent expenses: %w", err)
		}

		totals, err := r.GetCategoryTotals(ctx, userID, current.ID)
		if err != nil {
			return fmt.Errorf("failed to get category totals: %w", err)
		}

		summary = summarize(current, window, recent, totals)
		return nil
	})
	if err != nil {
		return ExpenseSummary{}, err
	}

	return summary, nil
}

func resolveCurrentBudget(ctx context.Context, r DashboardReader, userID string) (Budget, error) {
	current, err := r.GetCurrentBudget(ctx, userID)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrNotFound) {
			return Budget{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrNoBudget,
				Message: "No budget configured, please set up a budget first.",
			}
		}
		return Budget{}, fmt.Errorf("failed to get current budget: %w", err)
	}
	return current, nil
}

// summarize is the arithmetic half of AggregateExpenses. The income must
// already be known to be positive.
func summarize(current Budget, window []Expense, recent []Expense, totals []CategoryAmount) ExpenseSummary {
	breakdown := make([]CategoryAmount, 0, len(totals))
	var total float64
	for _, t := range totals {
		total += t.Amount
		breakdown = append(breakdown, t)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Category < breakdown[j].Category
	})

	recentSorted := append([]Expense(nil), recent...)
	SortRecentExpenses(recentSorted)
	if len(recentSorted) > RECENT_EXPENSES_LIMIT {
		recentSorted = recentSorted[:RECENT_EXPENSES_LIMIT]
	}

	return ExpenseSummary{
		Budget:          current,
		TotalExpenses:   total,
		RemainingBudget: current.MonthlyIncome - total,
		SpentPercentage: (total / current.MonthlyIncome) * 100,
		TopExpenseDay:   TopExpenseDay(window),
		RecentExpenses:  recentSorted,
		Breakdown:       breakdown,
	}
}

// TopExpenseDay groups expenses by UTC calendar date and returns the day with
// the highest total, compared in whole cents. Ties go to the earliest date.
// Nil when there are none.
func TopExpenseDay(expenses []Expense) *DayTotal {
	if len(expenses) == 0 {
		return nil
	}

	sums := make(map[time.Time]float64)
	for _, e := range expenses {
		sums[CalendarDate(e.Date)] += e.Amount
	}

	var top *DayTotal
	for day, sum := range sums {
		sum = roundToCents(sum)
		if top == nil || sum > top.Total || (sum == top.Total && day.Before(top.Date)) {
			top = &DayTotal{Date: day, Total: sum}
		}
	}
	return top
}

func roundToCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

func CalendarDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SortRecentExpenses orders by date descending; equal dates put the later
// inserted expense first, then the smaller ID.
func SortRecentExpenses(expenses []Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		a, b := expenses[i], expenses[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
