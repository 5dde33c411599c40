package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/fatali-fataliyev/budget_dashboard/internal/auth"
)

// GetUserDashboard composes the account and the expense summary for the
// caller. It computes nothing of its own.
func (bt *BudgetTracker) GetUserDashboard(ctx context.Context, identity auth.Identity, now time.Time) (UserDashboard, error) {
	user, err := bt.FindByID(ctx, identity.UserID)
	if err != nil {
		return UserDashboard{}, err
	}

	summary, err := bt.AggregateExpenses(ctx, user.ID, now)
	if err != nil {
		return UserDashboard{}, fmt.Errorf("failed to aggregate expenses: %w", err)
	}

	return assembleDashboard(user, summary), nil
}

func assembleDashboard(user auth.User, summary ExpenseSummary) UserDashboard {
	breakdown := make(map[string]float64, len(summary.Breakdown))
	for _, c := range summary.Breakdown {
		breakdown[c.Category] = c.Amount
	}

	dashboard := UserDashboard{
		UserName:              user.UserName,
		BudgetName:            summary.Budget.Name,
		MonthlyIncome:         summary.Budget.MonthlyIncome,
		RemainingBudget:       summary.RemainingBudget,
		BudgetSpentPercentage: summary.SpentPercentage,
		RecentExpenses:        summary.RecentExpenses,
		ExpenseBreakdown:      breakdown,
		TotalExpenses:         summary.TotalExpenses,
	}

	if summary.TopExpenseDay != nil {
		day := summary.TopExpenseDay.Date.Format(DATE_LAYOUT)
		dashboard.TopExpenseDay = &day
		dashboard.TopExpenseDayTotal = summary.TopExpenseDay.Total
	}

	return dashboard
}
