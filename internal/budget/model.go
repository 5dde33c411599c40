package budget

import (
	"time"
)

// REQUESTS START:
type BudgetRequest struct {
	Name          string
	MonthlyIncome float64
}

type ExpenseRequest struct {
	Amount   float64
	Category string
	Note     string
	Date     time.Time
}

// REQUESTS END:

// MODELS:

type Budget struct {
	ID            string
	UserID        string
	Name          string
	MonthlyIncome float64
	CreatedAt     time.Time
}

type Expense struct {
	ID        string
	UserID    string
	BudgetID  string
	Amount    float64
	Category  string
	Note      string
	Date      time.Time
	CreatedAt time.Time
}

type CategoryAmount struct {
	Category string
	Amount   float64
}

type DayTotal struct {
	Date  time.Time
	Total float64
}

// RESPONSES:

type ExpenseSummary struct {
	Budget          Budget
	TotalExpenses   float64
	RemainingBudget float64
	SpentPercentage float64
	TopExpenseDay   *DayTotal
	RecentExpenses  []Expense
	Breakdown       []CategoryAmount
}

type UserDashboard struct {
	UserName              string
	BudgetName            string
	MonthlyIncome         float64
	RemainingBudget       float64
	BudgetSpentPercentage float64
	TopExpenseDay         *string
	TopExpenseDayTotal    float64
	RecentExpenses        []Expense
	ExpenseBreakdown      map[string]float64
	TotalExpenses         float64
}
