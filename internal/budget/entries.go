package budget

import (
	"context"
	"fmt"
	"strings"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_dashboard/customErrors"
	"github.com/google/uuid"
)

func invalidInput(format string, args ...any) appErrors.ErrorResponse {
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrInvalidInput,
		Message: fmt.Sprintf(format, args...),
	}
}

// SaveBudget creates the user's budget. A user owns at most one; the store
// rejects a second one with a conflict.
func (bt *BudgetTracker) SaveBudget(ctx context.Context, userID string, req BudgetRequest) (Budget, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Budget{}, invalidInput("budget name is empty")
	}
	if len(name) > MAX_BUDGET_NAME_LENGTH {
		return Budget{}, invalidInput("budget name so long, maximum allowed length is: %d", MAX_BUDGET_NAME_LENGTH)
	}
	if req.MonthlyIncome < MIN_MONTHLY_INCOME {
		return Budget{}, invalidInput("monthly income must be at least %.2f", MIN_MONTHLY_INCOME)
	}
	if req.MonthlyIncome > MAX_AMOUNT_LIMIT {
		return Budget{}, invalidInput("monthly income is too large, the limit is: %.2f", MAX_AMOUNT_LIMIT)
	}

	b := Budget{
		ID:            uuid.New().String(),
		UserID:        userID,
		Name:          name,
		MonthlyIncome: req.MonthlyIncome,
		CreatedAt:     bt.Now(),
	}

	if err := bt.storage.SaveBudget(ctx, b); err != nil {
		return Budget{}, fmt.Errorf("failed to save budget: %w", err)
	}
	return b, nil
}

// SaveExpense records an expense against the user's current budget.
func (bt *BudgetTracker) SaveExpense(ctx context.Context, userID string, req ExpenseRequest) (Expense, error) {
	category := strings.TrimSpace(req.Category)
	if req.Amount < 0 {
		return Expense{}, invalidInput("expense amount cannot be negative")
	}
	if req.Amount > MAX_AMOUNT_LIMIT {
		return Expense{}, invalidInput("maximum allowed amount per expense is: %.2f", MAX_AMOUNT_LIMIT)
	}
	if category == "" {
		return Expense{}, invalidInput("expense category is empty")
	}
	if len(category) > MAX_CATEGORY_LENGTH {
		return Expense{}, invalidInput("category name so long, maximum allowed length is: %d", MAX_CATEGORY_LENGTH)
	}
	if len(req.Note) > MAX_EXPENSE_NOTE_LENGTH {
		return Expense{}, invalidInput("note so long, maximum allowed length is: %d", MAX_EXPENSE_NOTE_LENGTH)
	}

	current, err := resolveCurrentBudget(ctx, bt.storage, userID)
	if err != nil {
		return Expense{}, err
	}

	now := bt.Now()
	date := req.Date.UTC().Truncate(time.Microsecond)
	if req.Date.IsZero() {
		date = now
	}

	e := Expense{
		ID:        uuid.New().String(),
		UserID:    userID,
		BudgetID:  current.ID,
		Amount:    req.Amount,
		Category:  category,
		Note:      req.Note,
		Date:      date,
		CreatedAt: now,
	}

	if err := bt.storage.SaveExpense(ctx, e); err != nil {
		return Expense{}, fmt.Errorf("failed to save expense to db: %w", err)
	}
	return e, nil
}
