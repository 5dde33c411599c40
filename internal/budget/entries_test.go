package budget

import (
	"context"
	"strings"
	"testing"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_dashboard/customErrors"
	"github.com/stretchr/testify/require"
)

func TestSaveBudget(t *testing.T) {
	tests := []struct {
		name     string
		input    BudgetRequest
		wantCode string
	}{
		{name: "Success - valid budget", input: BudgetRequest{Name: " Household ", MonthlyIncome: 3200.50}},
		{name: "Fail - empty name", input: BudgetRequest{Name: "  ", MonthlyIncome: 100}, wantCode: appErrors.ErrInvalidInput},
		{name: "Fail - long name", input: BudgetRequest{Name: strings.Repeat("n", MAX_BUDGET_NAME_LENGTH+1), MonthlyIncome: 100}, wantCode: appErrors.ErrInvalidInput},
		{name: "Fail - zero income", input: BudgetRequest{Name: "Household", MonthlyIncome: 0}, wantCode: appErrors.ErrInvalidInput},
		{name: "Fail - negative income", input: BudgetRequest{Name: "Household", MonthlyIncome: -10}, wantCode: appErrors.ErrInvalidInput},
		{name: "Fail - income below one cent", input: BudgetRequest{Name: "Household", MonthlyIncome: 0.004}, wantCode: appErrors.ErrInvalidInput},
		{name: "Success - income of one cent", input: BudgetRequest{Name: "Household", MonthlyIncome: 0.01}},
		{name: "Fail - income over limit", input: BudgetRequest{Name: "Household", MonthlyIncome: MAX_AMOUNT_LIMIT * 2}, wantCode: appErrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bt, store := newTestTracker(t)

			b, err := bt.SaveBudget(context.Background(), "user-1", tt.input)
			if tt.wantCode != "" {
				require.Error(t, err)
				require.Equal(t, tt.wantCode, appErrors.CodeOf(err))
				require.Empty(t, store.budgets)
				return
			}

			require.NoError(t, err)
			require.Equal(t, "Household", b.Name)
			require.Equal(t, "user-1", b.UserID)
			require.Equal(t, testNow, b.CreatedAt)
			require.Equal(t, b, store.budgets["user-1"])
		})
	}
}

func TestSaveBudgetSecondIsConflict(t *testing.T) {
	bt, _ := newTestTracker(t)
	ctx := context.Background()

	_, err := bt.SaveBudget(ctx, "user-1", BudgetRequest{Name: "First", MonthlyIncome: 100})
	require.NoError(t, err)

	_, err = bt.SaveBudget(ctx, "user-1", BudgetRequest{Name: "Second", MonthlyIncome: 200})
	require.Equal(t, appErrors.ErrConflict, appErrors.CodeOf(err))
}

func TestSaveExpense(t *testing.T) {
	spentAt := time.Date(2024, 3, 9, 20, 0, 0, 0, time.FixedZone("UTC+2", 2*3600))

	tests := []struct {
		name     string
		input    ExpenseRequest
		wantCode string
		wantDate time.Time
	}{
		{name: "Success - dated expense", input: ExpenseRequest{Amount: 12.5, Category: " food ", Note: "lunch", Date: spentAt}, wantDate: spentAt.UTC()},
		{name: "Success - undated expense uses now", input: ExpenseRequest{Amount: 0, Category: "food"}, wantDate: testNow},
		{name: "Fail - negative amount", input: ExpenseRequest{Amount: -1, Category: "food"}, wantCode: appErrors.ErrInvalidInput},
		{name: "Fail - amount over limit", input: ExpenseRequest{Amount: MAX_AMOUNT_LIMIT * 2, Category: "food"}, wantCode: appErrors.ErrInvalidInput},
		{name: "Fail - empty category", input: ExpenseRequest{Amount: 1, Category: " "}, wantCode: appErrors.ErrInvalidInput},
		{name: "Fail - long category", input: ExpenseRequest{Amount: 1, Category: strings.Repeat("c", MAX_CATEGORY_LENGTH+1)}, wantCode: appErrors.ErrInvalidInput},
		{name: "Fail - long note", input: ExpenseRequest{Amount: 1, Category: "food", Note: strings.Repeat("n", MAX_EXPENSE_NOTE_LENGTH+1)}, wantCode: appErrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bt, store := newTestTracker(t)
			b := seedBudget(t, store, "user-1", 1000)

			e, err := bt.SaveExpense(context.Background(), "user-1", tt.input)
			if tt.wantCode != "" {
				require.Error(t, err)
				require.Equal(t, tt.wantCode, appErrors.CodeOf(err))
				require.Empty(t, store.expenses)
				return
			}

			require.NoError(t, err)
			require.Equal(t, b.ID, e.BudgetID)
			require.Equal(t, "food", e.Category)
			require.True(t, tt.wantDate.Equal(e.Date))
			require.Equal(t, time.UTC, e.Date.Location())
			require.Equal(t, []Expense{e}, store.expenses)
		})
	}
}

func TestSaveExpenseWithoutBudget(t *testing.T) {
	bt, store := newTestTracker(t)

	_, err := bt.SaveExpense(context.Background(), "user-1", ExpenseRequest{Amount: 5, Category: "food"})
	require.Equal(t, appErrors.ErrNoBudget, appErrors.CodeOf(err))
	require.Empty(t, store.expenses)
}
