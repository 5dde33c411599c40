package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_dashboard/customErrors"
	"github.com/fatali-fataliyev/budget_dashboard/internal/auth"
	"github.com/fatali-fataliyev/budget_dashboard/internal/budget"
)

type InMemoryStorage struct {
	mu       sync.RWMutex
	users    []auth.User
	sessions []auth.Session
	budgets  []budget.Budget
	expenses []budget.Expense
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{}
}

func (inMem *InMemoryStorage) GetStorageType() string {
	return "inmemory"
}

func (inMem *InMemoryStorage) Close() error {
	return nil
}

func (inMem *InMemoryStorage) SaveUser(ctx context.Context, newUser auth.User) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for _, user := range inMem.users {
		if user.UserName == newUser.UserName {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrConflict,
				Message: auth.MsgUsernameTaken,
			}
		}
	}
	inMem.users = append(inMem.users, newUser)
	return nil
}

func (inMem *InMemoryStorage) IsUserExists(ctx context.Context, username string) (bool, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	for _, user := range inMem.users {
		if user.UserName == username {
			return true, nil
		}
	}
	return false, nil
}

func (inMem *InMemoryStorage) GetUserByUsername(ctx context.Context, username string) (auth.User, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	for _, user := range inMem.users {
		if user.UserName == username {
			return user, nil
		}
	}
	return auth.User{}, userNotFound()
}

func (inMem *InMemoryStorage) GetUserById(ctx context.Context, userID string) (auth.User, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	for _, user := range inMem.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return auth.User{}, userNotFound()
}

func userNotFound() appErrors.ErrorResponse {
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrNotFound,
		Message: "User not found.",
	}
}

func sessionNotFound() appErrors.ErrorResponse {
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrAuth,
		Message: "Session does not exist, please login.",
	}
}

func (inMem *InMemoryStorage) SaveSession(ctx context.Context, session auth.Session) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	inMem.sessions = append(inMem.sessions, session)
	return nil
}

func (inMem *InMemoryStorage) GetSessionByToken(ctx context.Context, token string) (auth.Session, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	for _, session := range inMem.sessions {
		if session.Token == token {
			return session, nil
		}
	}
	return auth.Session{}, sessionNotFound()
}

func (inMem *InMemoryStorage) UpdateSession(ctx context.Context, token string, expireAt time.Time) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for i := range inMem.sessions {
		if inMem.sessions[i].Token == token {
			inMem.sessions[i].ExpireAt = expireAt
			return nil
		}
	}
	return sessionNotFound()
}

func (inMem *InMemoryStorage) DeleteSession(ctx context.Context, token string) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for i, session := range inMem.sessions {
		if session.Token == token {
			inMem.sessions = append(inMem.sessions[:i], inMem.sessions[i+1:]...)
			return nil
		}
	}
	return nil
}

func (inMem *InMemoryStorage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	kept := inMem.sessions[:0]
	var removed int64
	for _, session := range inMem.sessions {
		if session.ExpireAt.After(now) {
			kept = append(kept, session)
		} else {
			removed++
		}
	}
	inMem.sessions = kept
	return removed, nil
}

func (inMem *InMemoryStorage) SaveBudget(ctx context.Context, b budget.Budget) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for _, existing := range inMem.budgets {
		if existing.UserID == b.UserID {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrConflict,
				Message: "You already have a budget.",
			}
		}
	}
	inMem.budgets = append(inMem.budgets, b)
	return nil
}

func (inMem *InMemoryStorage) SaveExpense(ctx context.Context, e budget.Expense) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	inMem.expenses = append(inMem.expenses, e)
	return nil
}

func (inMem *InMemoryStorage) GetCurrentBudget(ctx context.Context, userID string) (budget.Budget, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	return inMem.currentBudget(userID)
}

func (inMem *InMemoryStorage) GetExpensesBetween(ctx context.Context, userID string, from time.Time, to time.Time) ([]budget.Expense, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	return inMem.expensesBetween(userID, from, to), nil
}

func (inMem *InMemoryStorage) GetRecentExpenses(ctx context.Context, userID string, limit int) ([]budget.Expense, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	return inMem.recentExpenses(userID, limit), nil
}

func (inMem *InMemoryStorage) GetCategoryTotals(ctx context.Context, userID string, budgetID string) ([]budget.CategoryAmount, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	return inMem.categoryTotals(userID, budgetID), nil
}

// ReadDashboard holds the read lock for the whole of fn. fn gets a reader
// that does not lock again, so a writer queued behind it cannot deadlock it.
func (inMem *InMemoryStorage) ReadDashboard(ctx context.Context, fn func(r budget.DashboardReader) error) error {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	return fn(lockedReader{inMem})
}

type lockedReader struct {
	inMem *InMemoryStorage
}

func (r lockedReader) GetCurrentBudget(ctx context.Context, userID string) (budget.Budget, error) {
	return r.inMem.currentBudget(userID)
}

func (r lockedReader) GetExpensesBetween(ctx context.Context, userID string, from time.Time, to time.Time) ([]budget.Expense, error) {
	return r.inMem.expensesBetween(userID, from, to), nil
}

func (r lockedReader) GetRecentExpenses(ctx context.Context, userID string, limit int) ([]budget.Expense, error) {
	return r.inMem.recentExpenses(userID, limit), nil
}

func (r lockedReader) GetCategoryTotals(ctx context.Context, userID string, budgetID string) ([]budget.CategoryAmount, error) {
	return r.inMem.categoryTotals(userID, budgetID), nil
}

func (inMem *InMemoryStorage) currentBudget(userID string) (budget.Budget, error) {
	var current *budget.Budget
	for i, b := range inMem.budgets {
		if b.UserID != userID {
			continue
		}
		if current == nil || b.CreatedAt.Before(current.CreatedAt) {
			current = &inMem.budgets[i]
		}
	}
	if current == nil {
		return budget.Budget{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "Budget not found.",
		}
	}
	return *current, nil
}

func (inMem *InMemoryStorage) expensesBetween(userID string, from time.Time, to time.Time) []budget.Expense {
	result := []budget.Expense{}
	for _, e := range inMem.expenses {
		if e.UserID == userID && !e.Date.Before(from) && !e.Date.After(to) {
			result = append(result, e)
		}
	}
	return result
}

func (inMem *InMemoryStorage) recentExpenses(userID string, limit int) []budget.Expense {
	result := []budget.Expense{}
	for _, e := range inMem.expenses {
		if e.UserID == userID {
			result = append(result, e)
		}
	}
	budget.SortRecentExpenses(result)
	if limit >= 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func (inMem *InMemoryStorage) categoryTotals(userID string, budgetID string) []budget.CategoryAmount {
	sums := make(map[string]float64)
	for _, e := range inMem.expenses {
		if e.UserID == userID && e.BudgetID == budgetID {
			sums[e.Category] += e.Amount
		}
	}

	totals := make([]budget.CategoryAmount, 0, len(sums))
	for category, amount := range sums {
		totals = append(totals, budget.CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Category < totals[j].Category
	})
	return totals
}
