package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_dashboard/customErrors"
	"github.com/fatali-fataliyev/budget_dashboard/internal/auth"
	"github.com/stretchr/testify/require"
)

// Mocks

type MockStorage struct {
	users    map[string]auth.User
	sessions map[string]auth.Session
	budgets  map[string]Budget
	expenses []Expense

	// userExistsLies makes IsUserExists report false so the insert has to
	// catch the duplicate.
	userExistsLies bool
	failWith       error
	updatedTokens  []string
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		users:    map[string]auth.User{},
		sessions: map[string]auth.Session{},
		budgets:  map[string]Budget{},
	}
}

func (m *MockStorage) SaveUser(ctx context.Context, newUser auth.User) error {
	if m.failWith != nil {
		return m.failWith
	}
	for _, u := range m.users {
		if u.UserName == newUser.UserName {
			return appErrors.ErrorResponse{Code: appErrors.ErrConflict, Message: "duplicate"}
		}
	}
	m.users[newUser.ID] = newUser
	return nil
}

func (m *MockStorage) IsUserExists(ctx context.Context, username string) (bool, error) {
	if m.failWith != nil {
		return false, m.failWith
	}
	if m.userExistsLies {
		return false, nil
	}
	for _, u := range m.users {
		if u.UserName == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockStorage) GetUserByUsername(ctx context.Context, username string) (auth.User, error) {
	if m.failWith != nil {
		return auth.User{}, m.failWith
	}
	for _, u := range m.users {
		if u.UserName == username {
			return u, nil
		}
	}
	return auth.User{}, appErrors.ErrorResponse{Code: appErrors.ErrNotFound, Message: "User not found."}
}

func (m *MockStorage) GetUserById(ctx context.Context, userID string) (auth.User, error) {
	if u, ok := m.users[userID]; ok {
		return u, nil
	}
	return auth.User{}, appErrors.ErrorResponse{Code: appErrors.ErrNotFound, Message: "User not found."}
}

func (m *MockStorage) SaveSession(ctx context.Context, session auth.Session) error {
	m.sessions[session.Token] = session
	return nil
}

func (m *MockStorage) GetSessionByToken(ctx context.Context, token string) (auth.Session, error) {
	if s, ok := m.sessions[token]; ok {
		return s, nil
	}
	return auth.Session{}, appErrors.ErrorResponse{Code: appErrors.ErrAuth, Message: "Session does not exist, please login."}
}

func (m *MockStorage) UpdateSession(ctx context.Context, token string, expireAt time.Time) error {
	s, ok := m.sessions[token]
	if !ok {
		return appErrors.ErrorResponse{Code: appErrors.ErrAuth, Message: "Session does not exist, please login."}
	}
	s.ExpireAt = expireAt
	m.sessions[token] = s
	m.updatedTokens = append(m.updatedTokens, token)
	return nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

func (m *MockStorage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	var removed int64
	for token, s := range m.sessions {
		if !s.ExpireAt.After(now) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed, nil
}

func (m *MockStorage) SaveBudget(ctx context.Context, b Budget) error {
	if _, ok := m.budgets[b.UserID]; ok {
		return appErrors.ErrorResponse{Code: appErrors.ErrConflict, Message: "You already have a budget."}
	}
	m.budgets[b.UserID] = b
	return nil
}

func (m *MockStorage) SaveExpense(ctx context.Context, e Expense) error {
	m.expenses = append(m.expenses, e)
	return nil
}

func (m *MockStorage) GetCurrentBudget(ctx context.Context, userID string) (Budget, error) {
	if m.failWith != nil {
		return Budget{}, m.failWith
	}
	if b, ok := m.budgets[userID]; ok {
		return b, nil
	}
	return Budget{}, appErrors.ErrorResponse{Code: appErrors.ErrNotFound, Message: "Budget not found."}
}

func (m *MockStorage) GetExpensesBetween(ctx context.Context, userID string, from time.Time, to time.Time) ([]Expense, error) {
	var result []Expense
	for _, e := range m.expenses {
		if e.UserID == userID && !e.Date.Before(from) && !e.Date.After(to) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *MockStorage) GetRecentExpenses(ctx context.Context, userID string, limit int) ([]Expense, error) {
	var result []Expense
	for _, e := range m.expenses {
		if e.UserID == userID {
			result = append(result, e)
		}
	}
	SortRecentExpenses(result)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockStorage) GetCategoryTotals(ctx context.Context, userID string, budgetID string) ([]CategoryAmount, error) {
	sums := map[string]float64{}
	var order []string
	for _, e := range m.expenses {
		if e.UserID == userID && e.BudgetID == budgetID {
			if _, seen := sums[e.Category]; !seen {
				order = append(order, e.Category)
			}
			sums[e.Category] += e.Amount
		}
	}
	var totals []CategoryAmount
	for _, c := range order {
		totals = append(totals, CategoryAmount{Category: c, Amount: sums[c]})
	}
	return totals, nil
}

func (m *MockStorage) ReadDashboard(ctx context.Context, fn func(r DashboardReader) error) error {
	return fn(m)
}

func (m *MockStorage) GetStorageType() string {
	return "mock"
}

// Helpers

var testNow = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

func newTestTracker(t *testing.T) (*BudgetTracker, *MockStorage) {
	t.Helper()
	store := NewMockStorage()
	bt := NewBudgetTracker(store, Options{
		SessionTTL:         24 * time.Hour,
		SessionRenewWithin: time.Hour,
		Now:                func() time.Time { return testNow },
	})
	return &bt, store
}

func registerTestUser(t *testing.T, bt *BudgetTracker, username string) auth.User {
	t.Helper()
	user, err := bt.Register(context.Background(), auth.NewUser{
		UserName:      username,
		PasswordPlain: "Secret123",
		Email:         username + "@example.com",
	})
	require.NoError(t, err)
	return user
}

// Tests

func TestNewBudgetTrackerDefaults(t *testing.T) {
	bt := NewBudgetTracker(NewMockStorage(), Options{SessionRenewWithin: -1})

	defaults := DefaultOptions()
	require.Equal(t, defaults.SessionTTL, bt.opts.SessionTTL)
	require.Equal(t, defaults.SessionRenewWithin, bt.opts.SessionRenewWithin)
	require.NotNil(t, bt.opts.Now)
	require.Equal(t, "mock", bt.StorageType)
	require.Equal(t, time.UTC, bt.Now().Location())
}

func TestNowTruncatesToMicroseconds(t *testing.T) {
	bt := NewBudgetTracker(NewMockStorage(), Options{
		Now: func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 1234567, time.FixedZone("X", 3600)) },
	})

	now := bt.Now()
	require.Equal(t, 1234000, now.Nanosecond())
	require.Equal(t, time.UTC, now.Location())
	require.Equal(t, 23, now.Hour())
}

func TestIsFloatZero(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  bool
	}{
		{name: "zero", input: 0, want: true},
		{name: "below epsilon", input: Epsilon / 2, want: true},
		{name: "one cent", input: 0.01, want: false},
		{name: "negative", input: -1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsFloatZero(tt.input))
		})
	}
}

func TestStorageFailuresPropagate(t *testing.T) {
	bt, store := newTestTracker(t)
	store.failWith = errors.New("connection reset")

	_, err := bt.Register(context.Background(), auth.NewUser{UserName: "alice", PasswordPlain: "Secret123", Email: "a@example.com"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInternal, appErrors.CodeOf(err))

	_, err = bt.Authenticate(context.Background(), "alice", "Secret123")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInternal, appErrors.CodeOf(err))
}
