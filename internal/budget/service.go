package budget

import (
	"context"
	"time"

	"github.com/fatali-fataliyev/budget_dashboard/internal/auth"
)

const (
	MAX_AMOUNT_LIMIT        = 999999999999.99
	MIN_MONTHLY_INCOME      = 0.01 // Smallest income a DECIMAL(15,2) column keeps non-zero.
	MAX_CATEGORY_LENGTH     = 255
	MAX_BUDGET_NAME_LENGTH  = 255
	MAX_EXPENSE_NOTE_LENGTH = 1000
	RECENT_EXPENSES_LIMIT   = 5
	TOP_DAY_WINDOW          = 7 * 24 * time.Hour
	DATE_LAYOUT             = "2006-01-02"
	Epsilon                 = 1e-9 // For IsFloatZero() func.
)

func IsFloatZero(f float64) bool {
	return f >= 0 && f < Epsilon
}

type Options struct {
	SessionTTL         time.Duration
	SessionRenewWithin time.Duration
	Now                func() time.Time
}

func DefaultOptions() Options {
	return Options{
		SessionTTL:         90 * 24 * time.Hour,
		SessionRenewWithin: 5 * 24 * time.Hour,
		Now:                func() time.Time { return time.Now().UTC() },
	}
}

type BudgetTracker struct {
	storage     Storage
	StorageType string
	opts        Options
}

func NewBudgetTracker(s Storage, opts Options) BudgetTracker {
	defaults := DefaultOptions()
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaults.SessionTTL
	}
	if opts.SessionRenewWithin < 0 {
		opts.SessionRenewWithin = defaults.SessionRenewWithin
	}
	if opts.Now == nil {
		opts.Now = defaults.Now
	}
	return BudgetTracker{
		storage:     s,
		StorageType: s.GetStorageType(),
		opts:        opts,
	}
}

// Now is the tracker's clock, in UTC at microsecond precision so values
// survive a DATETIME(6) round trip unchanged.
func (bt *BudgetTracker) Now() time.Time {
	return bt.opts.Now().UTC().Truncate(time.Microsecond)
}

// DashboardReader is the read set of one dashboard computation.
type DashboardReader interface {
	GetCurrentBudget(ctx context.Context, userID string) (Budget, error)
	GetExpensesBetween(ctx context.Context, userID string, from time.Time, to time.Time) ([]Expense, error)
	GetRecentExpenses(ctx context.Context, userID string, limit int) ([]Expense, error)
	GetCategoryTotals(ctx context.Context, userID string, budgetID string) ([]CategoryAmount, error)
}

type Storage interface {
	DashboardReader
	SaveUser(ctx context.Context, newUser auth.User) error
	IsUserExists(ctx context.Context, username string) (bool, error)
	GetUserByUsername(ctx context.Context, username string) (auth.User, error)
	GetUserById(ctx context.Context, userID string) (auth.User, error)
	SaveSession(ctx context.Context, session auth.Session) error
	GetSessionByToken(ctx context.Context, token string) (auth.Session, error)
	UpdateSession(ctx context.Context, token string, expireAt time.Time) error
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	SaveBudget(ctx context.Context, b Budget) error
	SaveExpense(ctx context.Context, e Expense) error
	// ReadDashboard runs fn against a consistent view of the store.
	ReadDashboard(ctx context.Context, fn func(r DashboardReader) error) error
	GetStorageType() string
}
