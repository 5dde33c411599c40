package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_dashboard/customErrors"
	"github.com/fatali-fataliyev/budget_dashboard/internal/auth"
	"github.com/fatali-fataliyev/budget_dashboard/internal/budget"
	"github.com/fatali-fataliyev/budget_dashboard/internal/contextutil"
	"github.com/fatali-fataliyev/budget_dashboard/logging"
	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const mysqlDuplicateEntry = 1062

// queryer is the part of *sql.DB and *sql.Tx the store needs.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStorage serves both MySQL and SQLite; the schemas differ only in column
// types, so every statement is shared.
type SQLStorage struct {
	db          *sql.DB
	q           queryer
	storageType string
}

func NewSQLStorage(db *sql.DB, storageType string) *SQLStorage {
	return &SQLStorage{db: db, q: db, storageType: storageType}
}

func (sqlStore *SQLStorage) GetStorageType() string {
	return sqlStore.storageType
}

func (sqlStore *SQLStorage) Close() error {
	return sqlStore.db.Close()
}

func isUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func internalError(message string) appErrors.ErrorResponse {
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrInternal,
		Message: message,
	}
}

// --- USERS --- //

func (sqlStore *SQLStorage) SaveUser(ctx context.Context, user auth.User) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "INSERT INTO user (id, username, hashed_password, email, created_at) VALUES (?, ?, ?, ?, ?);"
	_, err := sqlStore.q.ExecContext(ctx, query, user.ID, user.UserName, user.PasswordHashed, user.Email, user.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrConflict,
				Message: auth.MsgUsernameTaken,
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to save user in Storage.SaveUser() function | Error: %v", traceID, err)
		return internalError("Registration failed, try again later.")
	}
	return nil
}

func (sqlStore *SQLStorage) IsUserExists(ctx context.Context, username string) (bool, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM user WHERE username = ?);"
	if err := sqlStore.q.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to check user existence in Storage.IsUserExists() function | Error: %v", traceID, err)
		return false, internalError("Failed to check username, try again later.")
	}
	return exists, nil
}

func (sqlStore *SQLStorage) GetUserByUsername(ctx context.Context, username string) (auth.User, error) {
	query := "SELECT id, username, hashed_password, email, created_at FROM user WHERE username = ?;"
	return sqlStore.getUser(ctx, "GetUserByUsername", query, username)
}

func (sqlStore *SQLStorage) GetUserById(ctx context.Context, userID string) (auth.User, error) {
	query := "SELECT id, username, hashed_password, email, created_at FROM user WHERE id = ?;"
	return sqlStore.getUser(ctx, "GetUserById", query, userID)
}

func (sqlStore *SQLStorage) getUser(ctx context.Context, caller string, query string, arg string) (auth.User, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	var user auth.User
	err := sqlStore.q.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.UserName, &user.PasswordHashed, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.User{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "User not found.",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to get user in Storage.%s() function | Error: %v", traceID, caller, err)
		return auth.User{}, internalError("Failed to get user, try again later.")
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

// --- SESSIONS --- //

func (sqlStore *SQLStorage) SaveSession(ctx context.Context, session auth.Session) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "INSERT INTO session (id, token, created_at, expire_at, user_id) VALUES (?, ?, ?, ?, ?);"
	_, err := sqlStore.q.ExecContext(ctx, query, session.ID, session.Token, session.CreatedAt.UTC(), session.ExpireAt.UTC(), session.UserID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to save session in Storage.SaveSession() function | Error: %v", traceID, err)
		return internalError("Failed to create session, try again later.")
	}
	return nil
}

func (sqlStore *SQLStorage) GetSessionByToken(ctx context.Context, token string) (auth.Session, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	var session auth.Session
	query := "SELECT id, token, created_at, expire_at, user_id FROM session WHERE token = ?;"
	err := sqlStore.q.QueryRowContext(ctx, query, token).Scan(&session.ID, &session.Token, &session.CreatedAt, &session.ExpireAt, &session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.Session{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrAuth,
				Message: "Session does not exist, please login.",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to get session in Storage.GetSessionByToken() function | Error: %v", traceID, err)
		return auth.Session{}, internalError("Failed to check session, try again later.")
	}
	session.CreatedAt = session.CreatedAt.UTC()
	session.ExpireAt = session.ExpireAt.UTC()
	return session, nil
}

func (sqlStore *SQLStorage) UpdateSession(ctx context.Context, token string, expireAt time.Time) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "UPDATE session SET expire_at = ? WHERE token = ?;"
	res, err := sqlStore.q.ExecContext(ctx, query, expireAt.UTC(), token)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to update session in Storage.UpdateSession() function | Error: %v", traceID, err)
		return internalError("Failed to check session, please try again later.")
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to check affected rows in Storage.UpdateSession() function | Error: %v", traceID, err)
		return internalError("Failed to check session, please try again later.")
	}
	if rowsAffected == 0 {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Session does not exist, please login.",
		}
	}
	return nil
}

func (sqlStore *SQLStorage) DeleteSession(ctx context.Context, token string) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	if _, err := sqlStore.q.ExecContext(ctx, "DELETE FROM session WHERE token = ?;", token); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to delete session in Storage.DeleteSession() function | Error: %v", traceID, err)
		return internalError("Failed to logout, try again later.")
	}
	return nil
}

func (sqlStore *SQLStorage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	res, err := sqlStore.q.ExecContext(ctx, "DELETE FROM session WHERE expire_at <= ?;", now.UTC())
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to delete expired sessions in Storage.DeleteExpiredSessions() function | Error: %v", traceID, err)
		return 0, internalError("Failed to clean up sessions.")
	}

	removed, err := res.RowsAffected()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to check affected rows in Storage.DeleteExpiredSessions() function | Error: %v", traceID, err)
		return 0, internalError("Failed to clean up sessions.")
	}
	return removed, nil
}

// --- BUDGETS & EXPENSES --- //

func (sqlStore *SQLStorage) SaveBudget(ctx context.Context, b budget.Budget) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "INSERT INTO budget (id, user_id, name, monthly_income, created_at) VALUES (?, ?, ?, ?, ?);"
	_, err := sqlStore.q.ExecContext(ctx, query, b.ID, b.UserID, b.Name, b.MonthlyIncome, b.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrConflict,
				Message: "You already have a budget.",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to save budget in Storage.SaveBudget() function | Error: %v", traceID, err)
		return internalError("Failed to save the budget, try again later.")
	}
	return nil
}

func (sqlStore *SQLStorage) SaveExpense(ctx context.Context, e budget.Expense) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "INSERT INTO expense (id, user_id, budget_id, amount, category, note, spent_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?);"
	_, err := sqlStore.q.ExecContext(ctx, query, e.ID, e.UserID, e.BudgetID, e.Amount, e.Category, e.Note, e.Date.UTC(), e.CreatedAt.UTC())
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to save expense in Storage.SaveExpense() function | Error: %v", traceID, err)
		return internalError("Failed to save the expense, try again later.")
	}
	return nil
}

// GetCurrentBudget returns the user's earliest budget; with the unique
// user_id constraint that is the only one.
func (sqlStore *SQLStorage) GetCurrentBudget(ctx context.Context, userID string) (budget.Budget, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	var b budget.Budget
	query := "SELECT id, user_id, name, monthly_income, created_at FROM budget WHERE user_id = ? ORDER BY created_at, id LIMIT 1;"
	err := sqlStore.q.QueryRowContext(ctx, query, userID).Scan(&b.ID, &b.UserID, &b.Name, &b.MonthlyIncome, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return budget.Budget{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "Budget not found.",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to get budget in Storage.GetCurrentBudget() function | Error: %v", traceID, err)
		return budget.Budget{}, internalError("Failed to get budget, try again later.")
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}

const expenseColumns = "id, user_id, budget_id, amount, category, note, spent_at, created_at"

func (sqlStore *SQLStorage) GetExpensesBetween(ctx context.Context, userID string, from time.Time, to time.Time) ([]budget.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expense WHERE user_id = ? AND spent_at >= ? AND spent_at <= ?;"
	return sqlStore.queryExpenses(ctx, "GetExpensesBetween", query, userID, from.UTC(), to.UTC())
}

func (sqlStore *SQLStorage) GetRecentExpenses(ctx context.Context, userID string, limit int) ([]budget.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expense WHERE user_id = ? ORDER BY spent_at DESC, created_at DESC, id ASC LIMIT ?;"
	return sqlStore.queryExpenses(ctx, "GetRecentExpenses", query, userID, limit)
}

func (sqlStore *SQLStorage) queryExpenses(ctx context.Context, caller string, query string, args ...any) ([]budget.Expense, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	rows, err := sqlStore.q.QueryContext(ctx, query, args...)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to query expenses in Storage.%s() function | Error: %v", traceID, caller, err)
		return nil, internalError("Failed to get expenses, try again later.")
	}
	defer rows.Close()

	expenses := []budget.Expense{}
	for rows.Next() {
		var e budget.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.BudgetID, &e.Amount, &e.Category, &e.Note, &e.Date, &e.CreatedAt); err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to scan expense in Storage.%s() function | Error: %v", traceID, caller, err)
			return nil, internalError("Failed to get expenses, try again later.")
		}
		e.Date = e.Date.UTC()
		e.CreatedAt = e.CreatedAt.UTC()
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to iterate expenses in Storage.%s() function | Error: %v", traceID, caller, err)
		return nil, internalError("Failed to get expenses, try again later.")
	}
	return expenses, nil
}

func (sqlStore *SQLStorage) GetCategoryTotals(ctx context.Context, userID string, budgetID string) ([]budget.CategoryAmount, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "SELECT category, COALESCE(SUM(amount), 0) FROM expense WHERE user_id = ? AND budget_id = ? GROUP BY category ORDER BY category;"
	rows, err := sqlStore.q.QueryContext(ctx, query, userID, budgetID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to query category totals in Storage.GetCategoryTotals() function | Error: %v", traceID, err)
		return nil, internalError("Failed to get expense breakdown, try again later.")
	}
	defer rows.Close()

	totals := []budget.CategoryAmount{}
	for rows.Next() {
		var c budget.CategoryAmount
		if err := rows.Scan(&c.Category, &c.Amount); err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to scan category total in Storage.GetCategoryTotals() function | Error: %v", traceID, err)
			return nil, internalError("Failed to get expense breakdown, try again later.")
		}
		totals = append(totals, c)
	}
	if err := rows.Err(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to iterate category totals in Storage.GetCategoryTotals() function | Error: %v", traceID, err)
		return nil, internalError("Failed to get expense breakdown, try again later.")
	}
	return totals, nil
}

// ReadDashboard runs fn inside one transaction so every read sees the same
// snapshot.
func (sqlStore *SQLStorage) ReadDashboard(ctx context.Context, fn func(r budget.DashboardReader) error) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	tx, err := sqlStore.db.BeginTx(ctx, nil)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to begin transaction in Storage.ReadDashboard() function | Error: %v", traceID, err)
		return internalError("Failed to load dashboard, try again later.")
	}

	reader := &SQLStorage{db: sqlStore.db, q: tx, storageType: sqlStore.storageType}
	if err := fn(reader); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to commit transaction in Storage.ReadDashboard() function | Error: %v", traceID, err)
		return internalError("Failed to load dashboard, try again later.")
	}
	return nil
}
