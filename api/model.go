package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_dashboard/customErrors"
	"github.com/fatali-fataliyev/budget_dashboard/internal/budget"
)

const (
	RedirectLogin     = "/Account/Login"
	RedirectDashboard = "/Account/UserDashboard"
	RedirectBudget    = "/Budget"
)

// REQUESTS START:
type RegisterRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type UserLoginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type BudgetRequest struct {
	Name          string  `json:"name"`
	MonthlyIncome float64 `json:"monthly_income"`
}

type ExpenseRequest struct {
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Note     string  `json:"note"`
	Date     string  `json:"date"` // "2006-01-02" or RFC 3339, empty means now
}

//REQUESTS END:

//RESPONSES:

type MessageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

type LoginResponse struct {
	Message  string `json:"message"`
	Token    string `json:"token"`
	Redirect string `json:"redirect"`
}

type ErrorBody struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Errors   map[string]string `json:"errors,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

type FormField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Hint     string `json:"hint,omitempty"`
}

type FormDescription struct {
	Action string      `json:"action"`
	Method string      `json:"method"`
	Fields []FormField `json:"fields"`
}

type ExpenseItem struct {
	ID        string    `json:"id"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Note      string    `json:"note"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

type BudgetResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	MonthlyIncome float64   `json:"monthly_income"`
	CreatedAt     time.Time `json:"created_at"`
	Redirect      string    `json:"redirect"`
}

type UserDashboardResponse struct {
	UserName              string             `json:"UserName"`
	BudgetName            string             `json:"BudgetName"`
	MonthlyIncome         float64            `json:"MonthlyIncome"`
	RemainingBudget       float64            `json:"RemainingBudget"`
	BudgetSpentPercentage float64            `json:"BudgetSpentPercentage"`
	RecentExpenses        []ExpenseItem      `json:"RecentExpenses"`
	TopExpenseDay         *string            `json:"TopExpenseDay"`
	TopExpenseDayTotal    float64            `json:"TopExpenseDayTotal"`
	ExpenseBreakdown      map[string]float64 `json:"ExpenseBreakdown"`
	TotalExpenses         float64            `json:"TotalExpenses"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func httpStatusFromError(err error) int {
	switch appErrors.CodeOf(err) {
	case appErrors.ErrNotFound:
		return 404 // not found
	case appErrors.ErrInvalidInput:
		return 400 // bad request
	case appErrors.ErrAuth:
		return 401 // unauthorized
	case appErrors.ErrAccessDenied:
		return 403 // access denied
	case appErrors.ErrConflict:
		return 409 // conflict
	case appErrors.ErrNoBudget, appErrors.ErrInvalidBudget:
		return 412 // budget setup required
	default:
		return 500 //internal error
	}
}

// errorBodyFrom hides anything that is not an ErrorResponse behind a generic
// message; those are logged by the caller.
func errorBodyFrom(err error) ErrorBody {
	var appErr appErrors.ErrorResponse
	if !errors.As(err, &appErr) {
		return ErrorBody{
			Code:    appErrors.ErrInternal,
			Message: "Something went wrong, try again later.",
		}
	}

	body := ErrorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
		Errors:  appErr.Fields,
	}
	if appErr.Code == appErrors.ErrNoBudget || appErr.Code == appErrors.ErrInvalidBudget {
		body.Redirect = RedirectBudget
	}
	return body
}

func ExpenseToHttp(e budget.Expense) ExpenseItem {
	return ExpenseItem{
		ID:        e.ID,
		Amount:    e.Amount,
		Category:  e.Category,
		Note:      e.Note,
		Date:      e.Date,
		CreatedAt: e.CreatedAt,
	}
}

func DashboardToHttp(d budget.UserDashboard) UserDashboardResponse {
	recent := make([]ExpenseItem, 0, len(d.RecentExpenses))
	for _, e := range d.RecentExpenses {
		recent = append(recent, ExpenseToHttp(e))
	}

	return UserDashboardResponse{
		UserName:              d.UserName,
		BudgetName:            d.BudgetName,
		MonthlyIncome:         d.MonthlyIncome,
		RemainingBudget:       d.RemainingBudget,
		BudgetSpentPercentage: d.BudgetSpentPercentage,
		RecentExpenses:        recent,
		TopExpenseDay:         d.TopExpenseDay,
		TopExpenseDayTotal:    d.TopExpenseDayTotal,
		ExpenseBreakdown:      d.ExpenseBreakdown,
		TotalExpenses:         d.TotalExpenses,
	}
}

// parseExpenseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseExpenseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(budget.DATE_LAYOUT, value)
	if err != nil {
		return time.Time{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: fmt.Sprintf("invalid expense date: '%s', use YYYY-MM-DD", value),
		}
	}
	return t, nil
}

var registerForm = FormDescription{
	Action: "/Account/Register",
	Method: "POST",
	Fields: []FormField{
		{Name: "username", Type: "text", Required: true},
		{Name: "password", Type: "password", Required: true, Hint: "At least 8 characters with an uppercase letter, a lowercase letter and a digit."},
		{Name: "email", Type: "email", Required: true},
	},
}

var loginForm = FormDescription{
	Action: "/Account/Login",
	Method: "POST",
	Fields: []FormField{
		{Name: "username", Type: "text", Required: true},
		{Name: "password", Type: "password", Required: true},
	},
}
