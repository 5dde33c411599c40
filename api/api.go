package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/0xcafe-io/iz"
	appErrors "github.com/fatali-fataliyev/budget_dashboard/customErrors"
	"github.com/fatali-fataliyev/budget_dashboard/internal/auth"
	"github.com/fatali-fataliyev/budget_dashboard/internal/budget"
	"github.com/fatali-fataliyev/budget_dashboard/internal/contextutil"
	"github.com/fatali-fataliyev/budget_dashboard/logging"
)

type Api struct {
	Service *budget.BudgetTracker
}

func NewApi(service *budget.BudgetTracker) *Api {
	return &Api{
		Service: service,
	}
}

// tokenFromHeader reads the session token from the Authorization header,
// with or without a "Bearer " prefix.
func tokenFromHeader(header http.Header) string {
	token := strings.TrimSpace(header.Get("Authorization"))
	if len(token) > len("Bearer ") && strings.EqualFold(token[:len("Bearer ")], "Bearer ") {
		token = strings.TrimSpace(token[len("Bearer "):])
	}
	return token
}

func (api *Api) identify(r *iz.Request) (auth.Identity, string, error) {
	token := tokenFromHeader(r.Header)
	if token == "" {
		return auth.Identity{}, "", appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "authorization failed: Authorization header is required.",
		}
	}

	identity, err := api.Service.CheckSession(r.Context(), token)
	if err != nil {
		return auth.Identity{}, "", err
	}
	return identity, token, nil
}

func (api *Api) errorResponse(r *iz.Request, err error) iz.Responder {
	status := httpStatusFromError(err)
	if status >= 500 {
		logging.Logger.WithField("trace_id", contextutil.TraceIDFromContext(r.Context())).
			Errorf("request failed: %v", err)
	}
	return iz.Respond().Status(status).JSON(errorBodyFrom(err))
}

func invalidBody() iz.Responder {
	return iz.Respond().Status(400).JSON(ErrorBody{
		Code:    appErrors.ErrInvalidInput,
		Message: "invalid request body",
	})
}

func (api *Api) RegisterFormHandler(r *iz.Request) iz.Responder {
	return iz.Respond().Status(200).JSON(registerForm)
}

func (api *Api) RegisterHandler(r *iz.Request) iz.Responder {
	var newUserReq RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&newUserReq); err != nil {
		return invalidBody()
	}

	newUser := auth.NewUser{
		UserName:      newUserReq.UserName,
		PasswordPlain: newUserReq.Password,
		Email:         newUserReq.Email,
	}

	if _, err := api.Service.Register(r.Context(), newUser); err != nil {
		return api.errorResponse(r, err)
	}

	resp := MessageResponse{
		Message:  "Registration completed, please log in.",
		Redirect: RedirectLogin,
	}
	return iz.Respond().Status(201).JSON(resp)
}

func (api *Api) LoginFormHandler(r *iz.Request) iz.Responder {
	return iz.Respond().Status(200).JSON(loginForm)
}

func (api *Api) LoginUserHandler(r *iz.Request) iz.Responder {
	var loginRequest UserLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
		return invalidBody()
	}

	credentials := auth.UserCredentialsPure{
		UserName:      strings.TrimSpace(loginRequest.UserName),
		PasswordPlain: loginRequest.Password,
	}

	token, _, err := api.Service.Login(r.Context(), credentials)
	if err != nil {
		return api.errorResponse(r, err)
	}

	response := LoginResponse{
		Message:  "You've logged in successfully!",
		Token:    token,
		Redirect: RedirectDashboard,
	}
	return iz.Respond().Status(200).JSON(response)
}

func (api *Api) UserDashboardHandler(r *iz.Request) iz.Responder {
	identity, _, err := api.identify(r)
	if err != nil {
		return api.errorResponse(r, err)
	}

	dashboard, err := api.Service.GetUserDashboard(r.Context(), identity, api.Service.Now())
	if err != nil {
		return api.errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(DashboardToHttp(dashboard))
}

func (api *Api) LogoutUserHandler(r *iz.Request) iz.Responder {
	_, token, err := api.identify(r)
	if err != nil {
		return api.errorResponse(r, err)
	}

	if err := api.Service.Logout(r.Context(), token); err != nil {
		return api.errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(MessageResponse{
		Message:  "Logout successful.",
		Redirect: RedirectLogin,
	})
}

func (api *Api) SaveBudgetHandler(r *iz.Request) iz.Responder {
	identity, _, err := api.identify(r)
	if err != nil {
		return api.errorResponse(r, err)
	}

	var budgetReq BudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&budgetReq); err != nil {
		return invalidBody()
	}

	b, err := api.Service.SaveBudget(r.Context(), identity.UserID, budget.BudgetRequest{
		Name:          budgetReq.Name,
		MonthlyIncome: budgetReq.MonthlyIncome,
	})
	if err != nil {
		return api.errorResponse(r, err)
	}

	return iz.Respond().Status(201).JSON(BudgetResponse{
		ID:            b.ID,
		Name:          b.Name,
		MonthlyIncome: b.MonthlyIncome,
		CreatedAt:     b.CreatedAt,
		Redirect:      RedirectDashboard,
	})
}

func (api *Api) SaveExpenseHandler(r *iz.Request) iz.Responder {
	identity, _, err := api.identify(r)
	if err != nil {
		return api.errorResponse(r, err)
	}

	var expenseReq ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&expenseReq); err != nil {
		return invalidBody()
	}

	date, err := parseExpenseDate(expenseReq.Date)
	if err != nil {
		return api.errorResponse(r, err)
	}

	e, err := api.Service.SaveExpense(r.Context(), identity.UserID, budget.ExpenseRequest{
		Amount:   expenseReq.Amount,
		Category: expenseReq.Category,
		Note:     expenseReq.Note,
		Date:     date,
	})
	if err != nil {
		return api.errorResponse(r, err)
	}
	return iz.Respond().Status(201).JSON(ExpenseToHttp(e))
}

func (api *Api) HealthHandler(r *iz.Request) iz.Responder {
	return iz.Respond().Status(200).JSON(HealthResponse{
		Status:  "ok",
		Storage: api.Service.StorageType,
	})
}
