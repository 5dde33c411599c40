package api

import (
	"net/http"

	"github.com/0xcafe-io/iz"
)

func NewRouter(api *Api) http.Handler {
	server := http.NewServeMux()

	// ACCOUNT ENDPOINTS.
	server.HandleFunc("GET /Account/Register", iz.Bind(api.RegisterFormHandler))       // Registration form
	server.HandleFunc("POST /Account/Register", iz.Bind(api.RegisterHandler))          // Create User
	server.HandleFunc("GET /Account/Login", iz.Bind(api.LoginFormHandler))             // Login form
	server.HandleFunc("POST /Account/Login", iz.Bind(api.LoginUserHandler))            // Login User
	server.HandleFunc("GET /Account/UserDashboard", iz.Bind(api.UserDashboardHandler)) // Dashboard
	server.HandleFunc("POST /Account/Logout", iz.Bind(api.LogoutUserHandler))          // Logout User

	// BUDGET ENDPOINTS.
	server.HandleFunc("POST /Budget", iz.Bind(api.SaveBudgetHandler))   // Create Budget
	server.HandleFunc("POST /Expense", iz.Bind(api.SaveExpenseHandler)) // Create Expense

	server.HandleFunc("GET /health", iz.Bind(api.HealthHandler))

	return WithTracing(server)
}
