package customErrors

import (
	"errors"
	"fmt"
)

const (
	ErrNotFound      = "NOT FOUND"
	ErrInvalidInput  = "INVALID INPUT"
	ErrAuth          = "UNAUTHORIZED"
	ErrAccessDenied  = "ACCESS DENIED"
	ErrConflict      = "CONFLICT"
	ErrNoBudget      = "NO BUDGET CONFIGURED"
	ErrInvalidBudget = "INVALID BUDGET CONFIGURATION"
	ErrInternal      = "INTERNAL"
)

// ErrorResponse is the error every layer hands back to callers. Fields carries
// per-field messages for validation and duplicate-username failures.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"errors,omitempty"`
}

func (e ErrorResponse) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("code: %s, message: %s, fields: %v", e.Code, e.Message, e.Fields)
	}
	return fmt.Sprintf("code: %s, message: %s", e.Code, e.Message)
}

// CodeOf returns the code of the first ErrorResponse in err's chain, or
// ErrInternal when there is none.
func CodeOf(err error) string {
	var appErr ErrorResponse
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

func HasCode(err error, code string) bool {
	var appErr ErrorResponse
	return errors.As(err, &appErr) && appErr.Code == code
}
