package auth

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	appErrors "github.com/fatali-fataliyev/budget_dashboard/customErrors"
)

const (
	MIN_PASSWORD_LENGTH = 8

	FieldUsername = "Username"
	FieldPassword = "Password"
	FieldEmail    = "Email"

	MsgPasswordRule     = "Password must contain at least 8 characters including at least one uppercase letter, one lowercase letter, and one digit."
	MsgInvalidEmail     = "Invalid email format."
	MsgUsernameRequired = "Username is required."
	MsgUsernameTaken    = "Username already taken."
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9.-]+$`)
	lowerRegex = regexp.MustCompile(`[a-z]`)
	upperRegex = regexp.MustCompile(`[A-Z]`)
	digitRegex = regexp.MustCompile(`[0-9]`)
)

// ValidatePassword requires at least 8 characters with a lowercase letter,
// an uppercase letter and a digit. There is no upper bound.
func ValidatePassword(password string) bool {
	if utf8.RuneCountInString(password) < MIN_PASSWORD_LENGTH {
		return false
	}
	return lowerRegex.MatchString(password) &&
		upperRegex.MatchString(password) &&
		digitRegex.MatchString(password)
}

// ValidateEmail is a syntax check only.
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Validate collects every failing field so the caller can show them together.
func (newUser NewUser) Validate() error {
	fields := map[string]string{}

	username := strings.TrimSpace(newUser.UserName)
	if username == "" {
		fields[FieldUsername] = MsgUsernameRequired
	} else if len(username) > MAX_LENGTH_USERNAME {
		fields[FieldUsername] = fmt.Sprintf("Username so long, maximum length is %d", MAX_LENGTH_USERNAME)
	}

	if !ValidatePassword(newUser.PasswordPlain) {
		fields[FieldPassword] = MsgPasswordRule
	}

	if !ValidateEmail(newUser.Email) {
		fields[FieldEmail] = MsgInvalidEmail
	} else if len(newUser.Email) > MAX_LENGTH_EMAIL {
		fields[FieldEmail] = fmt.Sprintf("Email so long, maximum length is %d", MAX_LENGTH_EMAIL)
	}

	if len(fields) == 0 {
		return nil
	}
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrInvalidInput,
		Message: "Registration details are invalid.",
		Fields:  fields,
	}
}
