package budget

import (
	"context"
	"fmt"
	"strings"

	appErrors "github.com/fatali-fataliyev/budget_dashboard/customErrors"
	"github.com/fatali-fataliyev/budget_dashboard/internal/auth"
	"github.com/fatali-fataliyev/budget_dashboard/internal/contextutil"
	"github.com/fatali-fataliyev/budget_dashboard/logging"
	"github.com/google/uuid"
)

func duplicateUsernameError() appErrors.ErrorResponse {
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrConflict,
		Message: auth.MsgUsernameTaken,
		Fields:  map[string]string{auth.FieldUsername: auth.MsgUsernameTaken},
	}
}

func (bt *BudgetTracker) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	result, err := bt.storage.IsUserExists(ctx, username)
	if err != nil {
		return false, fmt.Errorf("failed to check user existance: %w", err)
	}
	return result, nil
}

// CreateUser hashes the password and inserts the user. The store's unique
// constraint on username is the authority; a violation comes back as a
// duplicate-username conflict even when IsUsernameTaken said otherwise.
func (bt *BudgetTracker) CreateUser(ctx context.Context, username string, password string, email string) (auth.User, error) {
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return auth.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := auth.User{
		ID:             uuid.New().String(),
		UserName:       username,
		PasswordHashed: hashedPassword,
		Email:          strings.ToLower(email),
		CreatedAt:      bt.Now(),
	}

	if err := bt.storage.SaveUser(ctx, user); err != nil {
		if appErrors.HasCode(err, appErrors.ErrConflict) {
			return auth.User{}, duplicateUsernameError()
		}
		return auth.User{}, fmt.Errorf("failed to registration: %w", err)
	}
	return user, nil
}

func (bt *BudgetTracker) FindByUsername(ctx context.Context, username string) (auth.User, error) {
	user, err := bt.storage.GetUserByUsername(ctx, username)
	if err != nil {
		return auth.User{}, fmt.Errorf("failed to find user by username: %w", err)
	}
	return user, nil
}

func (bt *BudgetTracker) FindByID(ctx context.Context, userID string) (auth.User, error) {
	user, err := bt.storage.GetUserById(ctx, userID)
	if err != nil {
		return auth.User{}, fmt.Errorf("failed to find user by id: %w", err)
	}
	return user, nil
}

// Register validates the form, checks the username and creates the account.
func (bt *BudgetTracker) Register(ctx context.Context, newUser auth.NewUser) (auth.User, error) {
	newUser.UserName = strings.TrimSpace(newUser.UserName)
	newUser.Email = strings.TrimSpace(newUser.Email)

	if err := newUser.Validate(); err != nil {
		return auth.User{}, err
	}

	isTaken, err := bt.IsUsernameTaken(ctx, newUser.UserName)
	if err != nil {
		return auth.User{}, fmt.Errorf("failed to check username availability: %w", err)
	}
	if isTaken {
		return auth.User{}, duplicateUsernameError()
	}

	user, err := bt.CreateUser(ctx, newUser.UserName, newUser.PasswordPlain, newUser.Email)
	if err != nil {
		return auth.User{}, err
	}

	logging.Logger.WithField("trace_id", contextutil.TraceIDFromContext(ctx)).
		Infof("user registered: %s", user.ID)
	return user, nil
}
