package budget

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	appErrors "github.com/fatali-fataliyev/budget_dashboard/customErrors"
	"github.com/fatali-fataliyev/budget_dashboard/internal/auth"
	"github.com/fatali-fataliyev/budget_dashboard/internal/contextutil"
	"github.com/fatali-fataliyev/budget_dashboard/logging"
	"github.com/google/uuid"
)

const MsgInvalidCredentials = "Invalid username or password"

func unauthenticatedError() appErrors.ErrorResponse {
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrAuth,
		Message: MsgInvalidCredentials,
	}
}

// Authenticate returns the same error for an unknown username and for a wrong
// password.
func (bt *BudgetTracker) Authenticate(ctx context.Context, username string, password string) (auth.Identity, error) {
	user, err := bt.storage.GetUserByUsername(ctx, username)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrNotFound) {
			auth.BurnComparison(password)
			return auth.Identity{}, unauthenticatedError()
		}
		return auth.Identity{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.ComparePasswords(user.PasswordHashed, password) {
		return auth.Identity{}, unauthenticatedError()
	}

	return auth.Identity{UserID: user.ID, UserName: user.UserName}, nil
}

// Login authenticates and persists a new session, returning its token.
func (bt *BudgetTracker) Login(ctx context.Context, credentials auth.UserCredentialsPure) (string, auth.Identity, error) {
	identity, err := bt.Authenticate(ctx, credentials.UserName, credentials.PasswordPlain)
	if err != nil {
		return "", auth.Identity{}, err
	}

	tokenByte := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, tokenByte); err != nil {
		return "", auth.Identity{}, fmt.Errorf("failed to generate new session: %w", err)
	}

	now := bt.Now()
	session := auth.Session{
		ID:        uuid.New().String(),
		Token:     hex.EncodeToString(tokenByte),
		CreatedAt: now,
		ExpireAt:  now.Add(bt.opts.SessionTTL),
		UserID:    identity.UserID,
	}

	if err := bt.storage.SaveSession(ctx, session); err != nil {
		return "", auth.Identity{}, fmt.Errorf("failed to save session: %w", err)
	}

	logging.Logger.WithField("trace_id", contextutil.TraceIDFromContext(ctx)).
		Infof("session established for user: %s", identity.UserID)
	return session.Token, identity, nil
}

// CheckSession resolves a token to the caller identity and extends sessions
// that are close to expiring.
func (bt *BudgetTracker) CheckSession(ctx context.Context, token string) (auth.Identity, error) {
	if token == "" {
		return auth.Identity{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Session does not exist, please login.",
		}
	}

	session, err := bt.storage.GetSessionByToken(ctx, token)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("failed to get session by token: %w", err)
	}

	now := bt.Now()
	if !session.ExpireAt.After(now) {
		return auth.Identity{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Your session expired, please login again.",
		}
	}

	if session.ExpireAt.Sub(now) <= bt.opts.SessionRenewWithin {
		if err := bt.storage.UpdateSession(ctx, token, now.Add(bt.opts.SessionTTL)); err != nil {
			return auth.Identity{}, fmt.Errorf("failed to update session: %w", err)
		}
	}

	user, err := bt.storage.GetUserById(ctx, session.UserID)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrNotFound) {
			return auth.Identity{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrAuth,
				Message: "Session does not exist, please login.",
			}
		}
		return auth.Identity{}, fmt.Errorf("failed to get session owner: %w", err)
	}

	return auth.Identity{UserID: user.ID, UserName: user.UserName}, nil
}

func (bt *BudgetTracker) Logout(ctx context.Context, token string) error {
	if err := bt.storage.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

func (bt *BudgetTracker) SweepExpiredSessions(ctx context.Context) (int64, error) {
	removed, err := bt.storage.DeleteExpiredSessions(ctx, bt.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired sessions: %w", err)
	}
	return removed, nil
}
