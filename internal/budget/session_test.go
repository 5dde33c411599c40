package budget

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_dashboard/customErrors"
	"github.com/fatali-fataliyev/budget_dashboard/internal/auth"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateIsNotEnumerable(t *testing.T) {
	bt, _ := newTestTracker(t)
	ctx := context.Background()
	registerTestUser(t, bt, "alice")

	_, unknownErr := bt.Authenticate(ctx, "mallory", "Secret123")
	_, wrongErr := bt.Authenticate(ctx, "alice", "Wrong1234")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	require.Equal(t, unknownErr, wrongErr)
	require.Equal(t, appErrors.ErrAuth, appErrors.CodeOf(unknownErr))
	require.Equal(t, MsgInvalidCredentials, unknownErr.(appErrors.ErrorResponse).Message)

	identity, err := bt.Authenticate(ctx, "alice", "Secret123")
	require.NoError(t, err)
	require.Equal(t, "alice", identity.UserName)
}

func TestLogin(t *testing.T) {
	bt, store := newTestTracker(t)
	ctx := context.Background()
	user := registerTestUser(t, bt, "alice")

	token, identity, err := bt.Login(ctx, auth.UserCredentialsPure{UserName: "alice", PasswordPlain: "Secret123"})
	require.NoError(t, err)
	require.Equal(t, user.ID, identity.UserID)

	raw, err := hex.DecodeString(token)
	require.NoError(t, err)
	require.Len(t, raw, 16)

	session, ok := store.sessions[token]
	require.True(t, ok)
	require.Equal(t, user.ID, session.UserID)
	require.Equal(t, testNow.Add(24*time.Hour), session.ExpireAt)

	second, _, err := bt.Login(ctx, auth.UserCredentialsPure{UserName: "alice", PasswordPlain: "Secret123"})
	require.NoError(t, err)
	require.NotEqual(t, token, second)

	_, _, err = bt.Login(ctx, auth.UserCredentialsPure{UserName: "alice", PasswordPlain: "nope"})
	require.Equal(t, appErrors.ErrAuth, appErrors.CodeOf(err))
	require.Len(t, store.sessions, 2)
}

func TestCheckSession(t *testing.T) {
	tests := []struct {
		name        string
		expireIn    time.Duration
		token       string
		wantCode    string
		wantRenewed bool
	}{
		{name: "valid session", expireIn: 10 * time.Hour, token: "tok-valid"},
		{name: "close to expiry is renewed", expireIn: 30 * time.Minute, token: "tok-valid", wantRenewed: true},
		{name: "expires exactly now", expireIn: 0, token: "tok-valid", wantCode: appErrors.ErrAuth},
		{name: "expired session", expireIn: -time.Hour, token: "tok-valid", wantCode: appErrors.ErrAuth},
		{name: "unknown token", expireIn: time.Hour, token: "tok-unknown", wantCode: appErrors.ErrAuth},
		{name: "empty token", expireIn: time.Hour, token: "", wantCode: appErrors.ErrAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bt, store := newTestTracker(t)
			user := registerTestUser(t, bt, "alice")
			store.sessions["tok-valid"] = auth.Session{
				ID:        "session-1",
				Token:     "tok-valid",
				CreatedAt: testNow.Add(-time.Hour),
				ExpireAt:  testNow.Add(tt.expireIn),
				UserID:    user.ID,
			}

			identity, err := bt.CheckSession(context.Background(), tt.token)
			if tt.wantCode != "" {
				require.Error(t, err)
				require.Equal(t, tt.wantCode, appErrors.CodeOf(err))
				require.Empty(t, store.updatedTokens)
				return
			}

			require.NoError(t, err)
			require.Equal(t, auth.Identity{UserID: user.ID, UserName: "alice"}, identity)
			if tt.wantRenewed {
				require.Equal(t, []string{"tok-valid"}, store.updatedTokens)
				require.Equal(t, testNow.Add(24*time.Hour), store.sessions["tok-valid"].ExpireAt)
			} else {
				require.Empty(t, store.updatedTokens)
			}
		})
	}
}

func TestCheckSessionOwnerGone(t *testing.T) {
	bt, store := newTestTracker(t)
	store.sessions["tok"] = auth.Session{Token: "tok", ExpireAt: testNow.Add(10 * time.Hour), UserID: "deleted-user"}

	_, err := bt.CheckSession(context.Background(), "tok")
	require.Equal(t, appErrors.ErrAuth, appErrors.CodeOf(err))
}

func TestLogoutEndsSession(t *testing.T) {
	bt, _ := newTestTracker(t)
	ctx := context.Background()
	registerTestUser(t, bt, "alice")

	token, _, err := bt.Login(ctx, auth.UserCredentialsPure{UserName: "alice", PasswordPlain: "Secret123"})
	require.NoError(t, err)

	_, err = bt.CheckSession(ctx, token)
	require.NoError(t, err)

	require.NoError(t, bt.Logout(ctx, token))

	_, err = bt.CheckSession(ctx, token)
	require.Equal(t, appErrors.ErrAuth, appErrors.CodeOf(err))
}

func TestSweepExpiredSessions(t *testing.T) {
	bt, store := newTestTracker(t)
	store.sessions["old"] = auth.Session{Token: "old", ExpireAt: testNow.Add(-time.Minute)}
	store.sessions["edge"] = auth.Session{Token: "edge", ExpireAt: testNow}
	store.sessions["live"] = auth.Session{Token: "live", ExpireAt: testNow.Add(time.Minute)}

	removed, err := bt.SweepExpiredSessions(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)
	require.Len(t, store.sessions, 1)
	require.Contains(t, store.sessions, "live")
}
