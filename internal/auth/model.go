package auth

import (
	"time"
)

const (
	MAX_LENGTH_USERNAME = 255
	MAX_LENGTH_EMAIL    = 255
)

type User struct {
	ID             string
	UserName       string
	PasswordHashed string
	Email          string
	CreatedAt      time.Time
}

type NewUser struct {
	UserName      string
	PasswordPlain string
	Email         string
}

type Session struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpireAt  time.Time
	UserID    string
}

type UserCredentialsPure struct {
	UserName      string
	PasswordPlain string
}

// Identity is the authenticated caller, passed explicitly to core operations.
type Identity struct {
	UserID   string
	UserName string
}
