package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in the Password field.
type User struct {
	ID          int64
	Email       string
	Name        string
	Password    string
	IsActive    bool
	IsStaff     bool
	IsSuperuser bool
	LastLogin   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewUser builds an active, unprivileged user with a normalized email.
// The password must already be hashed.
func NewUser(email, name, passwordHash string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	return &User{
		Email:    email,
		Name:     strings.TrimSpace(name),
		Password: passwordHash,
		IsActive: true,
	}, nil
}

// NormalizeEmail lower-cases the domain part of an address and keeps the
// local part verbatim: "Test2@Example.com" becomes "Test2@example.com".
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// Session is one issued access token, revocable before it expires.
type Session struct {
	ID     string
	UserID int64
	Email  string
	Name   string
}
