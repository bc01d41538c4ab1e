package core

import (
	"context"
	"time"
)

// User represents a staff account. Sales carry the acting user in sold_by;
// payment records in recorded_by.
type User struct {
	ID           int
	Name         string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}

// UserService provides user lookup and credential verification.
type UserService interface {
	// GetByEmail finds an active user by email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID returns a user by primary key.
	GetByID(ctx context.Context, userID int) (*User, error)

	// Authenticate verifies credentials and returns the user on success.
	Authenticate(ctx context.Context, email, password string) (*User, error)
}
