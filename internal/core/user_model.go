package core

import (
	"context"
	"time"
)

// User roles. Admin manages settings and bulk operations; manager may
// authorize over-limit sales with their own identity; operator runs the
// counter.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleOperator = "operator"
)

// User represents an authenticated panel user.
type User struct {
	ID           int
	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}

// UserService provides user lookup and creation.
type UserService interface {
	// GetByUsername finds an active user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByID returns a user by primary key.
	GetByID(ctx context.Context, userID int) (*User, error)

	// Create inserts a user with a bcrypt-hashed password.
	Create(ctx context.Context, username, email, password, role string) (*User, error)
}
