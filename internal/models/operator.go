// internal/models/operator.go
// Minimal operator (coach/admin) account used to gate mutating game routes.
// There is no public registration flow or email collaborator in this
// service, so the model is intentionally smaller than a full user system.

package models

import "time"

// Operator is an account allowed to control games (start/stop, confirm
// rotations, emergency substitutions). Accounts are provisioned out of
// band (migration / admin tooling), not via self-service signup.
type Operator struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// TokenPair represents JWT access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// LoginRequest represents operator authentication credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}
