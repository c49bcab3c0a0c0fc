package domain

import "time"

// Principal is an authenticated owner account.
type Principal struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Registration struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=8,max=128"`
	Name     string `validate:"max=255"`
}

type Session struct {
	Token     string
	ExpiresAt time.Time
}
