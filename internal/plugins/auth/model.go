// Package auth handles user accounts, credential verification, signed
// session tokens, and the password reset lifecycle for YojanaHub. It
// provides registration, login, logout, session validation, and the
// saved-scheme bookmarks stored on the user record.
//
// This is a CORE plugin -- always enabled, cannot be disabled.
package auth

import (
	"time"
)

// User represents a registered YojanaHub user. This is the domain model used
// throughout the application. Database scanning and JSON marshaling use this
// struct directly; credential and reset fields never serialize.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never expose in JSON responses.
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`

	// Reset token state. Both fields are set together by the forgot-password
	// flow and cleared together when the token is consumed. Never exposed.
	ResetTokenHash      *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
}

// PublicUser is the projection of a user record safe to return to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public returns the client-safe projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// --- Request DTOs (bound from HTTP requests) ---

// RegisterRequest holds the data submitted to POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest holds the data submitted to POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest holds the data submitted to POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest holds the data submitted to POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// SaveSchemeRequest holds the data submitted to save or unsave a scheme.
type SaveSchemeRequest struct {
	SchemeID string `json:"schemeId"`
}

// --- Service Input DTOs (passed from handler to service) ---

// RegisterInput is the validated input for creating a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput is the validated input for authenticating a user.
type LoginInput struct {
	Email    string
	Password string
}
