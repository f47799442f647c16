// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type RegisterRequest struct {
	Email     string `json:"email"      validate:"required,email,max=255"`
	Password  string `json:"password"   validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name"  validate:"required,min=1,max=100"`
	Phone     string `json:"phone"      validate:"required,min=3,max=32"`
	Address   string `json:"address"    validate:"omitempty,max=500"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"omitempty"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type AccountResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Verified  bool   `json:"verified"`
}

type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AuthResponse struct {
	Account AccountResponse `json:"account"`
	Tokens  TokenResponse   `json:"tokens"`
}

// RegisterResponse deliberately carries no tokens: a fresh account cannot
// log in until the email address is verified.
type RegisterResponse struct {
	Account AccountResponse `json:"account"`
	Message string          `json:"message"`
}

type RenewResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// MeResponse carries exactly what the access token proves about the caller.
// Verification status is not a claim, so it is not echoed here.
type MeResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toAccountResponse(info *AccountInfo) AccountResponse {
	return AccountResponse{
		ID:        info.ID,
		Email:     info.Email,
		FirstName: info.FirstName,
		LastName:  info.LastName,
		Role:      info.Role,
		Verified:  info.Verified,
	}
}
