package auth

import (
	"github.com/google/uuid"

	"github.com/lumera-labs/marketplace-backend/pkg/enums"
)

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Name     string  `json:"name" validate:"required,min=1,max=120"`
	Phone    *string `json:"phone,omitempty"`
}

// LoginInput is the payload for credential login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshInput carries the expired access token and its refresh token.
type RefreshInput struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AccountDTO is the slim user view embedded in auth responses.
type AccountDTO struct {
	ID    uuid.UUID      `json:"id"`
	Email string         `json:"email"`
	Name  string         `json:"name"`
	Role  enums.UserRole `json:"role"`
}

// TokenPairDTO is an issued access/refresh token pair.
type TokenPairDTO struct {
	AccessToken   string `json:"access_token"`
	RefreshToken  string `json:"refresh_token"`
	TokenType     string `json:"token_type"`
	ExpiresInSecs int64  `json:"expires_in"`
}

// AuthResultDTO is returned from register, login, and refresh.
type AuthResultDTO struct {
	User   AccountDTO   `json:"user"`
	Tokens TokenPairDTO `json:"tokens"`
}
