package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
	"github.com/lumera-labs/marketplace-backend/pkg/enums"
)

// UserDTO is the public shape of a user account.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Phone       *string        `json:"phone,omitempty"`
	Avatar      *string        `json:"avatar,omitempty"`
	Role        enums.UserRole `json:"role"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// UpdateProfileInput carries self-service profile edits. Nil fields are
// left untouched.
type UpdateProfileInput struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Phone  *string `json:"phone,omitempty"`
	Avatar *string `json:"avatar,omitempty" validate:"omitempty,url"`
}

func toDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Phone:       user.Phone,
		Avatar:      user.Avatar,
		Role:        user.Role,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
