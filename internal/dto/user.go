package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
)

// UserDTO represents the authenticated user in API responses. Credentials
// and token fields are never part of it.
type UserDTO struct {
	ID              uint64        `json:"id"`
	Username        string        `json:"username"`
	Email           string        `json:"email"`
	FullName        string        `json:"full_name"`
	Avatar          models.Avatar `json:"avatar"`
	IsEmailVerified bool          `json:"is_email_verified"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// UserSummaryDTO is the public view of another user
type UserSummaryDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
}

// AuthResponse is returned by login and token refresh
type AuthResponse struct {
	User         *UserDTO `json:"user,omitempty"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

type RegisterRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Username string `json:"username" form:"username" binding:"required,trimmed,lowercase,min=3"`
	Password string `json:"password" form:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" form:"full_name" binding:"omitempty,min=3"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"omitempty,email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" form:"old_password" binding:"required"`
	NewPassword string `json:"new_password" form:"new_password" binding:"required,min=8,max=72"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" form:"new_password" binding:"required,min=8,max=72"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		FullName:        user.FullName,
		Avatar:          user.Avatar,
		IsEmailVerified: user.IsEmailVerified,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

// ToUserSummaryDTO converts a User model to UserSummaryDTO
func ToUserSummaryDTO(user models.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Avatar:   user.Avatar.URL,
	}
}
