package auth

import (
	"time"

	"printstock/internal/common"
)

// User model - owner of every inventory record
type User struct {
	common.BaseModel
	Username     string       `json:"username" gorm:"uniqueIndex;not null;size:50"`
	Email        string       `json:"email" gorm:"uniqueIndex;not null;size:100"`
	PasswordHash string       `json:"-" gorm:"not null;size:255"`
	IsActive     bool         `json:"is_active" gorm:"default:true"`
	LastLogin    *time.Time   `json:"last_login,omitempty"`
	ProfileData  common.JSONB `json:"profile_data,omitempty" gorm:"type:jsonb"`
}

// RegisterRequest represents the request to create an account
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the request to log in
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the signed token and the public user fields
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
