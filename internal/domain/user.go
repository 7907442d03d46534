package domain

import (
	"time"
)

// User is a registered account. PasswordHash never leaves the service.
type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	AvatarPath   string    `db:"avatar_path"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// CreateUserRequest is the body of POST /users/register.
type CreateUserRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=15"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6,max=12"`
	AvatarPath string `json:"avatarPath,omitempty" validate:"omitempty,imagefile"`
}

// LoginRequest is the body of POST /users/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
