package dto

import "time"

type RegisterRequest struct {
	Account      string `json:"account" binding:"required,min=3,max=100"`
	Password     string `json:"password" binding:"required,min=6"`
	Name         string `json:"name" binding:"required,max=100"`
	DepartmentID *uint  `json:"department_id"`
	Supervisor   bool   `json:"supervisor"`
}

type LoginRequest struct {
	Account  string `json:"account" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public projection of a user. It never carries the
// password hash.
type UserResponse struct {
	ID           uint   `json:"id"`
	Account      string `json:"account"`
	Name         string `json:"name"`
	Supervisor   bool   `json:"supervisor"`
	DepartmentID *uint  `json:"department_id,omitempty"`
	Department   string `json:"department,omitempty"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}
