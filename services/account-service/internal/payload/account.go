package payload

import "github.com/vasapolrittideah/shopit-api/services/account-service/internal/model"

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=30"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest carries no validation tags: missing credentials get a dedicated message.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password"        validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword"`
}

type UpdatePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	Password    string `json:"password"    validate:"required,min=6"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"  validate:"required,max=30"`
	Email string `json:"email" validate:"required,email"`
}

type AdminUpdateUserRequest struct {
	Name  string     `json:"name"  validate:"required,max=30"`
	Email string     `json:"email" validate:"required,email"`
	Role  model.Role `json:"role"  validate:"required,oneof=user admin"`
}

type ListUsersQuery struct {
	Email string     `json:"email" validate:"omitempty,email"`
	Role  model.Role `json:"role"  validate:"omitempty,oneof=user admin"`
}

type AuthResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

type UserResponse struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user"`
}

type UsersResponse struct {
	Success bool          `json:"success"`
	Users   []*model.User `json:"users"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
