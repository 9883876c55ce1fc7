package auth

import "github.com/angelmondragon/storefront-backend/internal/users"

// RegisterRequest is the typed registration payload.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// LoginRequest is the typed login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the minted access token and the user view.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	User        users.UserView `json:"user"`
}

// RegisterResponse carries the created user view.
type RegisterResponse struct {
	User users.UserView `json:"user"`
}
