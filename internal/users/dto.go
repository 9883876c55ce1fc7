package users

import (
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
)

// UserView is the user shape returned to clients.
type UserView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// FromModel maps a persisted user onto its API view.
func FromModel(user *models.User) UserView {
	return UserView{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}
