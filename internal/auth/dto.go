package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
)

// LoginRequest captures the admin credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminDTO is the admin profile returned to clients.
type AdminDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Phone       *string    `json:"phone,omitempty"`
	Role        enums.Role `json:"role"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// AdminLoginResponse carries the access token and the admin profile.
type AdminLoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Admin       AdminDTO  `json:"admin"`
}

func newAdminDTO(admin *models.AdminUser) AdminDTO {
	return AdminDTO{
		ID:          admin.ID,
		Email:       admin.Email,
		Name:        admin.Name,
		Phone:       admin.Phone,
		Role:        admin.Role,
		LastLoginAt: admin.LastLoginAt,
	}
}
