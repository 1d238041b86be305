package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/techzonevn/storefront-backend/pkg/db/models"
	"github.com/techzonevn/storefront-backend/pkg/enums"
)

// UserDTO is a user as the API shows it. The password hash never leaves the
// package boundary.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	FullName    string         `json:"full_name"`
	Phone       *string        `json:"phone,omitempty"`
	Role        enums.UserRole `json:"role"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ProfileDTO is the body of GET /me. NextTier and AmountToNextTier are absent
// once the customer holds the top tier.
type ProfileDTO struct {
	*UserDTO
	Tier             enums.CustomerTier  `json:"tier"`
	LifetimeSpend    int64               `json:"lifetime_spend"`
	NextTier         *enums.CustomerTier `json:"next_tier,omitempty"`
	AmountToNextTier *int64              `json:"amount_to_next_tier,omitempty"`
}

// NewUser is what Repository.Create needs. Role defaults to customer and the
// account starts active unless Disabled is set.
type NewUser struct {
	Email        string
	PasswordHash string
	FullName     string
	Phone        *string
	Role         enums.UserRole
	Disabled     bool
}

func (n NewUser) Model() *models.User {
	role := n.Role
	if role == "" {
		role = enums.UserRoleCustomer
	}
	return &models.User{
		Email:        strings.ToLower(strings.TrimSpace(n.Email)),
		PasswordHash: n.PasswordHash,
		FullName:     n.FullName,
		Phone:        n.Phone,
		Role:         role,
		IsActive:     !n.Disabled,
	}
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	dto := UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Phone:       u.Phone,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	return &dto
}
