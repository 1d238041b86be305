package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techzonevn/storefront-backend/pkg/enums"
)

// User represents a storefront account.
type User struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email         string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash  string         `gorm:"column:password_hash;not null"`
	FullName      string         `gorm:"column:full_name;not null"`
	Phone         *string        `gorm:"column:phone"`
	Role          enums.UserRole `gorm:"column:role;not null;default:customer"`
	LifetimeSpend int64          `gorm:"column:lifetime_spend;not null;default:0"`
	IsActive      bool           `gorm:"column:is_active;not null"`
	LastLoginAt   *time.Time     `gorm:"column:last_login_at"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
