package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Banner is a homepage hero/slider entry.
type Banner struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Title     string     `gorm:"column:title;not null"`
	ImageURL  string     `gorm:"column:image_url;not null"`
	LinkURL   *string    `gorm:"column:link_url"`
	Position  int        `gorm:"column:position;not null;default:0"`
	IsActive  bool       `gorm:"column:is_active;not null"`
	StartAt   *time.Time `gorm:"column:start_at"`
	EndAt     *time.Time `gorm:"column:end_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Banner) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
