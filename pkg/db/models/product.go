package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog listing the cart validates against. Stock and price
// here are authoritative for every cart mutation.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex"`
	Description *string   `gorm:"column:description"`
	Image       string    `gorm:"column:image;not null"`
	PriceCents  int64     `gorm:"column:price_cents;not null"`
	Stock       int       `gorm:"column:stock;not null;default:0"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
