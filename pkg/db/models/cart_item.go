package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one product line inside a Cart. Name, slug, image, and the unit
// price are display snapshots captured when the line entered the cart.
// Position preserves insertion order for display.
type CartItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID         uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_product"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_product"`
	Name           string    `gorm:"column:name;not null"`
	Slug           string    `gorm:"column:slug;not null"`
	Image          string    `gorm:"column:image;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	Position       int       `gorm:"column:position;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
