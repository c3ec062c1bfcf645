package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/amontes/storefront-backend/pkg/enums"
)

// Cart is the persisted shopper cart, keyed by the anonymous session and
// optionally by the signed-in user. Derived price fields are recomputed on
// every mutation and never stored stale; Version guards concurrent
// read-modify-write cycles.
type Cart struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionCartID  string           `gorm:"column:session_cart_id;not null;index"`
	UserID         *uuid.UUID       `gorm:"column:user_id;type:uuid;index"`
	Status         enums.CartStatus `gorm:"column:status;not null;default:'active'"`
	ItemsCents     int64            `gorm:"column:items_cents;not null;default:0"`
	ShippingCents  int64            `gorm:"column:shipping_cents;not null;default:0"`
	TaxCents       int64            `gorm:"column:tax_cents;not null;default:0"`
	TotalCents     int64            `gorm:"column:total_cents;not null;default:0"`
	Version        int64            `gorm:"column:version;not null;default:1"`
	Items          []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
