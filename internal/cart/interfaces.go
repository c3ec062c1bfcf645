package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amontes/storefront-backend/pkg/db/models"
)

// ErrVersionConflict signals that a cart was modified between the read and the
// guarded write of a mutation cycle. The whole operation retries on it.
var ErrVersionConflict = errors.New("cart version conflict")

// Owner identifies who the cart belongs to. The authenticated user id is
// preferred for lookup; the session key is required either way.
type Owner struct {
	SessionCartID string
	UserID        *uuid.UUID
}

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByOwner(ctx context.Context, owner Owner) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	// SaveSnapshot replaces the cart's items and derived prices in one write,
	// guarded by the expected version. Returns ErrVersionConflict when the
	// stored version moved on.
	SaveSnapshot(ctx context.Context, cartID uuid.UUID, expectedVersion int64, items []models.CartItem, totals Totals) error
}

// ProductLoader is the stock oracle the cart validates every mutation against.
type ProductLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Notifier broadcasts that a cart changed so dependent views can re-fetch.
type Notifier interface {
	PublishCartChanged(ctx context.Context, ownerKey string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
