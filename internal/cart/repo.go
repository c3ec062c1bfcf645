package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amontes/storefront-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository returns the GORM-backed cart repository.
func NewRepository(db *gorm.DB) CartRepository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindByOwner loads the active cart for the owner, preferring the user id over
// the anonymous session key.
func (r *repository) FindByOwner(ctx context.Context, owner Owner) (*models.Cart, error) {
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("status = ?", "active")

	if owner.UserID != nil {
		query = query.Where("user_id = ?", *owner.UserID)
	} else {
		query = query.Where("session_cart_id = ?", owner.SessionCartID)
	}

	var record models.Cart
	if err := query.First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// SaveSnapshot replaces all lines and derived prices of a cart in one write.
// The update is guarded by the expected version so a concurrent writer makes
// this attempt fail with ErrVersionConflict instead of clobbering its work.
func (r *repository) SaveSnapshot(ctx context.Context, cartID uuid.UUID, expectedVersion int64, items []models.CartItem, totals Totals) error {
	res := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND version = ?", cartID, expectedVersion).
		Updates(map[string]any{
			"items_cents":    int64(totals.ItemsCents),
			"shipping_cents": int64(totals.ShippingCents),
			"tax_cents":      int64(totals.TaxCents),
			"total_cents":    int64(totals.TotalCents),
			"version":        expectedVersion + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("update cart totals: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	rows := make([]models.CartItem, len(items))
	copy(rows, items)
	for i := range rows {
		rows[i].ID = uuid.New()
		rows[i].CartID = cartID
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("insert cart items: %w", err)
	}
	return nil
}
