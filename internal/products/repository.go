package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amontes/storefront-backend/pkg/db/models"
	"github.com/amontes/storefront-backend/pkg/pagination"
)

// Repository wires together product catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads the product row. Inactive products are still returned so a
// cart holding one can surface the state to the shopper.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var row models.Product
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindBySlug loads an active product by its URL slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var row models.Product
	if err := r.db.WithContext(ctx).
		First(&row, "slug = ? AND is_active = ?", slug, true).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

type listQuery struct {
	search string
	limit  int
	cursor *pagination.Cursor
}

// List returns a page of active products, newest first, plus the cursor for
// the next page when one exists.
func (r *Repository) List(ctx context.Context, params listQuery) ([]models.Product, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.limit)
	normalized := pagination.NormalizeLimit(params.limit)

	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true)
	if search := strings.TrimSpace(params.search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if params.cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.cursor.CreatedAt, params.cursor.ID)
	}

	var rows []models.Product
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}
