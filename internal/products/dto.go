package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/amontes/storefront-backend/pkg/db/models"
	"github.com/amontes/storefront-backend/pkg/money"
)

// ProductDTO represents the catalog payload returned to clients. Price is a
// fixed 2-decimal string.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	Image       string    `json:"image"`
	Price       string    `json:"price"`
	Stock       int       `json:"stock"`
	InStock     bool      `json:"inStock"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(row *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:          row.ID,
		Name:        row.Name,
		Slug:        row.Slug,
		Description: row.Description,
		Image:       row.Image,
		Price:       money.Cents(row.PriceCents).String(),
		Stock:       row.Stock,
		InStock:     row.Stock > 0,
		CreatedAt:   row.CreatedAt,
	}
}
