package cart

import (
	"github.com/amontes/storefront-backend/pkg/db/models"
	"github.com/amontes/storefront-backend/pkg/money"
)

// LineView is the serializable projection of one cart line.
type LineView struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Image     string `json:"image"`
	Price     string `json:"price"`
	Qty       int    `json:"qty"`
}

// CartView is the plain, serializable cart handed to the presentation layer.
// All monetary fields are fixed 2-decimal strings.
type CartView struct {
	ID            string     `json:"id"`
	SessionCartID string     `json:"sessionCartId"`
	UserID        *string    `json:"userId,omitempty"`
	Items         []LineView `json:"items"`
	ItemsPrice    string     `json:"itemsPrice"`
	ShippingPrice string     `json:"shippingPrice"`
	TaxPrice      string     `json:"taxPrice"`
	TotalPrice    string     `json:"totalPrice"`
}

// NewCartView projects a persisted cart into its read model. It never mutates
// the source and is safe to call repeatedly and concurrently.
func NewCartView(record *models.Cart) *CartView {
	if record == nil {
		return nil
	}

	items := make([]LineView, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, LineView{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Slug:      item.Slug,
			Image:     item.Image,
			Price:     money.Cents(item.UnitPriceCents).String(),
			Qty:       item.Qty,
		})
	}

	view := &CartView{
		ID:            record.ID.String(),
		SessionCartID: record.SessionCartID,
		Items:         items,
		ItemsPrice:    money.Cents(record.ItemsCents).String(),
		ShippingPrice: money.Cents(record.ShippingCents).String(),
		TaxPrice:      money.Cents(record.TaxCents).String(),
		TotalPrice:    money.Cents(record.TotalCents).String(),
	}
	if record.UserID != nil {
		id := record.UserID.String()
		view.UserID = &id
	}
	return view
}
