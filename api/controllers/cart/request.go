package cart

// AddItemRequest is the payload for adding a product to the cart. Price is
// the client-side display snapshot as a fixed 2-decimal string; the service
// validates the product and stock against the catalog.
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Name      string `json:"name" validate:"required,max=255"`
	Slug      string `json:"slug" validate:"required,max=255"`
	Image     string `json:"image" validate:"required,max=1024"`
	Price     string `json:"price" validate:"required"`
	Qty       int    `json:"qty" validate:"required,min=1"`
}

// SetQuantityRequest overwrites a line's quantity.
type SetQuantityRequest struct {
	Qty int `json:"qty" validate:"required,min=1"`
}
