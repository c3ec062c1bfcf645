package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amontes/storefront-backend/pkg/db"
	"github.com/amontes/storefront-backend/pkg/db/models"
	pkgerrors "github.com/amontes/storefront-backend/pkg/errors"
	"github.com/amontes/storefront-backend/pkg/logger"
	"github.com/amontes/storefront-backend/pkg/metrics"
	"github.com/amontes/storefront-backend/pkg/money"
	"github.com/amontes/storefront-backend/pkg/types"
)

// conflictRetries bounds how often a mutation re-runs after losing a
// version race against a concurrent writer.
const conflictRetries = 3

// Service exposes the cart mutation operations and the read projection.
type Service interface {
	AddItem(ctx context.Context, owner Owner, input AddItemInput) types.ActionResult
	DecrementItem(ctx context.Context, owner Owner, productID uuid.UUID) types.ActionResult
	SetItemQuantity(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) types.ActionResult
	RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID) types.ActionResult
	GetCart(ctx context.Context, owner Owner) (*CartView, error)
}

// AddItemInput is the caller-provided line snapshot for add-to-cart.
type AddItemInput struct {
	ProductID uuid.UUID
	Name      string
	Slug      string
	Image     string
	Price     string
	Qty       int
}

type service struct {
	repo    CartRepository
	catalog ProductLoader
	tx      txRunner
	pricing *Pricing
	notify  Notifier
	stats   *metrics.CartMetrics
	logg    *logger.Logger
}

// NewService builds a cart service backed by the provided stack. Notifier and
// metrics are optional.
func NewService(repo CartRepository, catalog ProductLoader, tx txRunner, pricing *Pricing, notify Notifier, stats *metrics.CartMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if pricing == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	return &service{
		repo:    repo,
		catalog: catalog,
		tx:      tx,
		pricing: pricing,
		notify:  notify,
		stats:   stats,
		logg:    logg,
	}, nil
}

// AddItem appends a new line or increases an existing one by input.Qty.
func (s *service) AddItem(ctx context.Context, owner Owner, input AddItemInput) types.ActionResult {
	return s.mutate(ctx, "add_item", owner, func(ctx context.Context) (string, error) {
		return s.addItem(ctx, owner, input)
	})
}

// DecrementItem lowers a line's quantity by one, removing the line at zero.
func (s *service) DecrementItem(ctx context.Context, owner Owner, productID uuid.UUID) types.ActionResult {
	return s.mutate(ctx, "decrement_item", owner, func(ctx context.Context) (string, error) {
		return s.decrementItem(ctx, owner, productID)
	})
}

// SetItemQuantity overwrites an existing line's quantity.
func (s *service) SetItemQuantity(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) types.ActionResult {
	return s.mutate(ctx, "set_quantity", owner, func(ctx context.Context) (string, error) {
		return s.setItemQuantity(ctx, owner, productID, quantity)
	})
}

// RemoveItem deletes a line regardless of its quantity.
func (s *service) RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID) types.ActionResult {
	return s.mutate(ctx, "remove_item", owner, func(ctx context.Context) (string, error) {
		return s.removeItem(ctx, owner, productID)
	})
}

// GetCart returns the read projection for the owner's cart, or nil when the
// owner has none yet.
func (s *service) GetCart(ctx context.Context, owner Owner) (*CartView, error) {
	if err := requireSession(owner); err != nil {
		return nil, err
	}
	record, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return NewCartView(record), nil
}

// mutate wraps one mutation attempt with conflict retries, result shaping,
// metrics, and the cart-changed signal.
func (s *service) mutate(ctx context.Context, operation string, owner Owner, fn func(ctx context.Context) (string, error)) types.ActionResult {
	var (
		message string
		err     error
	)
	for attempt := 0; attempt < conflictRetries; attempt++ {
		message, err = fn(ctx)
		if !errors.Is(err, ErrVersionConflict) {
			break
		}
	}

	if err != nil {
		s.stats.IncFailure(operation)
		return s.failure(ctx, operation, err)
	}

	s.stats.IncSuccess(operation)
	s.publishChanged(ctx, owner)
	return types.ActionResult{Success: true, Message: message}
}

func (s *service) failure(ctx context.Context, operation string, err error) types.ActionResult {
	if typed := pkgerrors.As(err); typed != nil {
		switch typed.Code() {
		case pkgerrors.CodeInternal, pkgerrors.CodeDependency:
			// fall through to the generic message below
		default:
			return types.ActionResult{Success: false, Message: typed.Message()}
		}
	}
	if s.logg != nil {
		ctx = s.logg.WithField(ctx, "operation", operation)
		s.logg.Error(ctx, "cart mutation failed", err)
	}
	return types.ActionResult{Success: false, Message: "Something went wrong, please try again"}
}

func (s *service) publishChanged(ctx context.Context, owner Owner) {
	if s.notify == nil {
		return
	}
	if err := s.notify.PublishCartChanged(ctx, ownerKey(owner)); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "owner", ownerKey(owner)), "cart changed signal failed")
	}
}

func (s *service) addItem(ctx context.Context, owner Owner, input AddItemInput) (string, error) {
	if err := requireSession(owner); err != nil {
		return "", err
	}
	priceCents, err := validateAddItemInput(input)
	if err != nil {
		return "", err
	}

	product, err := s.loadProduct(ctx, input.ProductID)
	if err != nil {
		return "", err
	}

	record, err := s.findCart(ctx, owner)
	if err != nil {
		return "", err
	}

	if record == nil {
		line := models.CartItem{
			ProductID:      product.ID,
			Name:           input.Name,
			Slug:           input.Slug,
			Image:          input.Image,
			UnitPriceCents: int64(priceCents),
			Qty:            input.Qty,
			Position:       0,
		}
		if product.Stock < input.Qty {
			return "", insufficientStock(product.Stock)
		}
		if err := s.createCart(ctx, owner, []models.CartItem{line}); err != nil {
			return "", err
		}
		return addMessage(product.Name, input.Qty, false), nil
	}

	items := cloneItems(record.Items)
	idx := findLine(items, product.ID)
	updated := idx >= 0

	if updated {
		if product.Stock < items[idx].Qty+input.Qty {
			return "", insufficientStock(product.Stock)
		}
		// The unit price captured when the line entered the cart is kept;
		// only the quantity moves.
		items[idx].Qty += input.Qty
	} else {
		if product.Stock < input.Qty {
			return "", insufficientStock(product.Stock)
		}
		items = append(items, models.CartItem{
			CartID:         record.ID,
			ProductID:      product.ID,
			Name:           input.Name,
			Slug:           input.Slug,
			Image:          input.Image,
			UnitPriceCents: int64(priceCents),
			Qty:            input.Qty,
			Position:       nextPosition(items),
		})
	}

	if err := s.saveCart(ctx, record, items); err != nil {
		return "", err
	}

	return addMessage(product.Name, input.Qty, updated), nil
}

func addMessage(name string, qty int, updated bool) string {
	unit := "item"
	if qty > 1 {
		unit = "items"
	}
	action := "added to"
	if updated {
		action = "updated in"
	}
	return fmt.Sprintf("%d %s of %s %s cart", qty, unit, name, action)
}

func (s *service) decrementItem(ctx context.Context, owner Owner, productID uuid.UUID) (string, error) {
	if err := requireSession(owner); err != nil {
		return "", err
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return "", err
	}

	record, err := s.requireCart(ctx, owner)
	if err != nil {
		return "", err
	}

	items := cloneItems(record.Items)
	idx := findLine(items, productID)
	if idx < 0 {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "Item not found")
	}

	removed := items[idx].Qty == 1
	if removed {
		items = append(items[:idx], items[idx+1:]...)
	} else {
		items[idx].Qty--
	}

	if err := s.saveCart(ctx, record, items); err != nil {
		return "", err
	}

	if removed {
		return fmt.Sprintf("%s was removed from cart", product.Name), nil
	}
	return fmt.Sprintf("%s quantity decreased", product.Name), nil
}

func (s *service) setItemQuantity(ctx context.Context, owner Owner, productID uuid.UUID, quantity int) (string, error) {
	if err := requireSession(owner); err != nil {
		return "", err
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return "", err
	}

	if quantity <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "Quantity must be greater than 0")
	}
	if product.Stock < quantity {
		return "", insufficientStock(product.Stock)
	}

	record, err := s.requireCart(ctx, owner)
	if err != nil {
		return "", err
	}

	items := cloneItems(record.Items)
	idx := findLine(items, productID)
	if idx < 0 {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "Item not found in cart")
	}

	message := fmt.Sprintf("%s quantity updated to %d", product.Name, quantity)
	if items[idx].Qty == quantity {
		// Nothing to write; the stored state already matches.
		return message, nil
	}
	items[idx].Qty = quantity

	if err := s.saveCart(ctx, record, items); err != nil {
		return "", err
	}
	return message, nil
}

func (s *service) removeItem(ctx context.Context, owner Owner, productID uuid.UUID) (string, error) {
	if err := requireSession(owner); err != nil {
		return "", err
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return "", err
	}

	record, err := s.requireCart(ctx, owner)
	if err != nil {
		return "", err
	}

	items := cloneItems(record.Items)
	idx := findLine(items, productID)
	if idx < 0 {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "Item not found")
	}
	items = append(items[:idx], items[idx+1:]...)

	if err := s.saveCart(ctx, record, items); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s removed from cart", product.Name), nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) findCart(ctx context.Context, owner Owner) (*models.Cart, error) {
	record, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return record, nil
}

func (s *service) requireCart(ctx context.Context, owner Owner) (*models.Cart, error) {
	record, err := s.findCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cart not found")
	}
	return record, nil
}

func (s *service) createCart(ctx context.Context, owner Owner, items []models.CartItem) error {
	totals := s.pricing.Calc(items)
	record := &models.Cart{
		SessionCartID: owner.SessionCartID,
		UserID:        owner.UserID,
		ItemsCents:    int64(totals.ItemsCents),
		ShippingCents: int64(totals.ShippingCents),
		TaxCents:      int64(totals.TaxCents),
		TotalCents:    int64(totals.TotalCents),
		Items:         items,
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, record)
		return err
	}); err != nil {
		// A concurrent request may have created the active cart first; the
		// retry will find it and increment instead.
		if db.IsUniqueViolation(err, "carts_active_session_idx") {
			return ErrVersionConflict
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return nil
}

// saveCart recomputes prices and persists items + totals as one guarded write.
func (s *service) saveCart(ctx context.Context, record *models.Cart, items []models.CartItem) error {
	totals := s.pricing.Calc(items)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).SaveSnapshot(ctx, record.ID, record.Version, items, totals)
	})
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return nil
}

func requireSession(owner Owner) error {
	if strings.TrimSpace(owner.SessionCartID) == "" {
		return pkgerrors.New(pkgerrors.CodeSessionMissing, "Cart session not found")
	}
	return nil
}

func validateAddItemInput(input AddItemInput) (money.Cents, error) {
	if input.ProductID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "Product is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "Name is required")
	}
	if strings.TrimSpace(input.Slug) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "Slug is required")
	}
	if strings.TrimSpace(input.Image) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "Image is required")
	}
	if input.Qty < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "Quantity must be a positive number")
	}
	return money.ParseAmount(input.Price)
}

func insufficientStock(available int) error {
	return pkgerrors.Newf(pkgerrors.CodeInsufficientStock, "Only %d items available in stock", available)
}

func ownerKey(owner Owner) string {
	if owner.UserID != nil {
		return owner.UserID.String()
	}
	return owner.SessionCartID
}

func findLine(items []models.CartItem, productID uuid.UUID) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func cloneItems(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}

func nextPosition(items []models.CartItem) int {
	next := 0
	for _, item := range items {
		if item.Position >= next {
			next = item.Position + 1
		}
	}
	return next
}
