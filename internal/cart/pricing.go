package cart

import (
	"github.com/shopspring/decimal"

	"github.com/amontes/storefront-backend/pkg/config"
	"github.com/amontes/storefront-backend/pkg/db/models"
	"github.com/amontes/storefront-backend/pkg/money"
)

// Totals carries the derived cart prices in cents.
type Totals struct {
	ItemsCents    money.Cents
	ShippingCents money.Cents
	TaxCents      money.Cents
	TotalCents    money.Cents
}

// Pricing computes cart totals. Shipping is free above the threshold,
// otherwise flat; tax applies to the pre-shipping subtotal.
type Pricing struct {
	freeShippingThreshold money.Cents
	flatShipping          money.Cents
	taxRate               decimal.Decimal
}

// NewPricing builds a pricing engine from configuration.
func NewPricing(cfg config.PricingConfig) (*Pricing, error) {
	threshold, err := money.ParseAmount(cfg.FreeShippingThreshold)
	if err != nil {
		return nil, err
	}
	flat, err := money.ParseAmount(cfg.FlatShipping)
	if err != nil {
		return nil, err
	}
	rate, err := money.ParseRate(cfg.TaxRate)
	if err != nil {
		return nil, err
	}
	return &Pricing{
		freeShippingThreshold: threshold,
		flatShipping:          flat,
		taxRate:               rate,
	}, nil
}

// Calc derives the cart totals from the item list. Pure and deterministic;
// it must run after every item mutation and its result persists together with
// the items.
func (p *Pricing) Calc(items []models.CartItem) Totals {
	var itemsCents money.Cents
	for _, item := range items {
		itemsCents += money.Cents(item.UnitPriceCents).Mul(item.Qty)
	}

	shipping := p.flatShipping
	if itemsCents >= p.freeShippingThreshold {
		shipping = 0
	}

	tax := itemsCents.MulRateRound2(p.taxRate)

	return Totals{
		ItemsCents:    itemsCents,
		ShippingCents: shipping,
		TaxCents:      tax,
		TotalCents:    itemsCents + tax + shipping,
	}
}
