package promo

// Kind is the closed set of promotion variants. The engine matches
// exhaustively over these; records with any other tag are rejected at the
// catalog boundary, never silently defaulted.
type Kind string

const (
	BuyXGetY           Kind = "BUY_X_GET_Y"
	BuyXPayY           Kind = "BUY_X_PAY_Y"
	PercentageDiscount Kind = "PERCENTAGE_DISCOUNT"
	FixedDiscount      Kind = "FIXED_DISCOUNT"
)

// Combo reports whether the promotion is contingent on a quantity/category
// relationship between cart lines, as opposed to a whole-order discount.
func (k Kind) Combo() bool {
	return k == BuyXGetY || k == BuyXPayY
}

// Promotion is one record of the externally supplied catalog. Fields beyond
// ID/Name/Kind are populated per variant; validate tags describe the shape
// each variant must satisfy before the engine will look at it.
type Promotion struct {
	ID   int64  `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	Kind Kind   `json:"type" validate:"required,oneof=BUY_X_GET_Y BUY_X_PAY_Y PERCENTAGE_DISCOUNT FIXED_DISCOUNT"`

	// BUY_X_GET_Y
	RequiredCategory    string `json:"requiredCategory,omitempty" validate:"required_if=Kind BUY_X_GET_Y"`
	FreeCategory        string `json:"freeCategory,omitempty" validate:"required_if=Kind BUY_X_GET_Y"`
	FreeQuantityGranted int    `json:"freeQuantityGranted,omitempty" validate:"required_if=Kind BUY_X_GET_Y,omitempty,gt=0"`

	// BUY_X_GET_Y and BUY_X_PAY_Y
	RequiredQuantity int `json:"requiredQuantity,omitempty" validate:"omitempty,gt=0"`
	// BUY_X_PAY_Y only; must be < RequiredQuantity.
	ChargedQuantity int `json:"chargedQuantity,omitempty" validate:"omitempty,gt=0"`

	// PERCENTAGE_DISCOUNT
	Percentage float64 `json:"percentage,omitempty" validate:"required_if=Kind PERCENTAGE_DISCOUNT,omitempty,gt=0,lte=100"`

	// FIXED_DISCOUNT
	AmountCents int64 `json:"amountCents,omitempty" validate:"required_if=Kind FIXED_DISCOUNT,omitempty,gt=0"`

	// PERCENTAGE_DISCOUNT and FIXED_DISCOUNT; zero means no floor.
	MinimumPurchaseCents int64 `json:"minimumPurchaseCents,omitempty" validate:"omitempty,gte=0"`
}

// ComboDetails records how a combo promotion matched the cart. Display-only.
type ComboDetails struct {
	RequiredCategory    string `json:"requiredCategory,omitempty"`
	FreeCategory        string `json:"freeCategory,omitempty"`
	RequiredQuantity    int    `json:"requiredQuantity"`
	ChargedQuantity     int    `json:"chargedQuantity,omitempty"`
	FreeQuantityApplied int    `json:"freeQuantityApplied,omitempty"`
}

// Applied is one promotion the engine selected, with the discount it yields.
type Applied struct {
	Kind          Kind          `json:"type"`
	Name          string        `json:"name"`
	DiscountCents int64         `json:"discountCents"`
	Details       *ComboDetails `json:"details,omitempty"`
}

// PricedCart is the engine's output: the subtotal, the selected promotions in
// catalog order, and the clamped total. Ephemeral; recomputed on every cart
// change, never stored.
type PricedCart struct {
	SubtotalCents int64     `json:"subtotalCents"`
	Applied       []Applied `json:"appliedPromotions"`
	DiscountCents int64     `json:"totalDiscountCents"`
	TotalCents    int64     `json:"totalCents"`
}
