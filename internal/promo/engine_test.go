package promo

import (
	"testing"

	"comedores/internal/cart"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapOf(items ...cart.Item) cart.Snapshot {
	store := cart.NewStore()
	store.Restore(items)
	return store.Snapshot()
}

func line(id int64, name string, priceCents int64, qty int, category string) cart.Item {
	return cart.Item{
		Type: cart.ItemProduct, ID: id, Name: name,
		UnitPriceCents: priceCents, Quantity: qty, Category: category,
	}
}

func TestPriceEmptyCart(t *testing.T) {
	catalog := []Promotion{
		{ID: 1, Name: "10%", Kind: PercentageDiscount, Percentage: 10},
	}

	priced := Price(cart.Snapshot{}, catalog)

	assert.Equal(t, int64(0), priced.SubtotalCents)
	assert.Equal(t, int64(0), priced.TotalCents)
	assert.Empty(t, priced.Applied)
}

func TestPriceEmptyCatalogIsIdentity(t *testing.T) {
	snap := snapOf(line(1, "Sandwich", 500, 3, "SANDWICH"))

	priced := Price(snap, nil)

	assert.Equal(t, int64(1500), priced.SubtotalCents)
	assert.Equal(t, int64(1500), priced.TotalCents)
	assert.Empty(t, priced.Applied)
}

func TestPriceIsPure(t *testing.T) {
	snap := snapOf(
		line(1, "Sandwich", 500, 3, "SANDWICH"),
		line(2, "Agua", 400, 2, "BEBIDA"),
	)
	catalog := []Promotion{
		{ID: 1, Name: "2x1 bebidas", Kind: BuyXGetY, RequiredCategory: "SANDWICH", FreeCategory: "BEBIDA", RequiredQuantity: 2, FreeQuantityGranted: 1},
		{ID: 2, Name: "10%", Kind: PercentageDiscount, Percentage: 10},
	}

	first := Price(snap, catalog)
	second := Price(snap, catalog)

	assert.Equal(t, first, second)
}

func TestBuyXGetYSameCategory(t *testing.T) {
	// 3 sandwiches at 5.00, buy 2 get 1 free within the category:
	// one qualifying group, one free unit, discount 5.00, total 10.00.
	snap := snapOf(line(1, "Sandwich", 500, 3, "SANDWICH"))
	catalog := []Promotion{{
		ID: 1, Name: "2+1 sandwiches", Kind: BuyXGetY,
		RequiredCategory: "SANDWICH", FreeCategory: "SANDWICH",
		RequiredQuantity: 2, FreeQuantityGranted: 1,
	}}

	priced := Price(snap, catalog)

	require.Len(t, priced.Applied, 1)
	applied := priced.Applied[0]
	assert.Equal(t, int64(500), applied.DiscountCents)
	require.NotNil(t, applied.Details)
	assert.Equal(t, 1, applied.Details.FreeQuantityApplied)
	assert.Equal(t, int64(1000), priced.TotalCents)
}

func TestBuyXGetYFreeUnitsCappedAtPresent(t *testing.T) {
	// 4 sandwiches grant 2 free drinks, but only 1 drink is in the cart.
	snap := snapOf(
		line(1, "Sandwich", 500, 4, "SANDWICH"),
		line(2, "Agua", 400, 1, "BEBIDA"),
	)
	catalog := []Promotion{{
		ID: 1, Name: "Bebida gratis", Kind: BuyXGetY,
		RequiredCategory: "SANDWICH", FreeCategory: "BEBIDA",
		RequiredQuantity: 2, FreeQuantityGranted: 1,
	}}

	priced := Price(snap, catalog)

	require.Len(t, priced.Applied, 1)
	assert.Equal(t, int64(400), priced.Applied[0].DiscountCents)
	assert.Equal(t, 1, priced.Applied[0].Details.FreeQuantityApplied)
}

func TestBuyXGetYUsesCheapestFreeUnit(t *testing.T) {
	snap := snapOf(
		line(1, "Sandwich", 500, 2, "SANDWICH"),
		line(2, "Jugo", 600, 1, "BEBIDA"),
		line(3, "Agua", 400, 1, "BEBIDA"),
	)
	catalog := []Promotion{{
		ID: 1, Name: "Bebida gratis", Kind: BuyXGetY,
		RequiredCategory: "SANDWICH", FreeCategory: "BEBIDA",
		RequiredQuantity: 2, FreeQuantityGranted: 1,
	}}

	priced := Price(snap, catalog)

	require.Len(t, priced.Applied, 1)
	assert.Equal(t, int64(400), priced.Applied[0].DiscountCents)
}

func TestBuyXGetYNoQualifyingGroup(t *testing.T) {
	snap := snapOf(line(1, "Sandwich", 500, 1, "SANDWICH"))
	catalog := []Promotion{{
		ID: 1, Name: "2+1", Kind: BuyXGetY,
		RequiredCategory: "SANDWICH", FreeCategory: "SANDWICH",
		RequiredQuantity: 2, FreeQuantityGranted: 1,
	}}

	priced := Price(snap, catalog)
	assert.Empty(t, priced.Applied)
	assert.Equal(t, int64(500), priced.TotalCents)
}

func TestBuyXPayY(t *testing.T) {
	// 3x2 on desserts: 3 flans at 7.00 pay 2, discount 7.00.
	snap := snapOf(line(1, "Flan", 700, 3, "POSTRE"))
	catalog := []Promotion{{
		ID: 1, Name: "3x2 postres", Kind: BuyXPayY,
		RequiredQuantity: 3, ChargedQuantity: 2,
	}}

	priced := Price(snap, catalog)

	require.Len(t, priced.Applied, 1)
	assert.Equal(t, int64(700), priced.Applied[0].DiscountCents)
	assert.Equal(t, int64(1400), priced.TotalCents)
	require.NotNil(t, priced.Applied[0].Details)
	assert.Equal(t, "POSTRE", priced.Applied[0].Details.RequiredCategory)
}

func TestBuyXPayYScalesByCompleteGroups(t *testing.T) {
	// 7 units form 2 complete groups of 3; the 7th unit earns nothing.
	snap := snapOf(line(1, "Flan", 700, 7, "POSTRE"))
	catalog := []Promotion{{
		ID: 1, Name: "3x2", Kind: BuyXPayY,
		RequiredQuantity: 3, ChargedQuantity: 2,
	}}

	priced := Price(snap, catalog)
	require.Len(t, priced.Applied, 1)
	assert.Equal(t, int64(1400), priced.Applied[0].DiscountCents)
}

func TestBuyXPayYRejectsChargedNotBelowRequired(t *testing.T) {
	snap := snapOf(line(1, "Flan", 700, 3, "POSTRE"))
	catalog := []Promotion{{
		ID: 1, Name: "broken", Kind: BuyXPayY,
		RequiredQuantity: 2, ChargedQuantity: 2,
	}}

	assert.Empty(t, Price(snap, catalog).Applied)
}

func TestPercentageDiscountMinimumPurchase(t *testing.T) {
	snap := snapOf(line(1, "Combo", 10000, 1, "COMBO"))

	met := Price(snap, []Promotion{{
		ID: 1, Name: "10%", Kind: PercentageDiscount, Percentage: 10, MinimumPurchaseCents: 5000,
	}})
	assert.Equal(t, int64(9000), met.TotalCents)

	notMet := Price(snap, []Promotion{{
		ID: 1, Name: "10%", Kind: PercentageDiscount, Percentage: 10, MinimumPurchaseCents: 15000,
	}})
	assert.Empty(t, notMet.Applied)
	assert.Equal(t, int64(10000), notMet.TotalCents)
}

func TestFixedDiscountCappedAtSubtotal(t *testing.T) {
	snap := snapOf(line(1, "Agua", 400, 1, "BEBIDA"))
	catalog := []Promotion{{
		ID: 1, Name: "Vale 10", Kind: FixedDiscount, AmountCents: 1000,
	}}

	priced := Price(snap, catalog)

	require.Len(t, priced.Applied, 1)
	assert.Equal(t, int64(400), priced.Applied[0].DiscountCents)
	assert.Equal(t, int64(0), priced.TotalCents, "total clamps at zero, never negative")
}

func TestWholeOrderDiscountsMutuallyExclusive(t *testing.T) {
	snap := snapOf(line(1, "Combo", 10000, 1, "COMBO"))
	catalog := []Promotion{
		{ID: 1, Name: "5 fijo", Kind: FixedDiscount, AmountCents: 500},
		{ID: 2, Name: "10%", Kind: PercentageDiscount, Percentage: 10},
	}

	priced := Price(snap, catalog)

	require.Len(t, priced.Applied, 1, "only the best whole-order discount applies")
	assert.Equal(t, "10%", priced.Applied[0].Name)
	assert.Equal(t, int64(9000), priced.TotalCents)
}

func TestWholeOrderTieBreakPrefersEarlierCatalogEntry(t *testing.T) {
	snap := snapOf(line(1, "Combo", 10000, 1, "COMBO"))
	catalog := []Promotion{
		{ID: 1, Name: "primero", Kind: FixedDiscount, AmountCents: 1000},
		{ID: 2, Name: "segundo", Kind: PercentageDiscount, Percentage: 10},
	}

	priced := Price(snap, catalog)

	require.Len(t, priced.Applied, 1)
	assert.Equal(t, "primero", priced.Applied[0].Name)
}

func TestCombosStackWithEachOtherAndOneWholeOrder(t *testing.T) {
	snap := snapOf(
		line(1, "Sandwich", 500, 2, "SANDWICH"),
		line(2, "Agua", 400, 1, "BEBIDA"),
		line(3, "Flan", 700, 3, "POSTRE"),
	)
	// Subtotal: 1000 + 400 + 2100 = 3500.
	catalog := []Promotion{
		{ID: 1, Name: "Bebida gratis", Kind: BuyXGetY, RequiredCategory: "SANDWICH", FreeCategory: "BEBIDA", RequiredQuantity: 2, FreeQuantityGranted: 1},
		{ID: 2, Name: "3x2 postres", Kind: BuyXPayY, RequiredQuantity: 3, ChargedQuantity: 2},
		{ID: 3, Name: "10%", Kind: PercentageDiscount, Percentage: 10},
		{ID: 4, Name: "2 fijo", Kind: FixedDiscount, AmountCents: 200},
	}

	priced := Price(snap, catalog)

	require.Len(t, priced.Applied, 3)
	assert.Equal(t, "Bebida gratis", priced.Applied[0].Name)
	assert.Equal(t, "3x2 postres", priced.Applied[1].Name)
	assert.Equal(t, "10%", priced.Applied[2].Name)

	// Each promotion was evaluated against the original cart: 400 + 700 + 350.
	assert.Equal(t, int64(1450), priced.DiscountCents)
	assert.Equal(t, int64(2050), priced.TotalCents)
}

func TestPromotionsEvaluatedAgainstOriginalCart(t *testing.T) {
	// The percentage discount is computed over the full subtotal even though
	// a combo already discounted some of those units. Documented product
	// behavior: overlaps are allowed, no running remainder.
	snap := snapOf(line(1, "Sandwich", 500, 3, "SANDWICH"))
	catalog := []Promotion{
		{ID: 1, Name: "2+1", Kind: BuyXGetY, RequiredCategory: "SANDWICH", FreeCategory: "SANDWICH", RequiredQuantity: 2, FreeQuantityGranted: 1},
		{ID: 2, Name: "10%", Kind: PercentageDiscount, Percentage: 10},
	}

	priced := Price(snap, catalog)

	require.Len(t, priced.Applied, 2)
	assert.Equal(t, int64(500), priced.Applied[0].DiscountCents)
	assert.Equal(t, int64(150), priced.Applied[1].DiscountCents, "10% of the original 1500, not of 1000")
}
