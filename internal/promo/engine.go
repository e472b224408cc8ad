package promo

import (
	"math"

	"comedores/internal/cart"
)

// Price evaluates the catalog against a cart snapshot and returns the priced
// breakdown. Pure and deterministic: no I/O, no state, same inputs give the
// same output.
//
// Every promotion is evaluated against the original cart composition, not
// against a cart reduced by previously applied promotions. Discounts of the
// selected promotions are then summed. Two promotions can therefore overlap
// on the same units; that is the product rule, not an accident.
//
// Selection: combo promotions stack with each other. Whole-order promotions
// (percentage, fixed) are mutually exclusive; only the one with the largest
// discount is kept, earlier catalog position winning ties. The winning
// whole-order discount stacks on top of the combos.
func Price(snap cart.Snapshot, catalog []Promotion) PricedCart {
	priced := PricedCart{SubtotalCents: snap.TotalPriceCents}

	var combos []Applied
	var bestWhole *Applied
	for _, p := range catalog {
		applied, ok := evaluate(snap, p)
		if !ok || applied.DiscountCents <= 0 {
			continue
		}
		if p.Kind.Combo() {
			combos = append(combos, applied)
			continue
		}
		if bestWhole == nil || applied.DiscountCents > bestWhole.DiscountCents {
			a := applied
			bestWhole = &a
		}
	}

	priced.Applied = combos
	if bestWhole != nil {
		priced.Applied = append(priced.Applied, *bestWhole)
	}
	for _, a := range priced.Applied {
		priced.DiscountCents += a.DiscountCents
	}

	priced.TotalCents = priced.SubtotalCents - priced.DiscountCents
	if priced.TotalCents < 0 {
		priced.TotalCents = 0
	}
	return priced
}

func evaluate(snap cart.Snapshot, p Promotion) (Applied, bool) {
	switch p.Kind {
	case BuyXGetY:
		return evaluateBuyXGetY(snap, p)
	case BuyXPayY:
		return evaluateBuyXPayY(snap, p)
	case PercentageDiscount:
		if p.MinimumPurchaseCents > 0 && snap.TotalPriceCents < p.MinimumPurchaseCents {
			return Applied{}, false
		}
		discount := int64(math.Round(float64(snap.TotalPriceCents) * p.Percentage / 100))
		return Applied{Kind: p.Kind, Name: p.Name, DiscountCents: discount}, true
	case FixedDiscount:
		if snap.TotalPriceCents < p.MinimumPurchaseCents {
			return Applied{}, false
		}
		discount := p.AmountCents
		if discount > snap.TotalPriceCents {
			discount = snap.TotalPriceCents
		}
		return Applied{Kind: p.Kind, Name: p.Name, DiscountCents: discount}, true
	}
	return Applied{}, false
}

func evaluateBuyXGetY(snap cart.Snapshot, p Promotion) (Applied, bool) {
	if p.RequiredQuantity <= 0 || p.FreeQuantityGranted <= 0 {
		return Applied{}, false
	}
	required := unitsInCategory(snap, p.RequiredCategory)
	groups := required / p.RequiredQuantity
	if groups == 0 {
		return Applied{}, false
	}

	free := groups * p.FreeQuantityGranted
	if present := unitsInCategory(snap, p.FreeCategory); free > present {
		free = present
	}
	if free == 0 {
		return Applied{}, false
	}

	cheapest, ok := cheapestUnitPrice(snap, p.FreeCategory)
	if !ok {
		return Applied{}, false
	}

	return Applied{
		Kind:          p.Kind,
		Name:          p.Name,
		DiscountCents: int64(free) * cheapest,
		Details: &ComboDetails{
			RequiredCategory:    p.RequiredCategory,
			FreeCategory:        p.FreeCategory,
			RequiredQuantity:    p.RequiredQuantity,
			FreeQuantityApplied: free,
		},
	}, true
}

// evaluateBuyXPayY finds complete required-quantity groups within each
// category present in the cart and charges only ChargedQuantity units per
// group, at that category's cheapest unit price. Contributions from all
// matching categories are summed into a single applied promotion; the
// details record names the category that contributed most.
func evaluateBuyXPayY(snap cart.Snapshot, p Promotion) (Applied, bool) {
	if p.RequiredQuantity <= 0 || p.ChargedQuantity <= 0 || p.ChargedQuantity >= p.RequiredQuantity {
		return Applied{}, false
	}

	var total int64
	var bestCategory string
	var bestContribution int64
	for _, category := range categoriesInOrder(snap) {
		groups := unitsInCategory(snap, category) / p.RequiredQuantity
		if groups == 0 {
			continue
		}
		unit, ok := cheapestUnitPrice(snap, category)
		if !ok {
			continue
		}
		contribution := int64(groups) * int64(p.RequiredQuantity-p.ChargedQuantity) * unit
		total += contribution
		if contribution > bestContribution {
			bestContribution = contribution
			bestCategory = category
		}
	}
	if total == 0 {
		return Applied{}, false
	}

	return Applied{
		Kind:          p.Kind,
		Name:          p.Name,
		DiscountCents: total,
		Details: &ComboDetails{
			RequiredCategory: bestCategory,
			RequiredQuantity: p.RequiredQuantity,
			ChargedQuantity:  p.ChargedQuantity,
		},
	}, true
}

func unitsInCategory(snap cart.Snapshot, category string) int {
	count := 0
	for _, it := range snap.Items {
		if it.Category == category {
			count += it.Quantity
		}
	}
	return count
}

func cheapestUnitPrice(snap cart.Snapshot, category string) (int64, bool) {
	var cheapest int64
	found := false
	for _, it := range snap.Items {
		if it.Category != category {
			continue
		}
		if !found || it.UnitPriceCents < cheapest {
			cheapest = it.UnitPriceCents
			found = true
		}
	}
	return cheapest, found
}

// categoriesInOrder returns the distinct non-empty categories in cart display
// order, so evaluation order is stable across calls.
func categoriesInOrder(snap cart.Snapshot) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range snap.Items {
		if it.Category == "" || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		out = append(out, it.Category)
	}
	return out
}
