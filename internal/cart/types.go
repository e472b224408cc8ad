package cart

// ItemType distinguishes plain menu products from combos. The pair
// (ItemType, ItemID) is the identity of a cart line.
type ItemType string

const (
	ItemProduct ItemType = "PRODUCT"
	ItemCombo   ItemType = "COMBO"
)

// Key identifies a cart line. A cart holds at most one line per key.
type Key struct {
	Type ItemType
	ID   int64
}

type Item struct {
	Type           ItemType `json:"itemType"`
	ID             int64    `json:"itemId"`
	Name           string   `json:"itemName"`
	UnitPriceCents int64    `json:"unitPriceCents"`
	Quantity       int      `json:"quantity"`
	ImageURL       string   `json:"imageUrl,omitempty"`
	Category       string   `json:"category,omitempty"`
}

func (it Item) Key() Key {
	return Key{Type: it.Type, ID: it.ID}
}

// Snapshot is an immutable copy of the cart at a point in time. It is what
// observers receive, what the pricing engine consumes and what checkout
// submits. TotalPriceCents and ItemCount are always recomputed from Items.
type Snapshot struct {
	Items           []Item `json:"items"`
	TotalPriceCents int64  `json:"totalPrice"`
	ItemCount       int    `json:"itemCount"`
}

func (s Snapshot) Empty() bool {
	return len(s.Items) == 0
}
