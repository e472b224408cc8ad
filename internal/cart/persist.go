package cart

import (
	"encoding/json"
	"fmt"
)

// StorageKey is the key the cart is persisted under in the keyed local store.
const StorageKey = "sistema_comedores_cart"

// KeyedStore is the external persistence collaborator: a keyed blob store
// (a file per key, browser storage, etc.).
type KeyedStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// Save serializes the current cart as {items, totalPrice, itemCount}.
func Save(ks KeyedStore, s *Store) error {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := ks.Set(StorageKey, data); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

// Load restores a previously saved cart into s. The persisted totalPrice and
// itemCount are ignored: derived values are always recomputed from the items,
// so a stale cached derivation can never survive a reload. A missing key
// leaves the store untouched.
func Load(ks KeyedStore, s *Store) error {
	data, ok, err := ks.Get(StorageKey)
	if err != nil {
		return fmt.Errorf("read cart: %w", err)
	}
	if !ok {
		return nil
	}
	var saved Snapshot
	if err := json.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("decode cart: %w", err)
	}
	s.Restore(saved.Items)
	return nil
}
