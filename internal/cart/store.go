package cart

import "sync"

// Store is the single source of truth for what the user intends to order.
// Every mutation notifies subscribers synchronously with a fresh Snapshot,
// so dependent computations (pricing, badge counters) never observe a
// half-applied change. Mutations never fail: unknown identities and
// non-positive quantities degrade to no-ops or removals.
type Store struct {
	mu    sync.Mutex
	items []Item
	subs  map[int]func(Snapshot)
	next  int
}

func NewStore() *Store {
	return &Store{subs: make(map[int]func(Snapshot))}
}

// Subscribe registers fn to be called with a snapshot after every mutation.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// AddItem merges candidate into the cart: an existing line with the same
// identity gets its quantity bumped by one, otherwise a new line is appended
// with quantity 1. The candidate's own Quantity field is ignored.
func (s *Store) AddItem(candidate Item) {
	s.mu.Lock()
	key := candidate.Key()
	found := false
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		candidate.Quantity = 1
		s.items = append(s.items, candidate)
	}
	s.notifyLocked()
}

// RemoveItem deletes the matching line. Absent identity is a no-op.
func (s *Store) RemoveItem(t ItemType, id int64) {
	s.mu.Lock()
	key := Key{Type: t, ID: id}
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.notifyLocked()
}

// UpdateQuantity sets the line's quantity. A quantity of zero or less removes
// the line; a line is never stored with quantity 0. Absent identity is a no-op.
func (s *Store) UpdateQuantity(t ItemType, id int64, qty int) {
	if qty <= 0 {
		s.RemoveItem(t, id)
		return
	}
	s.mu.Lock()
	key := Key{Type: t, ID: id}
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items[i].Quantity = qty
			break
		}
	}
	s.notifyLocked()
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.notifyLocked()
}

// Restore replaces the cart contents wholesale. Lines with non-positive
// quantity are dropped and duplicate identities are merged, so a stale or
// hand-edited persisted cart cannot violate the store's invariants.
func (s *Store) Restore(items []Item) {
	s.mu.Lock()
	s.items = nil
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		merged := false
		for i := range s.items {
			if s.items[i].Key() == it.Key() {
				s.items[i].Quantity += it.Quantity
				merged = true
				break
			}
		}
		if !merged {
			s.items = append(s.items, it)
		}
	}
	s.notifyLocked()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	return snap
}

func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, it := range s.items {
		total += it.UnitPriceCents * int64(it.Quantity)
	}
	return total
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, it := range s.items {
		count += it.Quantity
	}
	return count
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{Items: make([]Item, len(s.items))}
	copy(snap.Items, s.items)
	for _, it := range snap.Items {
		snap.TotalPriceCents += it.UnitPriceCents * int64(it.Quantity)
		snap.ItemCount += it.Quantity
	}
	return snap
}

// notifyLocked is called with the mutex held; it releases it before invoking
// subscribers so a handler may call back into the store.
func (s *Store) notifyLocked() {
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
