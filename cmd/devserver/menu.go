package main

import (
	"sync"

	"comedores/internal/cart"
)

// menuStore holds the dev backend's stock table. Reservation is
// all-or-nothing: a conflict on any line leaves every count untouched.
type menuStore struct {
	mu    sync.Mutex
	stock map[cart.Key]*menuEntry
}

type menuEntry struct {
	Name  string
	Stock int
}

type stockConflict struct {
	ProductName string
	Requested   int
	Available   int
}

func seedMenu() *menuStore {
	return &menuStore{stock: map[cart.Key]*menuEntry{
		{Type: cart.ItemProduct, ID: 1}: {Name: "Sandwich de milanesa", Stock: 40},
		{Type: cart.ItemProduct, ID: 2}: {Name: "Sandwich vegetariano", Stock: 25},
		{Type: cart.ItemProduct, ID: 3}: {Name: "Agua mineral", Stock: 100},
		{Type: cart.ItemProduct, ID: 4}: {Name: "Jugo de naranja", Stock: 60},
		{Type: cart.ItemProduct, ID: 5}: {Name: "Flan casero", Stock: 15},
		{Type: cart.ItemCombo, ID: 1}:   {Name: "Combo almuerzo", Stock: 20},
		{Type: cart.ItemCombo, ID: 2}:   {Name: "Combo merienda", Stock: 3},
	}}
}

// reserve decrements stock for every line or reports the first conflict.
func (m *menuStore) reserve(items []cart.Item) *stockConflict {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, it := range items {
		entry, ok := m.stock[it.Key()]
		if !ok {
			return &stockConflict{ProductName: it.Name, Requested: it.Quantity, Available: 0}
		}
		if entry.Stock < it.Quantity {
			return &stockConflict{ProductName: entry.Name, Requested: it.Quantity, Available: entry.Stock}
		}
	}
	for _, it := range items {
		m.stock[it.Key()].Stock -= it.Quantity
	}
	return nil
}
