package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"comedores/internal/cart"
	"comedores/internal/checkout"
	"comedores/internal/comedorapi"
	"comedores/internal/promo"
	"comedores/internal/storage"
	"comedores/internal/stream"

	"go.uber.org/zap"
)

// menuEntry is what the kiosk offers for sale. The product catalog itself is
// presentation data; only what lands in the cart matters to the core.
type menuEntry struct {
	Type           cart.ItemType
	ID             int64
	Name           string
	UnitPriceCents int64
	Category       string
}

var menu = []menuEntry{
	{cart.ItemProduct, 1, "Sandwich de milanesa", 1500, "SANDWICH"},
	{cart.ItemProduct, 2, "Sandwich vegetariano", 1300, "SANDWICH"},
	{cart.ItemProduct, 3, "Agua mineral", 400, "BEBIDA"},
	{cart.ItemProduct, 4, "Jugo de naranja", 600, "BEBIDA"},
	{cart.ItemProduct, 5, "Flan casero", 700, "POSTRE"},
	{cart.ItemCombo, 1, "Combo almuerzo", 2200, "COMBO"},
	{cart.ItemCombo, 2, "Combo merienda", 1100, "COMBO"},
}

type kiosk struct {
	cfg         config
	logger      *zap.SugaredLogger
	store       *cart.Store
	local       *storage.FileStore
	client      *comedorapi.Client
	coordinator *checkout.Coordinator
	channel     *stream.Channel

	catalog []promo.Promotion
}

func (k *kiosk) runLoop() {
	ctx := context.Background()

	catalog, err := k.client.FetchPromotions(ctx)
	if err != nil {
		fmt.Println("could not load promotions, pricing without discounts:", err)
	}
	k.catalog = catalog

	// Persist and reprice after every cart mutation.
	k.store.Subscribe(func(snap cart.Snapshot) {
		if err := cart.Save(k.local, k.store); err != nil {
			k.logger.Warnw("could not persist cart", "error", err)
		}
	})

	k.channel.OnEvent(func(ev stream.Event) {
		fmt.Printf("\n>> order %s is now %s\n> ", ev.OrderNumber, ev.NewStatus)
	})
	k.channel.SetIdentity(k.cfg.email)

	fmt.Printf("Comedor kiosk — signed in as %s. Type 'help' for commands.\n", k.cfg.email)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		if !k.handle(strings.Fields(scanner.Text())) {
			return
		}
		fmt.Print("> ")
	}
}

func (k *kiosk) handle(args []string) bool {
	if len(args) == 0 {
		return true
	}
	switch args[0] {
	case "help":
		fmt.Println("menu | add <n> | remove <n> | qty <n> <q> | show | confirm | quit")
	case "menu":
		for i, e := range menu {
			fmt.Printf("%2d. %-24s %8s  [%s]\n", i+1, e.Name, formatCents(e.UnitPriceCents), e.Category)
		}
	case "add":
		if e, ok := pickEntry(args); ok {
			k.store.AddItem(cart.Item{
				Type: e.Type, ID: e.ID, Name: e.Name,
				UnitPriceCents: e.UnitPriceCents, Category: e.Category,
			})
			k.printCart()
		}
	case "remove":
		if e, ok := pickEntry(args); ok {
			k.store.RemoveItem(e.Type, e.ID)
			k.printCart()
		}
	case "qty":
		if len(args) < 3 {
			fmt.Println("usage: qty <n> <quantity>")
			return true
		}
		e, ok := pickEntry(args[:2])
		if !ok {
			return true
		}
		q, err := strconv.Atoi(args[2])
		if err != nil {
			fmt.Println("quantity must be a number")
			return true
		}
		k.store.UpdateQuantity(e.Type, e.ID, q)
		k.printCart()
	case "show":
		k.printCart()
	case "confirm":
		k.confirm()
	case "quit", "exit":
		return false
	default:
		fmt.Println("unknown command; type 'help'")
	}
	return true
}

func (k *kiosk) confirm() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conf, err := k.coordinator.Confirm(ctx)
	if err != nil {
		var conflict *checkout.StockConflictError
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			fmt.Println("your cart is empty")
		case errors.As(err, &conflict):
			fmt.Printf("not enough stock for %s: you asked for %d, only %d left — adjust and retry\n",
				conflict.ProductName, conflict.Requested, conflict.Available)
		default:
			fmt.Println("submission failed, your cart was kept — retry with 'confirm':", err)
		}
		return
	}

	fmt.Printf("order %s confirmed — total %s\n", conf.OrderNumber, formatCents(conf.Priced.TotalCents))
	for _, a := range conf.Priced.Applied {
		fmt.Printf("  applied: %s (-%s)\n", a.Name, formatCents(a.DiscountCents))
	}
}

func (k *kiosk) printCart() {
	snap := k.store.Snapshot()
	if snap.Empty() {
		fmt.Println("cart is empty")
		return
	}
	for _, it := range snap.Items {
		fmt.Printf("  %dx %-24s %8s\n", it.Quantity, it.Name, formatCents(it.UnitPriceCents*int64(it.Quantity)))
	}
	priced := promo.Price(snap, k.catalog)
	fmt.Printf("  subtotal %s", formatCents(priced.SubtotalCents))
	for _, a := range priced.Applied {
		fmt.Printf(" | %s -%s", a.Name, formatCents(a.DiscountCents))
	}
	fmt.Printf(" | total %s (%d items)\n", formatCents(priced.TotalCents), snap.ItemCount)
}

func pickEntry(args []string) (menuEntry, bool) {
	if len(args) < 2 {
		fmt.Println("usage:", args[0], "<n>")
		return menuEntry{}, false
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 || n > len(menu) {
		fmt.Println("pick a menu number between 1 and", len(menu))
		return menuEntry{}, false
	}
	return menu[n-1], true
}

// formatCents renders an amount for display. This is the only place money
// leaves integer cents.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
