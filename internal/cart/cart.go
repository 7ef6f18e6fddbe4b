// Package cart implements the customer-side staging area for a submission.
// It clamps quantities against the last-fetched stock snapshot as an
// advisory hint only; the server re-validates every submission against live
// stock at commit time.
package cart

import (
	"sort"
	"sync"

	"boothsale/internal/domain"
)

// Line is one staged product selection.
type Line struct {
	EventProductID string
	Name           string
	UnitPrice      float64
	Quantity       int
}

// Cart stages product selections against an optimistic stock snapshot.
// Safe for concurrent use.
type Cart struct {
	mu    sync.Mutex
	lines map[string]*Line
	stock map[string]int
}

// New returns an empty cart with no stock snapshot.
func New() *Cart {
	return &Cart{
		lines: make(map[string]*Line),
		stock: make(map[string]int),
	}
}

// Refresh replaces the stock snapshot with a freshly fetched product listing
// and clamps any staged quantity that now exceeds it. Returns true if any
// line was clamped or dropped.
func (c *Cart) Refresh(products []*domain.EventProductView) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stock = make(map[string]int, len(products))
	for _, p := range products {
		c.stock[p.ID] = p.CurrentStock
	}
	clamped := false
	for id, l := range c.lines {
		limit, known := c.stock[id]
		if !known {
			delete(c.lines, id)
			clamped = true
			continue
		}
		if l.Quantity > limit {
			l.Quantity = limit
			clamped = true
			if l.Quantity == 0 {
				delete(c.lines, id)
			}
		}
	}
	return clamped
}

// Add stages quantity more units of the product, clamping at the last-known
// stock. It returns the resulting staged quantity and whether the request was
// clamped, so the caller can surface a warning.
func (c *Cart) Add(product *domain.EventProductView, quantity int) (staged int, clamped bool) {
	if quantity <= 0 {
		return c.Quantity(product.ID), false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.stock[product.ID]; !ok {
		c.stock[product.ID] = product.CurrentStock
	}
	limit := c.stock[product.ID]
	l, ok := c.lines[product.ID]
	if !ok {
		l = &Line{EventProductID: product.ID, Name: product.Name, UnitPrice: product.Price}
		c.lines[product.ID] = l
	}
	l.Quantity += quantity
	if l.Quantity > limit {
		l.Quantity = limit
		clamped = true
	}
	if l.Quantity == 0 {
		delete(c.lines, product.ID)
	}
	return l.Quantity, clamped
}

// SetQuantity sets the staged quantity for a product already in the cart,
// clamping at the last-known stock. Zero removes the line.
func (c *Cart) SetQuantity(eventProductID string, quantity int) (staged int, clamped bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.lines[eventProductID]
	if !ok {
		return 0, false
	}
	if quantity <= 0 {
		delete(c.lines, eventProductID)
		return 0, false
	}
	if limit, known := c.stock[eventProductID]; known && quantity > limit {
		quantity = limit
		clamped = true
	}
	l.Quantity = quantity
	if l.Quantity == 0 {
		delete(c.lines, eventProductID)
	}
	return l.Quantity, clamped
}

// Quantity returns the staged quantity for a product, zero if absent.
func (c *Cart) Quantity(eventProductID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.lines[eventProductID]; ok {
		return l.Quantity
	}
	return 0
}

// Lines returns the staged selections as submission payload lines, ordered by
// product id for a stable wire shape. The lines are sent verbatim; the server
// is the only authority on whether they can be fulfilled.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartLine, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, domain.CartLine{EventProductID: l.EventProductID, Quantity: l.Quantity})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventProductID < out[j].EventProductID })
	return out
}

// Total returns the staged total based on the snapshot prices.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, l := range c.lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// Empty reports whether nothing is staged.
func (c *Cart) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Clear empties the cart. Called after a successful submission; on a rejected
// submission the cart is left untouched so the customer can adjust and retry.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = make(map[string]*Line)
}
