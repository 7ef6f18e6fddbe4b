package domain

import (
	"context"
	"time"
)

// OrderStatus is the state of a committed order. Orders are created in
// StatusPlaced and are immutable afterward.
type OrderStatus string

// StatusPlaced is the only order status; cancellation is not supported.
const StatusPlaced OrderStatus = "placed"

// CartLine is one requested product+quantity pair of a submission.
type CartLine struct {
	EventProductID string `json:"product_id"`
	Quantity       int    `json:"quantity"`
}

// OrderLine is one committed line of an order. unit_price is snapshotted from
// price_at_event at commit time and never changes afterward.
// swagger:model OrderLine
type OrderLine struct {
	ID             string  `json:"id"`
	OrderID        string  `json:"order_id"`
	EventProductID string  `json:"event_product_id"`
	ProductName    string  `json:"product_name"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
}

// Order is the immutable, committed result of a successful cart submission.
// swagger:model Order
type Order struct {
	ID        string       `json:"id"`
	EventID   string       `json:"event_id"`
	Status    OrderStatus  `json:"status"`
	Total     float64      `json:"total"`
	CreatedAt time.Time    `json:"created_at"`
	Lines     []*OrderLine `json:"lines"`
}

// OrderRepository defines storage for orders. Submit is the single atomic unit
// of work for a cart: inside one transaction it re-checks the event status,
// locks the referenced event products, verifies stock, decrements it, and
// inserts the order with its lines. Either everything commits or nothing does.
//
// Submit returns, wrapped or bare:
//   - ErrNotFound when the event or any referenced event product is missing
//   - ErrEventNotOpen when the event status is not active at commit time
//   - *InsufficientStockError listing every line that exceeded stock
//   - ErrTimeout when the lock could not be acquired within the bound
type OrderRepository interface {
	Submit(ctx context.Context, eventID string, lines []CartLine) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByEvent(ctx context.Context, eventID string, p PaginationParams) ([]*Order, int, error)
}

// OrderService is the order and inventory consistency engine.
type OrderService interface {
	// SubmitOrder validates the cart and commits it atomically against current
	// stock. Submission is not idempotent: resubmitting an identical cart
	// creates a second order.
	SubmitOrder(ctx context.Context, eventID string, lines []CartLine) (*Order, error)
	ListOrders(ctx context.Context, eventID string, p PaginationParams) ([]*Order, int, error)
}
