package domain

import "context"

// EventStatsSummary aggregates sales across an event.
type EventStatsSummary struct {
	TotalRevenue   float64 `json:"total_revenue"`
	OrdersCount    int     `json:"orders_count"`
	TotalItemsSold int     `json:"total_items_sold"`
}

// ProductStats is the per-product sales breakdown for an event.
type ProductStats struct {
	EventProductID string  `json:"product_id"`
	ProductCode    string  `json:"product_code"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	SoldCount      int     `json:"sold_count"`
	CurrentStock   int     `json:"current_stock"`
	Revenue        float64 `json:"revenue"`
}

// EventStats bundles the event, its summary, and per-product details.
// swagger:model EventStats
type EventStats struct {
	Event    *Event            `json:"event_info"`
	Summary  EventStatsSummary `json:"summary"`
	Products []*ProductStats   `json:"product_details"`
}

// StatsRepository defines the aggregate queries behind event stats.
type StatsRepository interface {
	Summary(ctx context.Context, eventID string) (*EventStatsSummary, error)
	PerProduct(ctx context.Context, eventID string) ([]*ProductStats, error)
}

// StatsService defines read-only sales reporting for an event.
type StatsService interface {
	EventStats(ctx context.Context, eventID string) (*EventStats, error)
}
