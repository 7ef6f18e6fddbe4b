package domain

import (
	"context"
	"time"
)

// MasterProduct is a catalog entry independent of any specific event.
// Deactivated instead of deleted so historical orders keep their references.
// swagger:model MasterProduct
type MasterProduct struct {
	ID          string    `json:"id"`
	ProductCode string    `json:"product_code"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	ImageURL    *string   `json:"image_url"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewMasterProduct returns a new active MasterProduct. ID is typically set by the repository on create.
func NewMasterProduct(productCode, name string, price float64, imageURL *string, createdAt, updatedAt time.Time) *MasterProduct {
	return &MasterProduct{
		ProductCode: productCode,
		Name:        name,
		Price:       price,
		ImageURL:    imageURL,
		IsActive:    true,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// EventProduct binds a master product to one event with event-scoped stock and
// a price captured at bind time. current_stock is the only contended mutable
// value in the system; it is written exclusively through the order engine and
// explicit stock adjustments.
// swagger:model EventProduct
type EventProduct struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	MasterProductID string    `json:"master_product_id"`
	PriceAtEvent    float64   `json:"price"`
	CurrentStock    int       `json:"current_stock"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EventProductView joins an EventProduct with its master display fields for
// the customer-facing product listing.
// swagger:model EventProductView
type EventProductView struct {
	ID           string  `json:"id"`
	EventID      string  `json:"event_id"`
	ProductCode  string  `json:"product_code"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	CurrentStock int     `json:"current_stock"`
	ImageURL     *string `json:"image_url"`
}

// MasterProductSpec carries the admin-supplied fields for catalog writes.
type MasterProductSpec struct {
	ProductCode string
	Name        string
	Price       float64
	ImageURL    *string
}

// MasterProductRepository defines the interface for catalog storage.
type MasterProductRepository interface {
	Create(ctx context.Context, p *MasterProduct) error
	GetByID(ctx context.Context, id string) (*MasterProduct, error)
	GetByCode(ctx context.Context, productCode string) (*MasterProduct, error)
	List(ctx context.Context, includeInactive bool) ([]*MasterProduct, error)
	Update(ctx context.Context, id string, spec MasterProductSpec) (*MasterProduct, error)
	SetActive(ctx context.Context, id string, active bool) (*MasterProduct, error)
}

// EventProductRepository defines the interface for event-product binding storage.
// AdjustStock must use the same atomic discipline as the order engine so an
// admin correction can never interleave with an in-flight commit.
type EventProductRepository interface {
	Create(ctx context.Context, ep *EventProduct) error
	GetByID(ctx context.Context, id string) (*EventProduct, error)
	ListForEvent(ctx context.Context, eventID string) ([]*EventProductView, error)
	// AdjustStock atomically applies delta to current_stock, failing with
	// ErrInvalidArgument if the result would be negative.
	AdjustStock(ctx context.Context, id string, delta int) (*EventProduct, error)
	UpdatePrice(ctx context.Context, id string, price float64) (*EventProduct, error)
	// Delete removes a binding that no order line references; ErrConflict otherwise.
	Delete(ctx context.Context, id string) error
}

// CatalogService defines master catalog operations.
type CatalogService interface {
	CreateProduct(ctx context.Context, spec MasterProductSpec) (*MasterProduct, error)
	UpdateProduct(ctx context.Context, id string, spec MasterProductSpec) (*MasterProduct, error)
	SetActive(ctx context.Context, id string, active bool) (*MasterProduct, error)
	List(ctx context.Context, includeInactive bool) ([]*MasterProduct, error)
	GetByCode(ctx context.Context, productCode string) (*MasterProduct, error)
}

// BindingService defines event-product binding operations.
type BindingService interface {
	// BindProduct exposes a master product to an event with an initial stock.
	// price, when nil, defaults to the master product's current price; either
	// way the value is snapshotted as price_at_event.
	BindProduct(ctx context.Context, eventID, masterProductID string, initialStock int, price *float64) (*EventProduct, error)
	BindProductByCode(ctx context.Context, eventID, productCode string, initialStock int, price *float64) (*EventProduct, error)
	AdjustStock(ctx context.Context, eventProductID string, delta int) (*EventProduct, error)
	UpdatePrice(ctx context.Context, eventProductID string, price float64) (*EventProduct, error)
	Unbind(ctx context.Context, eventProductID string) error
	ListForEvent(ctx context.Context, eventID string) ([]*EventProductView, error)
}
