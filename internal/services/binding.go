package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boothsale/internal/domain"
)

type bindingService struct {
	eventProductRepo domain.EventProductRepository
	productRepo      domain.MasterProductRepository
	eventRepo        domain.EventRepository
	contextTimeout   time.Duration
}

// NewBindingService returns the event-product binding service.
func NewBindingService(eventProductRepo domain.EventProductRepository,
	productRepo domain.MasterProductRepository,
	eventRepo domain.EventRepository,
	timeout time.Duration,
) domain.BindingService {
	return &bindingService{
		eventProductRepo: eventProductRepo,
		productRepo:      productRepo,
		eventRepo:        eventRepo,
		contextTimeout:   timeout,
	}
}

func (s *bindingService) BindProduct(ctx context.Context, eventID, masterProductID string, initialStock int, price *float64) (*domain.EventProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	master, err := s.productRepo.GetByID(ctx, masterProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("master product: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get master product: %w", err)
	}
	return s.bind(ctx, eventID, master, initialStock, price)
}

func (s *bindingService) BindProductByCode(ctx context.Context, eventID, productCode string, initialStock int, price *float64) (*domain.EventProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	master, err := s.productRepo.GetByCode(ctx, productCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("product code %q: %w", productCode, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get master product: %w", err)
	}
	return s.bind(ctx, eventID, master, initialStock, price)
}

func (s *bindingService) bind(ctx context.Context, eventID string, master *domain.MasterProduct, initialStock int, price *float64) (*domain.EventProduct, error) {
	if initialStock < 0 {
		return nil, fmt.Errorf("%w: initial stock must not be negative", domain.ErrInvalidArgument)
	}
	if !master.IsActive {
		// Inactive products behave as if they no longer exist for binding.
		return nil, fmt.Errorf("product %q is inactive: %w", master.Name, domain.ErrNotFound)
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("event: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	priceAtEvent := master.Price
	if price != nil {
		if *price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidArgument)
		}
		priceAtEvent = *price
	}

	now := time.Now()
	ep := &domain.EventProduct{
		EventID:         eventID,
		MasterProductID: master.ID,
		PriceAtEvent:    priceAtEvent,
		CurrentStock:    initialStock,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.eventProductRepo.Create(ctx, ep); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: product %q is already bound to this event", domain.ErrConflict, master.Name)
		}
		return nil, fmt.Errorf("bind product: %w", err)
	}
	return ep, nil
}

func (s *bindingService) AdjustStock(ctx context.Context, eventProductID string, delta int) (*domain.EventProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ep, err := s.eventProductRepo.AdjustStock(ctx, eventProductID, delta)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return nil, fmt.Errorf("%w: stock adjustment would go below zero", domain.ErrInvalidArgument)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	return ep, nil
}

func (s *bindingService) UpdatePrice(ctx context.Context, eventProductID string, price float64) (*domain.EventProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidArgument)
	}
	ep, err := s.eventProductRepo.UpdatePrice(ctx, eventProductID, price)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update price: %w", err)
	}
	return ep, nil
}

func (s *bindingService) Unbind(ctx context.Context, eventProductID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventProductRepo.Delete(ctx, eventProductID); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
			return err
		}
		return fmt.Errorf("unbind product: %w", err)
	}
	return nil
}

func (s *bindingService) ListForEvent(ctx context.Context, eventID string) ([]*domain.EventProductView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	views, err := s.eventProductRepo.ListForEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event products: %w", err)
	}
	if views == nil {
		views = []*domain.EventProductView{}
	}
	return views, nil
}
