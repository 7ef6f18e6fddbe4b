package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"boothsale/internal/domain"
)

// submitRetries bounds automatic retries of a submission that lost its lock
// within the timeout window. Only ErrTimeout is retried; every other failure
// is surfaced immediately because the cart must change before it can succeed.
const submitRetries = 2

type orderService struct {
	orderRepo      domain.OrderRepository
	eventRepo      domain.EventRepository
	logger         *slog.Logger
	retryBackoff   time.Duration
	contextTimeout time.Duration
}

// NewOrderService returns the order and inventory consistency engine.
func NewOrderService(orderRepo domain.OrderRepository,
	eventRepo domain.EventRepository,
	logger *slog.Logger,
	timeout time.Duration,
) domain.OrderService {
	return &orderService{
		orderRepo:      orderRepo,
		eventRepo:      eventRepo,
		logger:         logger,
		retryBackoff:   50 * time.Millisecond,
		contextTimeout: timeout,
	}
}

// validateCart runs the pure precondition checks that need no storage access.
// Duplicate product references are merged so the repository sees each event
// product at most once.
func validateCart(lines []domain.CartLine) ([]domain.CartLine, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrInvalidArgument)
	}
	merged := make([]domain.CartLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.EventProductID == "" {
			return nil, fmt.Errorf("%w: missing product_id", domain.ErrInvalidArgument)
		}
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be a positive integer", domain.ErrInvalidArgument)
		}
		if i, ok := index[l.EventProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.EventProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}

// SubmitOrder validates the cart and hands it to the repository's atomic
// submit. On success every line's stock decrement and the order insert
// committed together; on failure nothing persisted. Not idempotent:
// resubmitting the same cart creates a second order.
func (s *orderService) SubmitOrder(ctx context.Context, eventID string, lines []domain.CartLine) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if eventID == "" {
		return nil, fmt.Errorf("%w: missing event id", domain.ErrInvalidArgument)
	}
	merged, err := validateCart(lines)
	if err != nil {
		return nil, err
	}

	var order *domain.Order
	for attempt := 0; ; attempt++ {
		order, err = s.orderRepo.Submit(ctx, eventID, merged)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, domain.ErrTimeout) || attempt >= submitRetries {
			break
		}
		s.logger.Debug("order submit lock timeout, retrying",
			"event_id", eventID, "attempt", attempt+1)
		select {
		case <-time.After(s.retryBackoff):
		case <-ctx.Done():
			return nil, fmt.Errorf("submit order: %w", domain.ErrTimeout)
		}
	}

	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrEventNotOpen),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrTimeout):
		return nil, err
	}
	return nil, fmt.Errorf("submit order: %w", err)
}

func (s *orderService) ListOrders(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.Order, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	orders, total, err := s.orderRepo.ListByEvent(ctx, eventID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, total, nil
}
