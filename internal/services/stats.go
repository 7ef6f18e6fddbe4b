package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boothsale/internal/domain"
)

type statsService struct {
	statsRepo      domain.StatsRepository
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

// NewStatsService returns the sales reporting service.
func NewStatsService(statsRepo domain.StatsRepository, eventRepo domain.EventRepository, timeout time.Duration) domain.StatsService {
	return &statsService{
		statsRepo:      statsRepo,
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (s *statsService) EventStats(ctx context.Context, eventID string) (*domain.EventStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	summary, err := s.statsRepo.Summary(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("stats summary: %w", err)
	}
	products, err := s.statsRepo.PerProduct(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("stats per product: %w", err)
	}
	if products == nil {
		products = []*domain.ProductStats{}
	}
	return &domain.EventStats{
		Event:    event,
		Summary:  *summary,
		Products: products,
	}, nil
}
