package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"boothsale/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	statsRepo      domain.StatsRepository
	emailService   domain.EmailService
	hasher         domain.PasswordComparer
	organizerEmail string
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService returns the event management and lifecycle service.
// emailService and organizerEmail may be zero-valued; the closing summary
// email is skipped in that case.
func NewEventService(eventRepo domain.EventRepository,
	statsRepo domain.StatsRepository,
	emailService domain.EmailService,
	hasher domain.PasswordComparer,
	organizerEmail string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		statsRepo:      statsRepo,
		emailService:   emailService,
		hasher:         hasher,
		organizerEmail: organizerEmail,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidArgument)
	}
	event.Status = domain.StatusPlanning
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, status *domain.EventStatus) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidArgument, *status)
	}
	events, err := s.eventRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID string, name *string, date *time.Time, location *string, vendorPassword *string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if name != nil && *name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidArgument)
	}

	var vendorHash *string
	if vendorPassword != nil {
		if *vendorPassword == "" {
			// Empty password clears the event-specific vendor login.
			empty := ""
			vendorHash = &empty
		} else {
			hash, err := s.hasher.Hash(*vendorPassword)
			if err != nil {
				return nil, fmt.Errorf("hash vendor password: %w", err)
			}
			vendorHash = &hash
		}
	}

	event, err := s.eventRepo.Update(ctx, eventID, name, date, location, vendorHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// Transition applies a lifecycle change. The repository update is conditional
// on the status the decision was made against, so two concurrent transitions
// cannot both apply. Reopening a closed event leaves stock exactly as it was
// at close time; restocking is always an explicit adjustment.
func (s *eventService) Transition(ctx context.Context, eventID string, next domain.EventStatus) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidArgument, next)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: cannot move from %s to %s", domain.ErrInvalidStateTransition, event.Status, next)
	}

	updated, err := s.eventRepo.UpdateStatus(ctx, eventID, event.Status, next)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Someone else transitioned first; the planned move no longer applies.
			return nil, fmt.Errorf("%w: event status changed concurrently", domain.ErrInvalidStateTransition)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event status: %w", err)
	}

	if next == domain.StatusClosed {
		s.sendClosingSummary(ctx, updated)
	}
	return updated, nil
}

// sendClosingSummary emails the organizer a sales recap. Best effort: a
// mailer failure never fails the transition.
func (s *eventService) sendClosingSummary(ctx context.Context, event *domain.Event) {
	if s.emailService == nil || s.organizerEmail == "" {
		return
	}
	summary, err := s.statsRepo.Summary(ctx, event.ID)
	if err != nil {
		s.logger.Warn("closing summary stats failed", "event_id", event.ID, "err", err)
		return
	}
	data := &domain.ClosingSummaryEmailData{
		EventName:      event.Name,
		TotalRevenue:   summary.TotalRevenue,
		OrdersCount:    summary.OrdersCount,
		TotalItemsSold: summary.TotalItemsSold,
	}
	if err := s.emailService.SendClosingSummary(ctx, s.organizerEmail, data); err != nil {
		s.logger.Warn("closing summary email failed", "event_id", event.ID, "err", err)
	}
}
