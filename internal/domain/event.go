package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle state of a sales event.
type EventStatus string

const (
	// StatusPlanning is the initial state: bindings and stock are configured,
	// no ordering allowed.
	StatusPlanning EventStatus = "planning"
	// StatusActive allows customer ordering.
	StatusActive EventStatus = "active"
	// StatusClosed ends ordering. Terminal except for an explicit admin reopen.
	StatusClosed EventStatus = "closed"
)

// Valid reports whether s is a known lifecycle status.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusClosed:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
// Allowed: planning→active, active→closed, and the admin override closed→active.
// Nothing ever returns to planning.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	switch s {
	case StatusPlanning:
		return next == StatusActive
	case StatusActive:
		return next == StatusClosed
	case StatusClosed:
		return next == StatusActive
	}
	return false
}

// Event represents a single pop-up sales occasion
// swagger:model Event
type Event struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Date      *time.Time  `json:"date"`
	Location  *string     `json:"location"`
	Status    EventStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	// VendorPasswordHash is the bcrypt hash of the event-specific vendor
	// password, if one is set. Never serialized.
	VendorPasswordHash *string `json:"-"`
}

// NewEvent returns a new Event in planning status. ID is typically set by the repository on create.
func NewEvent(name string, date *time.Time, location *string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Name:      name,
		Date:      date,
		Location:  location,
		Status:    StatusPlanning,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, status *EventStatus) ([]*Event, error)
	Update(ctx context.Context, eventID string, name *string, date *time.Time, location *string, vendorPasswordHash *string) (*Event, error)
	// UpdateStatus moves the event from to next only if its stored status still
	// equals from. Returns ErrConflict when a concurrent transition won the race
	// and ErrNotFound when the event does not exist.
	UpdateStatus(ctx context.Context, eventID string, from, to EventStatus) (*Event, error)
}

// EventService defines event management and lifecycle operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context, status *EventStatus) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID string, name *string, date *time.Time, location *string, vendorPassword *string) (*Event, error)
	// Transition applies a lifecycle change, enforcing the transition table.
	Transition(ctx context.Context, eventID string, next EventStatus) (*Event, error)
}
