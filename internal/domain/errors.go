package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrEventNotOpen           = errors.New("event is not open for orders")
	ErrInvalidStateTransition = errors.New("invalid event status transition")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrTimeout                = errors.New("timed out waiting for inventory lock")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
)

// InsufficientLine identifies one cart line that could not be satisfied.
type InsufficientLine struct {
	EventProductID string `json:"product_id"`
	Name           string `json:"name"`
	Requested      int    `json:"requested"`
	Available      int    `json:"available"`
}

// InsufficientStockError reports every line of a submission that exceeded
// available stock. errors.Is(err, ErrInsufficientStock) matches it.
type InsufficientStockError struct {
	Lines []InsufficientLine
}

func (e *InsufficientStockError) Error() string {
	names := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		name := l.Name
		if name == "" {
			name = l.EventProductID
		}
		names = append(names, fmt.Sprintf("%s (requested %d, available %d)", name, l.Requested, l.Available))
	}
	return "insufficient stock: " + strings.Join(names, ", ")
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
