package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"boothsale/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, name, status, created_at, updated_at, date, location, vendor_password_hash`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var dateNull sql.NullTime
	var locNull, vendorHashNull sql.NullString
	err := row.Scan(&e.ID, &e.Name, &e.Status, &e.CreatedAt, &e.UpdatedAt, &dateNull, &locNull, &vendorHashNull)
	if err != nil {
		return nil, err
	}
	if dateNull.Valid {
		e.Date = &dateNull.Time
	}
	if locNull.Valid {
		e.Location = &locNull.String
	}
	if vendorHashNull.Valid {
		e.VendorPasswordHash = &vendorHashNull.String
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, status, date, location, vendor_password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Name, e.Status, e.Date, e.Location, e.VendorPasswordHash, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, status *domain.EventStatus) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY date DESC NULLS LAST, created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, eventID string, name *string, date *time.Time, location *string, vendorPasswordHash *string) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	if name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", n))
		args = append(args, *name)
		n++
	}
	if date != nil {
		setClauses = append(setClauses, fmt.Sprintf("date = $%d", n))
		args = append(args, *date)
		n++
	}
	if location != nil {
		setClauses = append(setClauses, fmt.Sprintf("location = $%d", n))
		args = append(args, *location)
		n++
	}
	if vendorPasswordHash != nil {
		// An empty hash clears the event-specific vendor password.
		if *vendorPasswordHash == "" {
			setClauses = append(setClauses, "vendor_password_hash = NULL")
		} else {
			setClauses = append(setClauses, fmt.Sprintf("vendor_password_hash = $%d", n))
			args = append(args, *vendorPasswordHash)
			n++
		}
	}
	if len(setClauses) == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, eventID)
	}
	args = append(args, eventID)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, eventID string, from, to domain.EventStatus) (*domain.Event, error) {
	query := `
		UPDATE events SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + eventColumns
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, eventID, from, to))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Distinguish a missing event from a lost transition race.
			if _, getErr := r.GetByID(ctx, eventID); errors.Is(getErr, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return e, nil
}
