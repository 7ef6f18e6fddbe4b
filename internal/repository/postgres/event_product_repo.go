package postgres

import (
	"context"
	"database/sql"
	"errors"

	"boothsale/internal/domain"
)

type eventProductRepository struct {
	DB *sql.DB
}

func NewEventProductRepository(db *sql.DB) domain.EventProductRepository {
	return &eventProductRepository{
		DB: db,
	}
}

const eventProductColumns = `id, event_id, master_product_id, price_at_event, current_stock, created_at, updated_at`

func scanEventProduct(row interface{ Scan(...any) error }) (*domain.EventProduct, error) {
	ep := &domain.EventProduct{}
	err := row.Scan(&ep.ID, &ep.EventID, &ep.MasterProductID, &ep.PriceAtEvent, &ep.CurrentStock, &ep.CreatedAt, &ep.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return ep, nil
}

func (r *eventProductRepository) Create(ctx context.Context, ep *domain.EventProduct) error {
	query := `
		INSERT INTO event_products (event_id, master_product_id, price_at_event, current_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		ep.EventID, ep.MasterProductID, ep.PriceAtEvent, ep.CurrentStock, ep.CreatedAt, ep.UpdatedAt,
	).Scan(&ep.ID)
	if err != nil {
		switch pqErrorCode(err) {
		case pqUniqueViolation:
			return domain.ErrConflict
		case pqForeignKeyViolation:
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *eventProductRepository) GetByID(ctx context.Context, id string) (*domain.EventProduct, error) {
	query := `SELECT ` + eventProductColumns + ` FROM event_products WHERE id = $1`
	ep, err := scanEventProduct(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return ep, nil
}

func (r *eventProductRepository) ListForEvent(ctx context.Context, eventID string) ([]*domain.EventProductView, error) {
	query := `
		SELECT ep.id, ep.event_id, mp.product_code, mp.name, ep.price_at_event, ep.current_stock, mp.image_url
		FROM event_products ep
		JOIN master_products mp ON mp.id = ep.master_product_id
		WHERE ep.event_id = $1 AND mp.is_active = TRUE
		ORDER BY mp.product_code
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	views := make([]*domain.EventProductView, 0)
	for rows.Next() {
		v := &domain.EventProductView{}
		var imageNull sql.NullString
		if err := rows.Scan(&v.ID, &v.EventID, &v.ProductCode, &v.Name, &v.Price, &v.CurrentStock, &imageNull); err != nil {
			return nil, err
		}
		if imageNull.Valid {
			v.ImageURL = &imageNull.String
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// AdjustStock applies delta with a conditional update so the read and the
// write happen in one statement, under the same row lock the order engine
// takes. A zero-row result means either the row is missing or the result
// would go negative; the follow-up fetch tells the two apart.
func (r *eventProductRepository) AdjustStock(ctx context.Context, id string, delta int) (*domain.EventProduct, error) {
	query := `
		UPDATE event_products
		SET current_stock = current_stock + $2, updated_at = NOW()
		WHERE id = $1 AND current_stock + $2 >= 0
		RETURNING ` + eventProductColumns
	ep, err := scanEventProduct(r.DB.QueryRowContext(ctx, query, id, delta))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, domain.ErrInvalidArgument
		}
		if pqErrorCode(err) == pqCheckViolation {
			return nil, domain.ErrInvalidArgument
		}
		return nil, err
	}
	return ep, nil
}

func (r *eventProductRepository) UpdatePrice(ctx context.Context, id string, price float64) (*domain.EventProduct, error) {
	query := `
		UPDATE event_products SET price_at_event = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + eventProductColumns
	ep, err := scanEventProduct(r.DB.QueryRowContext(ctx, query, id, price))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return ep, nil
}

func (r *eventProductRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM event_products WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		if pqErrorCode(err) == pqForeignKeyViolation {
			// Order lines reference this binding; it must stay for history.
			return domain.ErrConflict
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
