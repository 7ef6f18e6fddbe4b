package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/lib/pq"

	"boothsale/internal/domain"
)

type orderRepository struct {
	DB *sql.DB
	// lockTimeout bounds how long Submit waits for contended rows before
	// failing with domain.ErrTimeout. Postgres interval syntax.
	lockTimeout string
}

func NewOrderRepository(db *sql.DB) domain.OrderRepository {
	return &orderRepository{
		DB:          db,
		lockTimeout: "3s",
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// mapLockError converts lock acquisition failures into the retryable
// domain.ErrTimeout class.
func mapLockError(err error) error {
	if pqErrorCode(err) == pqLockNotAvailable || errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTimeout
	}
	return err
}

// Submit commits a cart as one transaction: the event status is re-read under
// a shared lock, every referenced event product row is locked in sorted order
// (stable lock order prevents deadlocks between concurrent carts), stock is
// verified and decremented, and the order with its lines is inserted. Any
// failure rolls the whole unit back, leaving stock and order tables untouched.
func (r *orderRepository) Submit(ctx context.Context, eventID string, lines []domain.CartLine) (*domain.Order, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%s'", r.lockTimeout)); err != nil {
		return nil, fmt.Errorf("set lock_timeout: %w", err)
	}

	// Lifecycle gate, checked at commit time rather than cart-assembly time.
	// The shared lock orders this check against a concurrent status update.
	var status domain.EventStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM events WHERE id = $1 FOR SHARE`, eventID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapLockError(err)
	}
	if status != domain.StatusActive {
		return nil, domain.ErrEventNotOpen
	}

	byProduct := make(map[string]int, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := byProduct[l.EventProductID]; !ok {
			ids = append(ids, l.EventProductID)
		}
		byProduct[l.EventProductID] += l.Quantity
	}
	sort.Strings(ids)

	type lockedProduct struct {
		stock int
		price float64
		name  string
	}
	locked := make(map[string]lockedProduct, len(ids))
	lockQuery := `
		SELECT ep.current_stock, ep.price_at_event, mp.name
		FROM event_products ep
		JOIN master_products mp ON mp.id = ep.master_product_id
		WHERE ep.id = $1 AND ep.event_id = $2
		FOR UPDATE OF ep
	`
	for _, id := range ids {
		var lp lockedProduct
		err := tx.QueryRowContext(ctx, lockQuery, id, eventID).Scan(&lp.stock, &lp.price, &lp.name)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("event product %s: %w", id, domain.ErrNotFound)
			}
			return nil, mapLockError(err)
		}
		locked[id] = lp
	}

	var short []domain.InsufficientLine
	for _, id := range ids {
		if lp := locked[id]; byProduct[id] > lp.stock {
			short = append(short, domain.InsufficientLine{
				EventProductID: id,
				Name:           lp.name,
				Requested:      byProduct[id],
				Available:      lp.stock,
			})
		}
	}
	if len(short) > 0 {
		return nil, &domain.InsufficientStockError{Lines: short}
	}

	var total float64
	for _, id := range ids {
		qty := byProduct[id]
		if _, err := tx.ExecContext(ctx,
			`UPDATE event_products SET current_stock = current_stock - $2, updated_at = NOW() WHERE id = $1`,
			id, qty,
		); err != nil {
			return nil, mapLockError(err)
		}
		total += locked[id].price * float64(qty)
	}
	total = round2(total)

	order := &domain.Order{
		EventID: eventID,
		Status:  domain.StatusPlaced,
		Total:   total,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (event_id, status, total) VALUES ($1, $2, $3) RETURNING id, created_at`,
		eventID, order.Status, order.Total,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		line := &domain.OrderLine{
			OrderID:        order.ID,
			EventProductID: id,
			ProductName:    locked[id].name,
			Quantity:       byProduct[id],
			UnitPrice:      locked[id].price,
		}
		err := tx.QueryRowContext(ctx,
			`INSERT INTO order_lines (order_id, event_product_id, quantity, unit_price) VALUES ($1, $2, $3, $4) RETURNING id`,
			line.OrderID, line.EventProductID, line.Quantity, line.UnitPrice,
		).Scan(&line.ID)
		if err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, line)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT id, event_id, status, total, created_at FROM orders WHERE id = $1`
	o := &domain.Order{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&o.ID, &o.EventID, &o.Status, &o.Total, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.attachLines(ctx, []*domain.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) ListByEvent(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.Order, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT id, event_id, status, total, created_at
		FROM orders
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	orders := make([]*domain.Order, 0)
	for rows.Next() {
		o := &domain.Order{}
		if err := rows.Scan(&o.ID, &o.EventID, &o.Status, &o.Total, &o.CreatedAt); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) attachLines(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		o.Lines = make([]*domain.OrderLine, 0)
		ids = append(ids, o.ID)
	}
	query := `
		SELECT ol.id, ol.order_id, ol.event_product_id, mp.name, ol.quantity, ol.unit_price
		FROM order_lines ol
		JOIN event_products ep ON ep.id = ol.event_product_id
		JOIN master_products mp ON mp.id = ep.master_product_id
		WHERE ol.order_id = ANY($1)
		ORDER BY mp.product_code
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		l := &domain.OrderLine{}
		if err := rows.Scan(&l.ID, &l.OrderID, &l.EventProductID, &l.ProductName, &l.Quantity, &l.UnitPrice); err != nil {
			return err
		}
		if o, ok := byID[l.OrderID]; ok {
			o.Lines = append(o.Lines, l)
		}
	}
	return rows.Err()
}
