package postgres

import (
	"context"
	"database/sql"

	"boothsale/internal/domain"
)

type statsRepository struct {
	DB *sql.DB
}

func NewStatsRepository(db *sql.DB) domain.StatsRepository {
	return &statsRepository{
		DB: db,
	}
}

func (r *statsRepository) Summary(ctx context.Context, eventID string) (*domain.EventStatsSummary, error) {
	// Separate subqueries: joining orders to lines would repeat each order's
	// total once per line.
	query := `
		SELECT COALESCE((SELECT SUM(total) FROM orders WHERE event_id = $1), 0),
		       (SELECT COUNT(*) FROM orders WHERE event_id = $1),
		       COALESCE((SELECT SUM(ol.quantity)
		                 FROM order_lines ol
		                 JOIN orders o ON o.id = ol.order_id
		                 WHERE o.event_id = $1), 0)
	`
	s := &domain.EventStatsSummary{}
	err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&s.TotalRevenue, &s.OrdersCount, &s.TotalItemsSold)
	if err != nil {
		return nil, err
	}
	s.TotalRevenue = round2(s.TotalRevenue)
	return s, nil
}

func (r *statsRepository) PerProduct(ctx context.Context, eventID string) ([]*domain.ProductStats, error) {
	query := `
		SELECT ep.id, mp.product_code, mp.name, ep.price_at_event, ep.current_stock,
		       COALESCE(SUM(ol.quantity), 0),
		       COALESCE(SUM(ol.quantity * ol.unit_price), 0)
		FROM event_products ep
		JOIN master_products mp ON mp.id = ep.master_product_id
		LEFT JOIN order_lines ol ON ol.event_product_id = ep.id
		WHERE ep.event_id = $1
		GROUP BY ep.id, mp.product_code, mp.name, ep.price_at_event, ep.current_stock
		ORDER BY mp.product_code
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stats := make([]*domain.ProductStats, 0)
	for rows.Next() {
		ps := &domain.ProductStats{}
		if err := rows.Scan(&ps.EventProductID, &ps.ProductCode, &ps.Name, &ps.Price, &ps.CurrentStock, &ps.SoldCount, &ps.Revenue); err != nil {
			return nil, err
		}
		ps.Revenue = round2(ps.Revenue)
		stats = append(stats, ps)
	}
	return stats, rows.Err()
}
