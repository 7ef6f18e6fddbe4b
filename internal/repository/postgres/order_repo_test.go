package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"boothsale/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

const (
	submitLockTimeoutSQL = `SET LOCAL lock_timeout = '3s'`
	submitEventLockSQL   = `SELECT status FROM events WHERE id = \$1 FOR SHARE`
	submitProductLockSQL = `SELECT ep.current_stock, ep.price_at_event, mp.name`
	submitDecrementSQL   = `UPDATE event_products SET current_stock = current_stock - \$2`
	submitInsertOrderSQL = `INSERT INTO orders \(event_id, status, total\)`
	submitInsertLineSQL  = `INSERT INTO order_lines \(order_id, event_product_id, quantity, unit_price\)`
)

func lockedProductRows(stock int, price float64, name string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"current_stock", "price_at_event", "name"}).AddRow(stock, price, name)
}

func TestOrderRepository_SubmitSuccess(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(submitLockTimeoutSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(submitEventLockSQL).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("active"))

	// Product rows are locked in sorted id order regardless of cart order.
	mock.ExpectQuery(submitProductLockSQL).
		WithArgs("ep-a", "ev-1").
		WillReturnRows(lockedProductRows(10, 3.5, "Coffee"))
	mock.ExpectQuery(submitProductLockSQL).
		WithArgs("ep-b", "ev-1").
		WillReturnRows(lockedProductRows(5, 4.25, "Cake"))

	mock.ExpectExec(submitDecrementSQL).
		WithArgs("ep-a", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(submitDecrementSQL).
		WithArgs("ep-b", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(submitInsertOrderSQL).
		WithArgs("ev-1", domain.StatusPlaced, 11.25).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("order-1", created))
	mock.ExpectQuery(submitInsertLineSQL).
		WithArgs("order-1", "ep-a", 2, 3.5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("line-1"))
	mock.ExpectQuery(submitInsertLineSQL).
		WithArgs("order-1", "ep-b", 1, 4.25).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("line-2"))
	mock.ExpectCommit()

	repo := NewOrderRepository(db)
	order, err := repo.Submit(ctx, "ev-1", []domain.CartLine{
		{EventProductID: "ep-b", Quantity: 1},
		{EventProductID: "ep-a", Quantity: 2},
	})
	require.NoError(t, err)
	require.Equal(t, "order-1", order.ID)
	require.Equal(t, 11.25, order.Total)
	require.Len(t, order.Lines, 2)
	require.Equal(t, "Coffee", order.Lines[0].ProductName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_SubmitInsufficientStock(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(submitLockTimeoutSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(submitEventLockSQL).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("active"))
	mock.ExpectQuery(submitProductLockSQL).
		WithArgs("ep-a", "ev-1").
		WillReturnRows(lockedProductRows(50, 1.0, "Badge"))
	mock.ExpectQuery(submitProductLockSQL).
		WithArgs("ep-b", "ev-1").
		WillReturnRows(lockedProductRows(5, 0.5, "Sticker"))
	// No decrement, no insert: the whole transaction rolls back.
	mock.ExpectRollback()

	repo := NewOrderRepository(db)
	_, err = repo.Submit(ctx, "ev-1", []domain.CartLine{
		{EventProductID: "ep-a", Quantity: 2},
		{EventProductID: "ep-b", Quantity: 100},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Lines, 1)
	require.Equal(t, "ep-b", stockErr.Lines[0].EventProductID)
	require.Equal(t, 100, stockErr.Lines[0].Requested)
	require.Equal(t, 5, stockErr.Lines[0].Available)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_SubmitEventNotOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		status  string
		wantErr error
	}{
		{"planning", "planning", domain.ErrEventNotOpen},
		{"closed", "closed", domain.ErrEventNotOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectExec(submitLockTimeoutSQL).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(submitEventLockSQL).
				WithArgs("ev-1").
				WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(tt.status))
			mock.ExpectRollback()

			repo := NewOrderRepository(db)
			_, err = repo.Submit(ctx, "ev-1", []domain.CartLine{{EventProductID: "ep-a", Quantity: 1}})
			require.ErrorIs(t, err, tt.wantErr)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrderRepository_SubmitEventMissing(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(submitLockTimeoutSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(submitEventLockSQL).
		WithArgs("ev-missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	repo := NewOrderRepository(db)
	_, err = repo.Submit(ctx, "ev-missing", []domain.CartLine{{EventProductID: "ep-a", Quantity: 1}})
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_SubmitUnknownProduct(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(submitLockTimeoutSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(submitEventLockSQL).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("active"))
	mock.ExpectQuery(submitProductLockSQL).
		WithArgs("ep-ghost", "ev-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	repo := NewOrderRepository(db)
	_, err = repo.Submit(ctx, "ev-1", []domain.CartLine{{EventProductID: "ep-ghost", Quantity: 1}})
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_SubmitLockTimeout(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(submitLockTimeoutSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(submitEventLockSQL).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("active"))
	mock.ExpectQuery(submitProductLockSQL).
		WithArgs("ep-a", "ev-1").
		WillReturnError(&pq.Error{Code: pqLockNotAvailable})
	mock.ExpectRollback()

	repo := NewOrderRepository(db)
	_, err = repo.Submit(ctx, "ev-1", []domain.CartLine{{EventProductID: "ep-a", Quantity: 1}})
	require.ErrorIs(t, err, domain.ErrTimeout)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_ListByEvent(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE event_id = \$1`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT id, event_id, status, total, created_at`).
		WithArgs("ev-1", 2, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "status", "total", "created_at"}).
			AddRow("order-2", "ev-1", "placed", 7.0, created.Add(time.Minute)).
			AddRow("order-1", "ev-1", "placed", 3.5, created))
	mock.ExpectQuery(`SELECT ol.id, ol.order_id, ol.event_product_id, mp.name, ol.quantity, ol.unit_price`).
		WithArgs(pq.Array([]string{"order-2", "order-1"})).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "event_product_id", "name", "quantity", "unit_price"}).
			AddRow("line-1", "order-1", "ep-a", "Coffee", 1, 3.5).
			AddRow("line-2", "order-2", "ep-a", "Coffee", 2, 3.5))

	repo := NewOrderRepository(db)
	orders, total, err := repo.ListByEvent(ctx, "ev-1", domain.PaginationParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, orders, 2)
	require.Equal(t, "order-2", orders[0].ID)
	require.Len(t, orders[0].Lines, 1)
	require.Equal(t, 2, orders[0].Lines[0].Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}
