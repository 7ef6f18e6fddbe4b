package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	"boothsale/internal/domain"
)

// Postgres error codes mapped to domain errors.
const (
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"
	pqLockNotAvailable    = "55P03"
	pqForeignKeyViolation = "23503"
)

func pqErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

type masterProductRepository struct {
	DB *sql.DB
}

func NewMasterProductRepository(db *sql.DB) domain.MasterProductRepository {
	return &masterProductRepository{
		DB: db,
	}
}

const masterProductColumns = `id, product_code, name, price, image_url, is_active, created_at, updated_at`

func scanMasterProduct(row interface{ Scan(...any) error }) (*domain.MasterProduct, error) {
	p := &domain.MasterProduct{}
	var imageNull sql.NullString
	err := row.Scan(&p.ID, &p.ProductCode, &p.Name, &p.Price, &imageNull, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if imageNull.Valid {
		p.ImageURL = &imageNull.String
	}
	return p, nil
}

func (r *masterProductRepository) Create(ctx context.Context, p *domain.MasterProduct) error {
	query := `
		INSERT INTO master_products (product_code, name, price, image_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		p.ProductCode, p.Name, p.Price, p.ImageURL, p.IsActive, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if pqErrorCode(err) == pqUniqueViolation {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *masterProductRepository) GetByID(ctx context.Context, id string) (*domain.MasterProduct, error) {
	query := `SELECT ` + masterProductColumns + ` FROM master_products WHERE id = $1`
	p, err := scanMasterProduct(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *masterProductRepository) GetByCode(ctx context.Context, productCode string) (*domain.MasterProduct, error) {
	code := strings.TrimSpace(productCode)
	query := `SELECT ` + masterProductColumns + ` FROM master_products WHERE product_code = $1`
	p, err := scanMasterProduct(r.DB.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *masterProductRepository) List(ctx context.Context, includeInactive bool) ([]*domain.MasterProduct, error) {
	query := `SELECT ` + masterProductColumns + ` FROM master_products`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY product_code`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := make([]*domain.MasterProduct, 0)
	for rows.Next() {
		p, err := scanMasterProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *masterProductRepository) Update(ctx context.Context, id string, spec domain.MasterProductSpec) (*domain.MasterProduct, error) {
	query := `
		UPDATE master_products
		SET product_code = $2, name = $3, price = $4, image_url = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + masterProductColumns
	p, err := scanMasterProduct(r.DB.QueryRowContext(ctx, query, id, spec.ProductCode, spec.Name, spec.Price, spec.ImageURL))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if pqErrorCode(err) == pqUniqueViolation {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return p, nil
}

func (r *masterProductRepository) SetActive(ctx context.Context, id string, active bool) (*domain.MasterProduct, error) {
	query := `
		UPDATE master_products SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + masterProductColumns
	p, err := scanMasterProduct(r.DB.QueryRowContext(ctx, query, id, active))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}
