package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"boothsale/internal/domain"
)

type catalogService struct {
	productRepo    domain.MasterProductRepository
	contextTimeout time.Duration
}

// NewCatalogService returns the master catalog service.
func NewCatalogService(productRepo domain.MasterProductRepository, timeout time.Duration) domain.CatalogService {
	return &catalogService{
		productRepo:    productRepo,
		contextTimeout: timeout,
	}
}

func validateProductSpec(spec *domain.MasterProductSpec) error {
	spec.ProductCode = strings.TrimSpace(spec.ProductCode)
	spec.Name = strings.TrimSpace(spec.Name)
	if spec.ProductCode == "" {
		return fmt.Errorf("%w: product_code is required", domain.ErrInvalidArgument)
	}
	if spec.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidArgument)
	}
	if spec.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidArgument)
	}
	return nil
}

func (s *catalogService) CreateProduct(ctx context.Context, spec domain.MasterProductSpec) (*domain.MasterProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateProductSpec(&spec); err != nil {
		return nil, err
	}

	now := time.Now()
	product := domain.NewMasterProduct(spec.ProductCode, spec.Name, spec.Price, spec.ImageURL, now, now)
	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: product code %q already exists", domain.ErrConflict, spec.ProductCode)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id string, spec domain.MasterProductSpec) (*domain.MasterProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateProductSpec(&spec); err != nil {
		return nil, err
	}

	product, err := s.productRepo.Update(ctx, id, spec)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

func (s *catalogService) SetActive(ctx context.Context, id string, active bool) (*domain.MasterProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	product, err := s.productRepo.SetActive(ctx, id, active)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("set product active: %w", err)
	}
	return product, nil
}

func (s *catalogService) List(ctx context.Context, includeInactive bool) ([]*domain.MasterProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	products, err := s.productRepo.List(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *catalogService) GetByCode(ctx context.Context, productCode string) (*domain.MasterProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	product, err := s.productRepo.GetByCode(ctx, productCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get product by code: %w", err)
	}
	return product, nil
}
