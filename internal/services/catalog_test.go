package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"boothsale/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMasterProductRepo is an in-memory MasterProductRepository for tests.
type fakeMasterProductRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.MasterProduct
	nextID int
}

func newFakeMasterProductRepo() *fakeMasterProductRepo {
	return &fakeMasterProductRepo{
		byID:   make(map[string]*domain.MasterProduct),
		nextID: 1,
	}
}

func (f *fakeMasterProductRepo) Create(ctx context.Context, p *domain.MasterProduct) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.ProductCode == p.ProductCode {
			return domain.ErrConflict
		}
	}
	p.ID = fmt.Sprintf("mp-%d", f.nextID)
	f.nextID++
	f.byID[p.ID] = p
	return nil
}

func (f *fakeMasterProductRepo) GetByID(ctx context.Context, id string) (*domain.MasterProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.byID[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMasterProductRepo) GetByCode(ctx context.Context, productCode string) (*domain.MasterProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.ProductCode == productCode {
			copied := *p
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMasterProductRepo) List(ctx context.Context, includeInactive bool) ([]*domain.MasterProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.MasterProduct{}
	for _, p := range f.byID {
		if includeInactive || p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeMasterProductRepo) Update(ctx context.Context, id string, spec domain.MasterProductSpec) (*domain.MasterProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for otherID, other := range f.byID {
		if otherID != id && other.ProductCode == spec.ProductCode {
			return nil, domain.ErrConflict
		}
	}
	p.ProductCode = spec.ProductCode
	p.Name = spec.Name
	p.Price = spec.Price
	p.ImageURL = spec.ImageURL
	p.UpdatedAt = time.Now()
	copied := *p
	return &copied, nil
}

func (f *fakeMasterProductRepo) SetActive(ctx context.Context, id string, active bool) (*domain.MasterProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.IsActive = active
	copied := *p
	return &copied, nil
}

func TestCatalogService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMasterProductRepo()
	svc := NewCatalogService(repo, time.Second)

	p, err := svc.CreateProduct(ctx, domain.MasterProductSpec{ProductCode: "A01", Name: "Drip Coffee", Price: 3.5})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.True(t, p.IsActive)

	// Duplicate product code.
	_, err = svc.CreateProduct(ctx, domain.MasterProductSpec{ProductCode: "A01", Name: "Other", Price: 1})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCatalogService_CreateProductValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(newFakeMasterProductRepo(), time.Second)

	tests := []struct {
		name string
		spec domain.MasterProductSpec
	}{
		{"missing code", domain.MasterProductSpec{Name: "Coffee", Price: 1}},
		{"blank code", domain.MasterProductSpec{ProductCode: "   ", Name: "Coffee", Price: 1}},
		{"missing name", domain.MasterProductSpec{ProductCode: "A01", Price: 1}},
		{"negative price", domain.MasterProductSpec{ProductCode: "A01", Name: "Coffee", Price: -0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tt.spec)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestCatalogService_CreateProductTrimsFields(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(newFakeMasterProductRepo(), time.Second)

	p, err := svc.CreateProduct(ctx, domain.MasterProductSpec{ProductCode: "  A01  ", Name: "  Coffee ", Price: 3})
	require.NoError(t, err)
	assert.Equal(t, "A01", p.ProductCode)
	assert.Equal(t, "Coffee", p.Name)
}

func TestCatalogService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMasterProductRepo()
	svc := NewCatalogService(repo, time.Second)

	p, err := svc.CreateProduct(ctx, domain.MasterProductSpec{ProductCode: "A01", Name: "Coffee", Price: 3})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(ctx, p.ID, domain.MasterProductSpec{ProductCode: "A01", Name: "Iced Coffee", Price: 4})
	require.NoError(t, err)
	assert.Equal(t, "Iced Coffee", updated.Name)
	assert.Equal(t, 4.0, updated.Price)

	_, err = svc.UpdateProduct(ctx, "missing", domain.MasterProductSpec{ProductCode: "B01", Name: "X", Price: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogService_SetActive(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMasterProductRepo()
	svc := NewCatalogService(repo, time.Second)

	p, err := svc.CreateProduct(ctx, domain.MasterProductSpec{ProductCode: "A01", Name: "Coffee", Price: 3})
	require.NoError(t, err)

	deactivated, err := svc.SetActive(ctx, p.ID, false)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	reactivated, err := svc.SetActive(ctx, p.ID, true)
	require.NoError(t, err)
	assert.True(t, reactivated.IsActive)
}

func TestCatalogService_GetByCode(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMasterProductRepo()
	svc := NewCatalogService(repo, time.Second)

	created, err := svc.CreateProduct(ctx, domain.MasterProductSpec{ProductCode: "A01", Name: "Coffee", Price: 3})
	require.NoError(t, err)

	got, err := svc.GetByCode(ctx, "A01")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetByCode(ctx, "ZZZ")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
