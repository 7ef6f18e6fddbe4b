package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"boothsale/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStock is the mutable per-binding state tracked by fakeOrderRepo.
type fakeStock struct {
	eventID string
	name    string
	price   float64
	stock   int
}

// fakeOrderRepo implements OrderRepository with the same all-or-nothing
// contract as the SQL implementation: the mutex plays the role of the row
// locks, so concurrent Submits serialize and stock can never go negative.
type fakeOrderRepo struct {
	mu       sync.Mutex
	events   *fakeEventRepo
	products map[string]*fakeStock
	orders   []*domain.Order
	nextID   int
}

func newFakeOrderRepo(events *fakeEventRepo) *fakeOrderRepo {
	return &fakeOrderRepo{
		events:   events,
		products: make(map[string]*fakeStock),
		nextID:   1,
	}
}

func (f *fakeOrderRepo) addProduct(id, eventID, name string, price float64, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[id] = &fakeStock{eventID: eventID, name: name, price: price, stock: stock}
}

func (f *fakeOrderRepo) stockOf(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].stock
}

func (f *fakeOrderRepo) Submit(ctx context.Context, eventID string, lines []domain.CartLine) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, err := f.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.StatusActive {
		return nil, domain.ErrEventNotOpen
	}

	sorted := make([]domain.CartLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].EventProductID < sorted[j].EventProductID })

	var short []domain.InsufficientLine
	for _, l := range sorted {
		p, ok := f.products[l.EventProductID]
		if !ok || p.eventID != eventID {
			return nil, fmt.Errorf("event product %s: %w", l.EventProductID, domain.ErrNotFound)
		}
		if p.stock < l.Quantity {
			short = append(short, domain.InsufficientLine{
				EventProductID: l.EventProductID,
				Name:           p.name,
				Requested:      l.Quantity,
				Available:      p.stock,
			})
		}
	}
	if len(short) > 0 {
		return nil, &domain.InsufficientStockError{Lines: short}
	}

	order := &domain.Order{
		ID:        fmt.Sprintf("order-%d", f.nextID),
		EventID:   eventID,
		Status:    domain.StatusPlaced,
		CreatedAt: time.Now(),
	}
	f.nextID++
	var total float64
	for _, l := range sorted {
		p := f.products[l.EventProductID]
		p.stock -= l.Quantity
		total += p.price * float64(l.Quantity)
		order.Lines = append(order.Lines, &domain.OrderLine{
			ID:             fmt.Sprintf("%s-line-%d", order.ID, len(order.Lines)+1),
			OrderID:        order.ID,
			EventProductID: l.EventProductID,
			ProductName:    p.name,
			Quantity:       l.Quantity,
			UnitPrice:      p.price,
		})
	}
	order.Total = math.Round(total*100) / 100
	f.orders = append(f.orders, order)
	return order, nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeOrderRepo) ListByEvent(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*domain.Order
	for _, o := range f.orders {
		if o.EventID == eventID {
			all = append(all, o)
		}
	}
	total := len(all)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// flakyOrderRepo fails Submit with a scripted error a fixed number of times
// before delegating to the wrapped repo.
type flakyOrderRepo struct {
	inner    domain.OrderRepository
	err      error
	failures int
	calls    int
}

func (f *flakyOrderRepo) Submit(ctx context.Context, eventID string, lines []domain.CartLine) (*domain.Order, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return f.inner.Submit(ctx, eventID, lines)
}

func (f *flakyOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return f.inner.GetByID(ctx, id)
}

func (f *flakyOrderRepo) ListByEvent(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.Order, int, error) {
	return f.inner.ListByEvent(ctx, eventID, p)
}

type orderFixture struct {
	events  *fakeEventRepo
	repo    *fakeOrderRepo
	svc     domain.OrderService
	eventID string
}

func newOrderFixture(t *testing.T, status domain.EventStatus) *orderFixture {
	t.Helper()
	events := newFakeEventRepo()
	e := domain.NewEvent("Test Market", nil, nil, time.Now(), time.Now())
	require.NoError(t, events.Create(context.Background(), e))
	events.setStatus(e.ID, status)
	repo := newFakeOrderRepo(events)
	return &orderFixture{
		events:  events,
		repo:    repo,
		svc:     NewOrderService(repo, events, testLogger(), time.Second),
		eventID: e.ID,
	}
}

func TestOrderService_SubmitOrder(t *testing.T) {
	ctx := context.Background()
	fx := newOrderFixture(t, domain.StatusActive)
	fx.repo.addProduct("ep-coffee", fx.eventID, "Coffee", 3.5, 10)
	fx.repo.addProduct("ep-cake", fx.eventID, "Cake", 4.25, 5)

	order, err := fx.svc.SubmitOrder(ctx, fx.eventID, []domain.CartLine{
		{EventProductID: "ep-coffee", Quantity: 2},
		{EventProductID: "ep-cake", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlaced, order.Status)
	assert.Equal(t, 11.25, order.Total)
	assert.Len(t, order.Lines, 2)
	assert.Equal(t, 8, fx.repo.stockOf("ep-coffee"))
	assert.Equal(t, 4, fx.repo.stockOf("ep-cake"))
}

func TestOrderService_SubmitOrderValidation(t *testing.T) {
	ctx := context.Background()
	fx := newOrderFixture(t, domain.StatusActive)
	fx.repo.addProduct("ep-1", fx.eventID, "Coffee", 3.5, 10)

	tests := []struct {
		name  string
		lines []domain.CartLine
	}{
		{"empty cart", nil},
		{"zero quantity", []domain.CartLine{{EventProductID: "ep-1", Quantity: 0}}},
		{"negative quantity", []domain.CartLine{{EventProductID: "ep-1", Quantity: -3}}},
		{"missing product id", []domain.CartLine{{EventProductID: "", Quantity: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.SubmitOrder(ctx, fx.eventID, tt.lines)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
	assert.Equal(t, 10, fx.repo.stockOf("ep-1"), "rejected carts must not touch stock")
}

func TestOrderService_SubmitOrderMergesDuplicateLines(t *testing.T) {
	ctx := context.Background()
	fx := newOrderFixture(t, domain.StatusActive)
	fx.repo.addProduct("ep-1", fx.eventID, "Coffee", 2.0, 10)

	order, err := fx.svc.SubmitOrder(ctx, fx.eventID, []domain.CartLine{
		{EventProductID: "ep-1", Quantity: 2},
		{EventProductID: "ep-1", Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, 5, order.Lines[0].Quantity)
	assert.Equal(t, 5, fx.repo.stockOf("ep-1"))
}

func TestOrderService_SubmitOrderEventNotOpen(t *testing.T) {
	ctx := context.Background()
	for _, status := range []domain.EventStatus{domain.StatusPlanning, domain.StatusClosed} {
		t.Run(string(status), func(t *testing.T) {
			fx := newOrderFixture(t, status)
			fx.repo.addProduct("ep-1", fx.eventID, "Coffee", 3.5, 10)

			_, err := fx.svc.SubmitOrder(ctx, fx.eventID, []domain.CartLine{{EventProductID: "ep-1", Quantity: 1}})
			assert.ErrorIs(t, err, domain.ErrEventNotOpen)
			assert.Equal(t, 10, fx.repo.stockOf("ep-1"))
		})
	}
}

func TestOrderService_SubmitOrderUnknownEvent(t *testing.T) {
	fx := newOrderFixture(t, domain.StatusActive)
	_, err := fx.svc.SubmitOrder(context.Background(), "missing", []domain.CartLine{{EventProductID: "ep-1", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderService_SubmitOrderAllOrNothing(t *testing.T) {
	ctx := context.Background()
	fx := newOrderFixture(t, domain.StatusActive)
	fx.repo.addProduct("ep-a", fx.eventID, "Badge", 1.0, 50)
	fx.repo.addProduct("ep-b", fx.eventID, "Sticker", 0.5, 5)

	_, err := fx.svc.SubmitOrder(ctx, fx.eventID, []domain.CartLine{
		{EventProductID: "ep-a", Quantity: 2},
		{EventProductID: "ep-b", Quantity: 100},
	})
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Lines, 1)
	assert.Equal(t, "ep-b", stockErr.Lines[0].EventProductID)
	assert.Equal(t, "Sticker", stockErr.Lines[0].Name)
	assert.Equal(t, 100, stockErr.Lines[0].Requested)
	assert.Equal(t, 5, stockErr.Lines[0].Available)

	// Neither line may have been applied.
	assert.Equal(t, 50, fx.repo.stockOf("ep-a"))
	assert.Equal(t, 5, fx.repo.stockOf("ep-b"))
}

func TestOrderService_ConcurrentSubmitsLastUnit(t *testing.T) {
	ctx := context.Background()
	fx := newOrderFixture(t, domain.StatusActive)
	fx.repo.addProduct("ep-last", fx.eventID, "Final Print", 20.0, 1)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = fx.svc.SubmitOrder(ctx, fx.eventID, []domain.CartLine{{EventProductID: "ep-last", Quantity: 1}})
		}(i)
	}
	wg.Wait()

	var ok, short int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactly one submission may win the last unit")
	assert.Equal(t, 1, short)
	assert.Equal(t, 0, fx.repo.stockOf("ep-last"))
}

func TestOrderService_ConcurrentSubmitsNeverOversell(t *testing.T) {
	ctx := context.Background()
	fx := newOrderFixture(t, domain.StatusActive)
	const initialStock = 5
	const attempts = 20
	fx.repo.addProduct("ep-hot", fx.eventID, "Hot Item", 9.99, initialStock)

	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = fx.svc.SubmitOrder(ctx, fx.eventID, []domain.CartLine{{EventProductID: "ep-hot", Quantity: 1}})
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range results {
		if err == nil {
			ok++
		} else {
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
	}
	assert.Equal(t, initialStock, ok)
	assert.Equal(t, 0, fx.repo.stockOf("ep-hot"))
}

func TestOrderService_RestockThenOrderFullQuantity(t *testing.T) {
	ctx := context.Background()
	fx := newOrderFixture(t, domain.StatusActive)
	fx.repo.addProduct("ep-resupply", fx.eventID, "Zine", 6.0, 0)

	_, err := fx.svc.SubmitOrder(ctx, fx.eventID, []domain.CartLine{{EventProductID: "ep-resupply", Quantity: 10}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Mid-event resupply.
	fx.repo.addProduct("ep-resupply", fx.eventID, "Zine", 6.0, 10)

	order, err := fx.svc.SubmitOrder(ctx, fx.eventID, []domain.CartLine{{EventProductID: "ep-resupply", Quantity: 10}})
	require.NoError(t, err)
	assert.Equal(t, 60.0, order.Total)
	assert.Equal(t, 0, fx.repo.stockOf("ep-resupply"))
}

func TestOrderService_UnitPriceSurvivesLaterPriceChange(t *testing.T) {
	ctx := context.Background()
	fx := newOrderFixture(t, domain.StatusActive)
	fx.repo.addProduct("ep-1", fx.eventID, "Coffee", 3.5, 10)

	order, err := fx.svc.SubmitOrder(ctx, fx.eventID, []domain.CartLine{{EventProductID: "ep-1", Quantity: 1}})
	require.NoError(t, err)
	require.Len(t, order.Lines, 1)
	require.Equal(t, 3.5, order.Lines[0].UnitPrice)

	// An admin price change after commit must not rewrite history.
	fx.repo.mu.Lock()
	fx.repo.products["ep-1"].price = 9.99
	fx.repo.mu.Unlock()

	got, err := fx.repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.5, got.Lines[0].UnitPrice)
	assert.Equal(t, 3.5, got.Total)
}

func TestOrderService_SubmitRetriesOnTimeout(t *testing.T) {
	ctx := context.Background()
	fx := newOrderFixture(t, domain.StatusActive)
	fx.repo.addProduct("ep-1", fx.eventID, "Coffee", 3.0, 10)

	flaky := &flakyOrderRepo{inner: fx.repo, err: domain.ErrTimeout, failures: submitRetries}
	svc := NewOrderService(flaky, fx.events, testLogger(), time.Second)

	order, err := svc.SubmitOrder(ctx, fx.eventID, []domain.CartLine{{EventProductID: "ep-1", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, submitRetries+1, flaky.calls)
	assert.Equal(t, 9, fx.repo.stockOf("ep-1"))
	assert.NotNil(t, order)
}

func TestOrderService_SubmitTimeoutExhaustsRetries(t *testing.T) {
	ctx := context.Background()
	fx := newOrderFixture(t, domain.StatusActive)
	fx.repo.addProduct("ep-1", fx.eventID, "Coffee", 3.0, 10)

	flaky := &flakyOrderRepo{inner: fx.repo, err: domain.ErrTimeout, failures: submitRetries + 5}
	svc := NewOrderService(flaky, fx.events, testLogger(), time.Second)

	_, err := svc.SubmitOrder(ctx, fx.eventID, []domain.CartLine{{EventProductID: "ep-1", Quantity: 1}})
	require.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, submitRetries+1, flaky.calls)
	assert.Equal(t, 10, fx.repo.stockOf("ep-1"))
}

func TestOrderService_InsufficientStockIsNotRetried(t *testing.T) {
	ctx := context.Background()
	fx := newOrderFixture(t, domain.StatusActive)
	fx.repo.addProduct("ep-1", fx.eventID, "Coffee", 3.0, 10)

	flaky := &flakyOrderRepo{
		inner:    fx.repo,
		err:      &domain.InsufficientStockError{Lines: []domain.InsufficientLine{{EventProductID: "ep-1", Requested: 2, Available: 1}}},
		failures: 1,
	}
	svc := NewOrderService(flaky, fx.events, testLogger(), time.Second)

	_, err := svc.SubmitOrder(ctx, fx.eventID, []domain.CartLine{{EventProductID: "ep-1", Quantity: 2}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, flaky.calls)
}

func TestOrderService_ListOrders(t *testing.T) {
	ctx := context.Background()
	fx := newOrderFixture(t, domain.StatusActive)
	fx.repo.addProduct("ep-1", fx.eventID, "Coffee", 2.0, 100)

	for i := 0; i < 3; i++ {
		_, err := fx.svc.SubmitOrder(ctx, fx.eventID, []domain.CartLine{{EventProductID: "ep-1", Quantity: 1}})
		require.NoError(t, err)
	}

	orders, total, err := fx.svc.ListOrders(ctx, fx.eventID, domain.PaginationParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, orders, 2)

	_, _, err = fx.svc.ListOrders(ctx, "missing", domain.PaginationParams{Page: 1, PageSize: 2})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
