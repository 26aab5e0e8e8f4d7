package order

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/MikeMC777/storefront-api/internal/apperr"
	"github.com/MikeMC777/storefront-api/internal/clock"
	"github.com/MikeMC777/storefront-api/internal/events"
	"github.com/MikeMC777/storefront-api/internal/product"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	last   events.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, e events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.last = e
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	svc      *Service
	orders   *MemRepo
	products *product.MemRepo
	clock    *clock.Fake
	pub      *recordingPublisher
}

func newFixture() *fixture {
	f := &fixture{
		orders:   NewMemRepo(),
		products: product.NewMemRepo(),
		clock:    clock.NewFake(time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)),
		pub:      &recordingPublisher{},
	}
	f.svc = NewService(f.orders, f.products, f.clock, f.pub, nil)
	return f
}

func (f *fixture) addProduct(t *testing.T, name, price string) product.Product {
	t.Helper()
	p := product.Product{
		ID:        uuid.NewString(),
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Category:  product.CategoryOther,
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	require.NoError(t, f.products.Create(context.Background(), &p))
	return p
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func baseRequest(items ...CreateOrderItem) CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		ShippingAddress: "12 Analytical St",
		Items:           items,
	}
}

func TestCreateComputesTotal(t *testing.T) {
	f := newFixture()
	a := f.addProduct(t, "A", "99")
	b := f.addProduct(t, "B", "99")

	v, err := f.svc.Create(context.Background(), baseRequest(
		CreateOrderItem{ProductID: a.ID, Quantity: 2, UnitPrice: dec("10")},
		CreateOrderItem{ProductID: b.ID, Quantity: 1, UnitPrice: dec("5")},
	))
	require.NoError(t, err)

	assert.True(t, v.TotalAmount.Equal(decimal.NewFromInt(25)), "got %s", v.TotalAmount)
	assert.Equal(t, StatusPending, v.Status)
	assert.Equal(t, v.CreatedAt, v.UpdatedAt)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d+-[0-9a-z]{9}$`), v.OrderNumber)
	require.Len(t, v.LineItems, 2)
	assert.Equal(t, a.ID, v.LineItems[0].Product.ID)
	assert.Equal(t, []string{events.OrderCreatedTopic}, f.pub.topics)
}

func TestCreateKeepsSuppliedPriceAndTotal(t *testing.T) {
	f := newFixture()
	a := f.addProduct(t, "A", "99")

	req := baseRequest(CreateOrderItem{ProductID: a.ID, Quantity: 1, UnitPrice: dec("10")})
	req.TotalAmount = dec("50")
	v, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, v.Items[0].UnitPrice.Equal(decimal.NewFromInt(10)))
	assert.True(t, v.TotalAmount.Equal(decimal.NewFromInt(50)))
}

func TestCreateResolvesOmittedPriceOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.addProduct(t, "Keyboard", "12.50")

	v, err := f.svc.Create(ctx, baseRequest(CreateOrderItem{ProductID: a.ID, Quantity: 2}))
	require.NoError(t, err)
	assert.True(t, v.TotalAmount.Equal(decimal.RequireFromString("25")))
	assert.Equal(t, "Keyboard", v.Items[0].ProductName)

	// Later catalog changes do not reach the snapshot.
	a.Price = decimal.RequireFromString("99")
	a.Name = "Keyboard v2"
	require.NoError(t, f.products.Update(ctx, &a))

	got, err := f.svc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, "Keyboard", got.Items[0].ProductName)
	assert.Equal(t, "Keyboard v2", got.LineItems[0].Product.Name)
}

func TestCreateUnknownProductWithoutPrice(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), baseRequest(CreateOrderItem{ProductID: uuid.NewString(), Quantity: 1}))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateRejects(t *testing.T) {
	pid := uuid.NewString()
	good := CreateOrderItem{ProductID: pid, Quantity: 1, UnitPrice: dec("1")}

	cases := []struct {
		name   string
		req    CreateOrderRequest
		target error
		field  string
	}{
		{"no_items", baseRequest(), apperr.ErrMissingField, "items"},
		{"no_customer", func() CreateOrderRequest { r := baseRequest(good); r.CustomerName = " "; return r }(), apperr.ErrMissingField, "customer_name"},
		{"no_email", func() CreateOrderRequest { r := baseRequest(good); r.CustomerEmail = ""; return r }(), apperr.ErrMissingField, "customer_email"},
		{"no_address", func() CreateOrderRequest { r := baseRequest(good); r.ShippingAddress = ""; return r }(), apperr.ErrMissingField, "shipping_address"},
		{"missing_product", baseRequest(CreateOrderItem{Quantity: 1, UnitPrice: dec("1")}), apperr.ErrMissingField, "items[0].product_id"},
		{"bad_product_id", baseRequest(CreateOrderItem{ProductID: "abc", Quantity: 1, UnitPrice: dec("1")}), apperr.ErrInvalidIdentifier, "items[0].product_id"},
		{"zero_quantity", baseRequest(good, CreateOrderItem{ProductID: pid, Quantity: 0, UnitPrice: dec("1")}), apperr.ErrOutOfRange, "items[1].quantity"},
		{"negative_price", baseRequest(CreateOrderItem{ProductID: pid, Quantity: 1, UnitPrice: dec("-1")}), apperr.ErrOutOfRange, "items[0].unit_price"},
		{"negative_total", func() CreateOrderRequest { r := baseRequest(good); r.TotalAmount = dec("-3"); return r }(), apperr.ErrOutOfRange, "total_amount"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Create(context.Background(), tc.req)
			require.ErrorIs(t, err, tc.target)

			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tc.field, appErr.Field)

			n, _ := f.svc.Count(context.Background())
			assert.Zero(t, n, "a rejected order must not be persisted")
			assert.Empty(t, f.pub.topics)
		})
	}
}

func TestOrderNumbersUniqueWithinOneMillisecond(t *testing.T) {
	f := newFixture()
	pid := uuid.NewString()
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		v, err := f.svc.Create(context.Background(), baseRequest(CreateOrderItem{ProductID: pid, Quantity: 1, UnitPrice: dec("1")}))
		require.NoError(t, err)
		require.False(t, seen[v.OrderNumber], "duplicate %s", v.OrderNumber)
		seen[v.OrderNumber] = true
	}
	assert.Len(t, seen, 200)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.svc.Create(ctx, baseRequest(CreateOrderItem{ProductID: uuid.NewString(), Quantity: 1, UnitPrice: dec("3")}))
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	up, err := f.svc.UpdateStatus(ctx, v.ID, StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, up.Status)
	assert.True(t, up.UpdatedAt.After(up.CreatedAt))

	got, err := f.svc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, got.Status)
	assert.Equal(t, v.OrderNumber, got.OrderNumber)

	assert.Equal(t, events.OrderStatusChangedTopic, f.pub.topics[len(f.pub.topics)-1])
	assert.Equal(t, "pending", f.pub.last.PreviousStatus)

	// No transition rules: a delivered order may go back to pending.
	_, err = f.svc.UpdateStatus(ctx, v.ID, StatusDelivered)
	require.NoError(t, err)
	back, err := f.svc.UpdateStatus(ctx, v.ID, StatusPending)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, back.Status)
}

func TestUpdateStatusRejects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.svc.Create(ctx, baseRequest(CreateOrderItem{ProductID: uuid.NewString(), Quantity: 1, UnitPrice: dec("3")}))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, v.ID, "lost")
	assert.ErrorIs(t, err, apperr.ErrInvalidEnum)

	_, err = f.svc.UpdateStatus(ctx, uuid.NewString(), StatusShipped)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.UpdateStatus(ctx, "42", StatusShipped)
	assert.ErrorIs(t, err, apperr.ErrInvalidIdentifier)
}

func TestDeletedProductStaysReferenced(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.addProduct(t, "A", "4")

	v, err := f.svc.Create(ctx, baseRequest(CreateOrderItem{ProductID: a.ID, Quantity: 3}))
	require.NoError(t, err)

	ok, err := f.products.Delete(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := f.svc.Get(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, got.LineItems, 1)
	assert.Nil(t, got.LineItems[0].Product)
	assert.Equal(t, a.ID, got.LineItems[0].ProductID)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(12)))
}

func TestListNewestFirstAndCapped(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	pid := uuid.NewString()
	var last string
	for i := 0; i < ListCap+5; i++ {
		v, err := f.svc.Create(ctx, baseRequest(CreateOrderItem{ProductID: pid, Quantity: 1, UnitPrice: dec("1")}))
		require.NoError(t, err)
		last = v.ID
		f.clock.Advance(time.Millisecond)
	}

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, ListCap)
	assert.Equal(t, last, list[0].ID)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt))
	}
}

func TestPublishFailureDoesNotFailCreate(t *testing.T) {
	f := newFixture()
	f.pub.err = errors.New("broker down")

	_, err := f.svc.Create(context.Background(), baseRequest(CreateOrderItem{ProductID: uuid.NewString(), Quantity: 1, UnitPrice: dec("1")}))
	require.NoError(t, err)
	n, _ := f.svc.Count(context.Background())
	assert.EqualValues(t, 1, n)
}

func TestGetRejects(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrInvalidIdentifier)
	_, err = f.svc.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// flakyCatalog serves from products until down is set.
type flakyCatalog struct {
	products *product.MemRepo
	down     bool
}

func (c *flakyCatalog) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	if c.down {
		return nil, apperr.Unavailable(errors.New("conn reset"))
	}
	return c.products.GetByIDs(ctx, ids)
}

func TestCatalogOutageAfterWriteDoesNotFailCall(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.addProduct(t, "A", "7")
	catalog := &flakyCatalog{products: f.products, down: true}
	f.svc = NewService(f.orders, catalog, f.clock, f.pub, nil)

	v, err := f.svc.Create(ctx, baseRequest(CreateOrderItem{ProductID: a.ID, Quantity: 2, UnitPrice: dec("7")}))
	require.NoError(t, err)
	require.Len(t, v.LineItems, 1)
	assert.Nil(t, v.LineItems[0].Product)
	assert.Equal(t, a.ID, v.LineItems[0].ProductID)
	assert.True(t, v.TotalAmount.Equal(decimal.NewFromInt(14)))
	n, err := f.svc.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	f.clock.Advance(time.Minute)
	up, err := f.svc.UpdateStatus(ctx, v.ID, StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, up.Status)
	assert.Equal(t, f.clock.Now(), up.UpdatedAt)
	assert.Nil(t, up.LineItems[0].Product)
	assert.Equal(t, []string{events.OrderCreatedTopic, events.OrderStatusChangedTopic}, f.pub.topics)

	// Reads before any write still report the outage.
	_, err = f.svc.Get(ctx, v.ID)
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)

	catalog.down = false
	got, err := f.svc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, got.Status)
	require.NotNil(t, got.LineItems[0].Product)
}
