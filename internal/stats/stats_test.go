package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MikeMC777/storefront-api/internal/apperr"
	"github.com/MikeMC777/storefront-api/internal/clock"
	"github.com/MikeMC777/storefront-api/internal/order"
	"github.com/MikeMC777/storefront-api/internal/product"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup() (*Service, *order.Service, *product.Service, *clock.Fake) {
	clk := clock.NewFake(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	products := product.NewMemRepo()
	orders := order.NewMemRepo()
	ps := product.NewService(products, clk, nil)
	osvc := order.NewService(orders, products, clk, nil, nil)
	return NewService(ps, osvc), osvc, ps, clk
}

func newOrder(total string) order.CreateOrderRequest {
	price := decimal.RequireFromString("10")
	req := order.CreateOrderRequest{
		CustomerName:    "Grace",
		CustomerEmail:   "grace@example.com",
		ShippingAddress: "1 Cobol Way",
		Items:           []order.CreateOrderItem{{ProductID: uuid.NewString(), Quantity: 1, UnitPrice: &price}},
	}
	if total != "" {
		d := decimal.RequireFromString(total)
		req.TotalAmount = &d
	}
	return req
}

func TestSnapshotEmpty(t *testing.T) {
	svc, _, _, _ := setup()

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snap.Products)
	assert.Zero(t, snap.Orders)
	assert.True(t, snap.Revenue.IsZero())
	assert.NotNil(t, snap.RecentOrders)
	assert.Empty(t, snap.RecentOrders)
}

func TestSnapshotRevenue(t *testing.T) {
	svc, orders, _, _ := setup()
	ctx := context.Background()

	_, err := orders.Create(ctx, newOrder("50"))
	require.NoError(t, err)

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, snap.Orders)
	assert.True(t, snap.Revenue.Equal(decimal.NewFromInt(50)), "got %s", snap.Revenue)
}

func TestSnapshotRecentOrders(t *testing.T) {
	svc, orders, products, clk := setup()
	ctx := context.Background()

	price := decimal.NewFromInt(3)
	_, err := products.Create(ctx, product.CreateProductRequest{
		Name: "Mug", Description: "Ceramic", Price: &price, Category: product.CategoryHome,
	})
	require.NoError(t, err)

	var numbers []string
	for i := 0; i < 7; i++ {
		v, err := orders.Create(ctx, newOrder(""))
		require.NoError(t, err)
		numbers = append(numbers, v.OrderNumber)
		clk.Advance(time.Second)
	}

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, snap.Products)
	assert.EqualValues(t, 7, snap.Orders)
	assert.True(t, snap.Revenue.Equal(decimal.NewFromInt(70)))
	require.Len(t, snap.RecentOrders, RecentLimit)
	assert.Equal(t, numbers[6], snap.RecentOrders[0].OrderNumber)
	assert.Equal(t, numbers[2], snap.RecentOrders[4].OrderNumber)
	assert.Equal(t, order.StatusPending, snap.RecentOrders[0].Status)
}

type downCounter struct{}

func (downCounter) Count(context.Context) (int64, error) {
	return 0, apperr.Unavailable(errors.New("dial tcp: connection refused"))
}

func TestSnapshotPropagatesStoreFailure(t *testing.T) {
	_, orders, _, _ := setup()
	svc := NewService(downCounter{}, orders)

	_, err := svc.Snapshot(context.Background())
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
}
