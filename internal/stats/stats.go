// Package stats aggregates catalog and order counts for the dashboard.
package stats

import (
	"context"

	"github.com/MikeMC777/storefront-api/internal/order"
	"github.com/shopspring/decimal"
)

// RecentLimit is the number of orders in Snapshot.RecentOrders.
const RecentLimit = 5

type ProductCounter interface {
	Count(ctx context.Context) (int64, error)
}

type OrderReader interface {
	Count(ctx context.Context) (int64, error)
	Revenue(ctx context.Context) (decimal.Decimal, error)
	Recent(ctx context.Context, n int) ([]order.Order, error)
}

type Snapshot struct {
	Products     int64           `json:"products"`
	Orders       int64           `json:"orders"`
	Revenue      decimal.Decimal `json:"revenue"`
	RecentOrders []order.Summary `json:"recent_orders"`
}

type Service struct {
	products ProductCounter
	orders   OrderReader
}

func NewService(products ProductCounter, orders OrderReader) *Service {
	return &Service{products: products, orders: orders}
}

// Snapshot recomputes every figure from the store on each call.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.Count(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orders.Revenue(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.orders.Recent(ctx, RecentLimit)
	if err != nil {
		return nil, err
	}

	out := &Snapshot{
		Products:     products,
		Orders:       orders,
		Revenue:      revenue,
		RecentOrders: make([]order.Summary, len(recent)),
	}
	for i, o := range recent {
		out.RecentOrders[i] = o.Summary()
	}
	return out, nil
}
