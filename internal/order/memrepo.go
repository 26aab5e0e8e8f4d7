package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MemRepo is an in-process Repository used by the memory store driver and by tests.
type MemRepo struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewMemRepo() *MemRepo {
	return &MemRepo{orders: make(map[string]Order)}
}

func clone(o Order) Order {
	o.Items = append([]LineItem(nil), o.Items...)
	return o
}

func (r *MemRepo) Create(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = clone(*o)
	return nil
}

func (r *MemRepo) GetByID(_ context.Context, id string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o = clone(o)
	return &o, nil
}

func (r *MemRepo) List(_ context.Context, limit int) ([]Order, error) {
	r.mu.RLock()
	out := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, clone(o))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].CreatedAt.Compare(out[j].CreatedAt); c != 0 {
			return c > 0
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemRepo) UpdateStatus(_ context.Context, id string, status Status, at time.Time) (Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return "", ErrNotFound
	}
	prev := o.Status
	o.Status = status
	o.UpdatedAt = at
	if o.UpdatedAt.Before(o.CreatedAt) {
		o.UpdatedAt = o.CreatedAt
	}
	r.orders[id] = o
	return prev, nil
}

func (r *MemRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.orders)), nil
}

func (r *MemRepo) Revenue(_ context.Context) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := decimal.Zero
	for _, o := range r.orders {
		total = total.Add(o.TotalAmount)
	}
	return total, nil
}
