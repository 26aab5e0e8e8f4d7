package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MikeMC777/storefront-api/internal/apperr"
	"github.com/MikeMC777/storefront-api/internal/clock"
	"github.com/MikeMC777/storefront-api/internal/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ListCap is the fixed number of orders returned by List.
const ListCap = 100

type Service struct {
	repo    Repository
	catalog Catalog
	numbers *NumberGenerator
	clock   clock.Clock
	events  events.Publisher
	log     *zap.Logger
}

func NewService(repo Repository, catalog Catalog, clk clock.Clock, pub events.Publisher, log *zap.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		catalog: catalog,
		numbers: NewNumberGenerator(clk),
		clock:   clk,
		events:  pub,
		log:     log.Named("order.service"),
	}
}

func parseID(field, id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", apperr.InvalidID(field, id)
	}
	return u.String(), nil
}

func required(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", apperr.Missing(field)
	}
	return v, nil
}

// build validates req and returns the order without id, number or timestamps.
// Items whose price was omitted keep a zero UnitPrice and are reported in
// unpriced for the caller to resolve.
func build(req CreateOrderRequest) (o *Order, unpriced []int, err error) {
	o = &Order{Status: StatusPending}
	if o.CustomerName, err = required("customer_name", req.CustomerName); err != nil {
		return nil, nil, err
	}
	if o.CustomerEmail, err = required("customer_email", req.CustomerEmail); err != nil {
		return nil, nil, err
	}
	if o.ShippingAddress, err = required("shipping_address", req.ShippingAddress); err != nil {
		return nil, nil, err
	}
	if len(req.Items) == 0 {
		return nil, nil, apperr.Missing("items")
	}

	o.Items = make([]LineItem, len(req.Items))
	for i, in := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(in.ProductID) == "" {
			return nil, nil, apperr.Missing(field + ".product_id")
		}
		pid, err := parseID(field+".product_id", in.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if in.Quantity <= 0 {
			return nil, nil, apperr.Range(field+".quantity", "quantity must be greater than 0")
		}
		it := LineItem{
			ProductID:   pid,
			ProductName: strings.TrimSpace(in.ProductName),
			Quantity:    in.Quantity,
		}
		if in.UnitPrice == nil {
			unpriced = append(unpriced, i)
		} else {
			if in.UnitPrice.IsNegative() {
				return nil, nil, apperr.Range(field+".unit_price", "unit_price must be greater than or equal to 0")
			}
			it.UnitPrice = *in.UnitPrice
		}
		o.Items[i] = it
	}

	if req.TotalAmount != nil {
		if req.TotalAmount.IsNegative() {
			return nil, nil, apperr.Range("total_amount", "total_amount must be greater than or equal to 0")
		}
		o.TotalAmount = *req.TotalAmount
	}
	return o, unpriced, nil
}

// Total is the sum of quantity × unit price over items.
func Total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// priceFromCatalog freezes the current catalog price and name into the
// unpriced items.
func (s *Service) priceFromCatalog(ctx context.Context, o *Order, unpriced []int) error {
	if len(unpriced) == 0 {
		return nil
	}
	pending := make([]LineItem, len(unpriced))
	for i, idx := range unpriced {
		pending[i] = o.Items[idx]
	}
	byID, err := lookup(ctx, s.catalog, pending)
	if err != nil {
		return err
	}
	for _, idx := range unpriced {
		it := &o.Items[idx]
		p, ok := byID[it.ProductID]
		if !ok {
			return apperr.NotFound("product", it.ProductID)
		}
		it.UnitPrice = p.Price
		if it.ProductName == "" {
			it.ProductName = p.Name
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*View, error) {
	o, unpriced, err := build(req)
	if err != nil {
		return nil, err
	}
	if err := s.priceFromCatalog(ctx, o, unpriced); err != nil {
		return nil, err
	}
	if req.TotalAmount == nil {
		o.TotalAmount = Total(o.Items)
	}

	number, err := s.numbers.Next()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	now := s.clock.Now()
	o.ID = uuid.NewString()
	o.OrderNumber = number
	o.CreatedAt = now
	o.UpdatedAt = now

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	s.log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("total_amount", o.TotalAmount.String()),
		zap.Int("items", len(o.Items)),
	)
	s.publish(ctx, events.OrderCreatedTopic, *o, "")

	return s.viewAfterWrite(ctx, *o), nil
}

func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	key, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	o, err := s.repo.GetByID(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("order", key)
	}
	if err != nil {
		return nil, err
	}
	return s.view(ctx, *o)
}

// List returns the ListCap most recent orders, newest first, resolved against
// the catalog.
func (s *Service) List(ctx context.Context) ([]View, error) {
	orders, err := s.repo.List(ctx, ListCap)
	if err != nil {
		return nil, err
	}
	var all []LineItem
	for _, o := range orders {
		all = append(all, o.Items...)
	}
	byID, err := lookup(ctx, s.catalog, all)
	if err != nil {
		return nil, err
	}
	out := make([]View, len(orders))
	for i, o := range orders {
		out[i] = resolve(o, byID)
	}
	return out, nil
}

// Recent returns the n newest orders without resolving line items.
func (s *Service) Recent(ctx context.Context, n int) ([]Order, error) {
	orders, err := s.repo.List(ctx, n)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

// UpdateStatus moves the order to status. Any status may follow any other.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*View, error) {
	key, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return nil, apperr.Missing("status")
	}
	if !status.Valid() {
		names := make([]string, len(Statuses))
		for i, st := range Statuses {
			names[i] = string(st)
		}
		return nil, apperr.Enum("status", string(status), names)
	}

	o, err := s.repo.GetByID(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("order", key)
	}
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	prev, err := s.repo.UpdateStatus(ctx, key, status, now)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("order", key)
	}
	if err != nil {
		return nil, err
	}
	o.Status = status
	o.UpdatedAt = now
	if o.UpdatedAt.Before(o.CreatedAt) {
		o.UpdatedAt = o.CreatedAt
	}

	s.log.Info("order status changed",
		zap.String("order_id", key),
		zap.String("from", string(prev)),
		zap.String("to", string(status)),
	)
	s.publish(ctx, events.OrderStatusChangedTopic, *o, prev)
	return s.viewAfterWrite(ctx, *o), nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) Revenue(ctx context.Context) (decimal.Decimal, error) {
	return s.repo.Revenue(ctx)
}

func (s *Service) view(ctx context.Context, o Order) (*View, error) {
	byID, err := lookup(ctx, s.catalog, o.Items)
	if err != nil {
		return nil, err
	}
	v := resolve(o, byID)
	return &v, nil
}

// viewAfterWrite resolves o for a response once the write is stored. A failed
// catalog read leaves Product nil on every line item instead of failing a call
// whose change is already persisted.
func (s *Service) viewAfterWrite(ctx context.Context, o Order) *View {
	v, err := s.view(ctx, o)
	if err != nil {
		s.log.Warn("resolve line items after write", zap.String("order_id", o.ID), zap.Error(err))
		u := resolve(o, nil)
		return &u
	}
	return v
}

// publish is best effort: the order is already stored, so a broker failure
// is logged and never returned.
func (s *Service) publish(ctx context.Context, topic string, o Order, prev Status) {
	err := s.events.Publish(ctx, topic, events.OrderEvent{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		Status:         string(o.Status),
		PreviousStatus: string(prev),
		TotalAmount:    o.TotalAmount,
		CustomerEmail:  o.CustomerEmail,
		EventTime:      s.clock.Now(),
	})
	if err != nil {
		s.log.Warn("publish order event", zap.String("topic", topic), zap.String("order_id", o.ID), zap.Error(err))
	}
}
