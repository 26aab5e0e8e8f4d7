package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MikeMC777/storefront-api/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("order not found")
)

type Repository interface {
	// Create stores the order and its line items atomically.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	// List returns the newest orders first, at most limit of them.
	List(ctx context.Context, limit int) ([]Order, error)
	// UpdateStatus sets status and updated_at and returns the previous status.
	UpdateStatus(ctx context.Context, id string, status Status, at time.Time) (Status, error)
	Count(ctx context.Context) (int64, error)
	// Revenue is the sum of every order's total_amount, zero when there are none.
	Revenue(ctx context.Context) (decimal.Decimal, error)
}

const orderColumns = `SELECT id::text, order_number, total_amount::text, status,
		customer_name, customer_email, shipping_address, created_at, updated_at
	FROM orders`

type PGRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPGRepo(db *pgxpool.Pool, timeout time.Duration) *PGRepo {
	return &PGRepo{db: db, timeout: timeout}
}

func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	ctx, cancel := store.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return store.Classify(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, order_number, total_amount, status, customer_name,
		                    customer_email, shipping_address, created_at, updated_at)
		VALUES ($1,$2,$3::numeric,$4,$5,$6,$7,$8,$9)
	`, o.ID, o.OrderNumber, o.TotalAmount.String(), string(o.Status), o.CustomerName,
		o.CustomerEmail, o.ShippingAddress, o.CreatedAt, o.UpdatedAt); err != nil {
		return store.Classify(err)
	}

	batch := &pgx.Batch{}
	for i, it := range o.Items {
		batch.Queue(`
			INSERT INTO order_items (order_id, position, product_id, product_name, quantity, unit_price)
			VALUES ($1,$2,$3,$4,$5,$6::numeric)
		`, o.ID, i, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice.String())
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return store.Classify(err)
	}
	return store.Classify(tx.Commit(ctx))
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o      Order
		total  string
		status string
	)
	if err := row.Scan(&o.ID, &o.OrderNumber, &total, &status, &o.CustomerName,
		&o.CustomerEmail, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("order %s: bad total %q: %w", o.ID, total, err)
	}
	o.TotalAmount = d
	o.Status = Status(status)
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return &o, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := store.WithTimeout(ctx, r.timeout)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, orderColumns+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, store.Classify(err)
	}
	if err := r.attachItems(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) List(ctx context.Context, limit int) ([]Order, error) {
	ctx, cancel := store.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, orderColumns+` ORDER BY created_at DESC, id ASC LIMIT $1`, limit)
	if err != nil {
		return nil, store.Classify(err)
	}
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, store.Classify(err)
		}
		out = append(out, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, store.Classify(err)
	}

	ptrs := make([]*Order, len(out))
	for i := range out {
		ptrs[i] = &out[i]
	}
	if err := r.attachItems(ctx, ptrs); err != nil {
		return nil, err
	}
	return out, nil
}

// attachItems loads the line items of every order in one query.
func (r *PGRepo) attachItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := r.db.Query(ctx, `
		SELECT order_id::text, product_id::text, product_name, quantity, unit_price::text
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position
	`, ids)
	if err != nil {
		return store.Classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			it      LineItem
			price   string
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.ProductName, &it.Quantity, &price); err != nil {
			return store.Classify(err)
		}
		d, err := decimal.NewFromString(price)
		if err != nil {
			return fmt.Errorf("order %s: bad unit price %q: %w", orderID, price, err)
		}
		it.UnitPrice = d
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return store.Classify(rows.Err())
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, status Status, at time.Time) (Status, error) {
	ctx, cancel := store.WithTimeout(ctx, r.timeout)
	defer cancel()

	var prev string
	err := r.db.QueryRow(ctx, `
		UPDATE orders o
		SET status = $2, updated_at = GREATEST($3, o.created_at)
		FROM (SELECT id, status FROM orders WHERE id = $1 FOR UPDATE) old
		WHERE o.id = old.id
		RETURNING old.status
	`, id, string(status), at).Scan(&prev)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", store.Classify(err)
	}
	return Status(prev), nil
}

func (r *PGRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := store.WithTimeout(ctx, r.timeout)
	defer cancel()

	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, store.Classify(err)
	}
	return n, nil
}

func (r *PGRepo) Revenue(ctx context.Context) (decimal.Decimal, error) {
	ctx, cancel := store.WithTimeout(ctx, r.timeout)
	defer cancel()

	var total string
	if err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0)::text FROM orders`).Scan(&total); err != nil {
		return decimal.Zero, store.Classify(err)
	}
	return decimal.NewFromString(total)
}
