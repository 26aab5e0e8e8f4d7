// Package product provides the catalog: the Product model, its validation and
// list-query rules, the repository interface with PostgreSQL and in-memory
// implementations, and the Service that callers use.
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MikeMC777/storefront-api/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("product not found")
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	// GetByIDs returns the products that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

const selectColumns = `SELECT id::text, name, description, price::text, category, stock,
		image_url, rating, reviews, featured, created_at, updated_at`

type PGRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPGRepo(db *pgxpool.Pool, timeout time.Duration) *PGRepo {
	return &PGRepo{db: db, timeout: timeout}
}

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p     Product
		price string
		cat   string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &cat, &p.Stock,
		&p.ImageURL, &p.Rating, &p.Reviews, &p.Featured, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("product %s: bad price %q: %w", p.ID, price, err)
	}
	p.Price = d
	p.Category = Category(cat)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := store.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, description, price, category, stock, image_url,
		                      rating, reviews, featured, created_at, updated_at)
		VALUES ($1,$2,$3,$4::numeric,$5,$6,$7,$8,$9,$10,$11,$12)
	`, p.ID, p.Name, p.Description, p.Price.String(), string(p.Category), p.Stock, p.ImageURL,
		p.Rating, p.Reviews, p.Featured, p.CreatedAt, p.UpdatedAt)
	return store.Classify(err)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := store.WithTimeout(ctx, r.timeout)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, selectColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, store.Classify(err)
	}
	return p, nil
}

func (r *PGRepo) GetByIDs(ctx context.Context, ids []string) ([]Product, error) {
	keys := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if u, err := uuid.Parse(id); err == nil {
			keys = append(keys, u)
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}

	ctx, cancel := store.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, selectColumns+` FROM products WHERE id = ANY($1)`, keys)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Product, error) {
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, store.Classify(err)
		}
		out = append(out, *p)
	}
	return out, store.Classify(rows.Err())
}

var textColumns = map[string]bool{"name": true, "category": true}

// buildListSQL renders q as a parameterised statement. Sort columns come from
// the whitelist in ParseSort, never from the caller.
func buildListSQL(q Query) (string, []any) {
	var (
		sb    strings.Builder
		conds []string
		args  []any
	)
	sb.WriteString(selectColumns)
	sb.WriteString(" FROM products")

	if q.Category != nil {
		args = append(args, string(*q.Category))
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if q.Featured != nil {
		args = append(args, *q.Featured)
		conds = append(conds, fmt.Sprintf("featured = $%d", len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	dir := "ASC"
	if q.Sort.Desc {
		dir = "DESC"
	}
	col := q.Sort.Column
	if textColumns[col] {
		// byte order, matching MemRepo's strings.Compare
		col += ` COLLATE "C"`
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s, id ASC", col, dir)

	args = append(args, q.Limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	return sb.String(), args
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := store.WithTimeout(ctx, r.timeout)
	defer cancel()

	sql, args := buildListSQL(q)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer rows.Close()
	return collect(rows)
}

// Update overwrites every mutable column; concurrent writers are last-write-wins.
func (r *PGRepo) Update(ctx context.Context, p *Product) error {
	ctx, cancel := store.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $2,
		    description = $3,
		    price = $4::numeric,
		    category = $5,
		    stock = $6,
		    image_url = $7,
		    rating = $8,
		    reviews = $9,
		    featured = $10,
		    updated_at = $11
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Price.String(), string(p.Category), p.Stock,
		p.ImageURL, p.Rating, p.Reviews, p.Featured, p.UpdatedAt)
	if err != nil {
		return store.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := store.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, store.Classify(err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := store.WithTimeout(ctx, r.timeout)
	defer cancel()

	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, store.Classify(err)
	}
	return n, nil
}
