//go:build integration

package product

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/storefront-api/internal/store"
)

// Run with: STOREFRONT_TEST_POSTGRES_DSN=postgres://... go test -tags integration ./internal/...
func openPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("STOREFRONT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STOREFRONT_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := store.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, store.Migrate(pool))
	_, err = pool.Exec(ctx, `TRUNCATE order_items, orders, products`)
	require.NoError(t, err)
	return pool
}

func TestPGRepoRoundTrip(t *testing.T) {
	repo := NewPGRepo(openPool(t), 5*time.Second)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 123000, time.UTC)

	var ids []string
	for i, name := range []string{"beta", "Alpha", "alpha"} {
		p := &Product{
			ID:          uuid.NewString(),
			Name:        name,
			Description: "d",
			Price:       decimal.RequireFromString("19.99"),
			Category:    CategoryBooks,
			ImageURL:    DefaultImageURL,
			Featured:    i == 0,
			CreatedAt:   at.Add(time.Duration(i) * time.Second),
			UpdatedAt:   at.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.Create(ctx, p))
		ids = append(ids, p.ID)
	}

	got, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("19.99")))
	assert.True(t, got.CreatedAt.Equal(at))

	many, err := repo.GetByIDs(ctx, []string{ids[1], uuid.NewString(), "not-a-uuid"})
	require.NoError(t, err)
	require.Len(t, many, 1)
	assert.Equal(t, ids[1], many[0].ID)

	q, err := Filter{Sort: "name"}.Normalize()
	require.NoError(t, err)
	list, err := repo.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Alpha", "alpha", "beta"}, []string{list[0].Name, list[1].Name, list[2].Name})

	featured := true
	q, err = Filter{Featured: &featured}.Normalize()
	require.NoError(t, err)
	list, err = repo.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ids[0], list[0].ID)

	got.Stock = 3
	got.UpdatedAt = at.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, got))

	ok, err := repo.Delete(ctx, ids[2])
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Delete(ctx, ids[2])
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
