package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/MikeMC777/storefront-api/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: apperr.KindStoreUnavailable},
		{name: "wrapped_deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: apperr.KindStoreUnavailable},
		{name: "connection_exception", err: &pgconn.PgError{Code: "08006"}, want: apperr.KindStoreUnavailable},
		{name: "cannot_connect_now", err: &pgconn.PgError{Code: "57P03"}, want: apperr.KindStoreUnavailable},
		{name: "unique_violation", err: &pgconn.PgError{Code: "23505"}, want: apperr.KindInternal},
		{name: "unknown", err: errors.New("boom"), want: apperr.KindInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, apperr.KindOf(Classify(tc.err)))
		})
	}
}

func TestClassifyPassesThrough(t *testing.T) {
	assert.NoError(t, Classify(nil))
	assert.ErrorIs(t, Classify(pgx.ErrNoRows), pgx.ErrNoRows)

	nf := apperr.NotFound("product", "x")
	assert.Same(t, nf, Classify(nf))
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), 0)
	defer cancel()
	_, ok := ctx.Deadline()
	assert.False(t, ok)

	ctx2, cancel2 := WithTimeout(context.Background(), time.Minute)
	defer cancel2()
	_, ok = ctx2.Deadline()
	assert.True(t, ok)
}

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs)
}
