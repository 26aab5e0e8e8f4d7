package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKindAndReason(t *testing.T) {
	err := Range("price", "price must be >= 0")

	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, errors.Is(err, ErrOutOfRange))
	assert.False(t, errors.Is(err, ErrMissingField))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("loading product: %w", NotFound("product", "abc"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestKindOfUntyped(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestUnavailableUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Unavailable(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}
