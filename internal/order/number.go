package order

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/MikeMC777/storefront-api/internal/clock"
)

const (
	NumberPrefix = "ORD"
	suffixLen    = 9
	base36       = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// NumberGenerator builds order numbers of the form ORD-<unix millis>-<suffix>.
// Uniqueness rests on the timestamp plus 9 random base36 characters; there is
// no global sequence.
type NumberGenerator struct {
	clock clock.Clock
	rand  io.Reader
}

func NewNumberGenerator(clk clock.Clock) *NumberGenerator {
	return &NumberGenerator{clock: clk, rand: rand.Reader}
}

func (g *NumberGenerator) Next() (string, error) {
	radix := big.NewInt(int64(len(base36)))
	suffix := make([]byte, suffixLen)
	for i := range suffix {
		n, err := rand.Int(g.rand, radix)
		if err != nil {
			return "", fmt.Errorf("order number: %w", err)
		}
		suffix[i] = base36[n.Int64()]
	}
	return fmt.Sprintf("%s-%d-%s", NumberPrefix, g.clock.Now().UnixMilli(), suffix), nil
}
