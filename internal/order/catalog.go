package order

import (
	"context"

	"github.com/MikeMC777/storefront-api/internal/product"
)

// Catalog is the slice of the product store the order service reads from:
// price resolution at creation and the display join at read time.
// product.Repository satisfies it.
type Catalog interface {
	GetByIDs(ctx context.Context, ids []string) ([]product.Product, error)
}

var _ Catalog = (product.Repository)(nil)

// lookup fetches every product referenced by items in one round trip.
func lookup(ctx context.Context, c Catalog, items []LineItem) (map[string]*product.Product, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	found, err := c.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*product.Product, len(found))
	for i := range found {
		out[found[i].ID] = &found[i]
	}
	return out, nil
}

func resolve(o Order, byID map[string]*product.Product) View {
	v := View{Order: o, LineItems: make([]ResolvedLineItem, len(o.Items))}
	for i, it := range o.Items {
		v.LineItems[i] = ResolvedLineItem{LineItem: it, Product: byID[it.ProductID]}
	}
	return v
}
