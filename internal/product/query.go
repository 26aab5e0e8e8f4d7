package product

import (
	"sort"
	"strings"

	"github.com/MikeMC777/storefront-api/internal/apperr"
)

const (
	DefaultLimit = 50
	DefaultSort  = "-createdAt"
)

// Filter is the caller-facing list configuration. Nil or zero fields mean
// "no constraint" / "use the default".
type Filter struct {
	Category *Category
	Featured *bool
	Sort     string
	Limit    int
}

// Sort is a resolved ordering on a products column.
type Sort struct {
	Column string
	Desc   bool
}

// Query is a validated Filter, ready for a Repository.
type Query struct {
	Category *Category
	Featured *bool
	Sort     Sort
	Limit    int
}

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"price":     "price",
	"stock":     "stock",
	"rating":    "rating",
	"reviews":   "reviews",
	"category":  "category",
	"featured":  "featured",
}

func sortKeys() []string {
	keys := make([]string, 0, len(sortColumns))
	for k := range sortColumns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseSort accepts a field name in camelCase or snake_case with an optional
// leading "-" for descending order.
func ParseSort(raw string) (Sort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultSort
	}
	s := Sort{}
	name := raw
	if strings.HasPrefix(name, "-") {
		s.Desc = true
		name = name[1:]
	}
	if col, ok := sortColumns[name]; ok {
		s.Column = col
		return s, nil
	}
	for _, col := range sortColumns {
		if col == name {
			s.Column = col
			return s, nil
		}
	}
	return Sort{}, apperr.Enum("sort", raw, sortKeys())
}

func (f Filter) Normalize() (Query, error) {
	q := Query{Featured: f.Featured, Limit: f.Limit}
	if f.Category != nil {
		if !f.Category.Valid() {
			return Query{}, apperr.Enum("category", string(*f.Category), categoryNames())
		}
		c := *f.Category
		q.Category = &c
	}
	s, err := ParseSort(f.Sort)
	if err != nil {
		return Query{}, err
	}
	q.Sort = s
	switch {
	case f.Limit < 0:
		return Query{}, apperr.Range("limit", "limit must be a positive integer")
	case f.Limit == 0:
		q.Limit = DefaultLimit
	}
	return q, nil
}

// Match reports whether p satisfies the query's filters.
func (q Query) Match(p Product) bool {
	if q.Category != nil && p.Category != *q.Category {
		return false
	}
	if q.Featured != nil && p.Featured != *q.Featured {
		return false
	}
	return true
}

// Less orders a before b under s, breaking ties by id.
func (s Sort) Less(a, b Product) bool {
	c := compareColumn(s.Column, a, b)
	if c == 0 {
		return a.ID < b.ID
	}
	if s.Desc {
		return c > 0
	}
	return c < 0
}

func compareColumn(col string, a, b Product) int {
	switch col {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "price":
		return a.Price.Cmp(b.Price)
	case "stock":
		return compareInt(a.Stock, b.Stock)
	case "rating":
		return compareFloat(a.Rating, b.Rating)
	case "reviews":
		return compareInt(a.Reviews, b.Reviews)
	case "category":
		return strings.Compare(string(a.Category), string(b.Category))
	case "featured":
		return compareBool(a.Featured, b.Featured)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
