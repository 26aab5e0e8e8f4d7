package product

import (
	"strings"

	"github.com/MikeMC777/storefront-api/internal/apperr"
	"github.com/shopspring/decimal"
)

func categoryNames() []string {
	out := make([]string, len(Categories))
	for i, c := range Categories {
		out[i] = string(c)
	}
	return out
}

func checkName(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", apperr.Missing("name")
	}
	return v, nil
}

func checkDescription(v string) (string, error) {
	if strings.TrimSpace(v) == "" {
		return "", apperr.Missing("description")
	}
	return v, nil
}

func checkPrice(v decimal.Decimal) error {
	if v.IsNegative() {
		return apperr.Range("price", "price must be greater than or equal to 0")
	}
	return nil
}

func checkCategory(v Category) error {
	if v == "" {
		return apperr.Missing("category")
	}
	if !v.Valid() {
		return apperr.Enum("category", string(v), categoryNames())
	}
	return nil
}

func checkStock(v int) error {
	if v < 0 {
		return apperr.Range("stock", "stock must be greater than or equal to 0")
	}
	return nil
}

func checkRating(v float64) error {
	if v < 0 || v > MaxRating {
		return apperr.Range("rating", "rating must be between 0 and 5")
	}
	return nil
}

// newFromRequest validates req in field order and returns the first violation.
// ID and timestamps are left for the caller.
func newFromRequest(req CreateProductRequest) (*Product, error) {
	name, err := checkName(req.Name)
	if err != nil {
		return nil, err
	}
	description, err := checkDescription(req.Description)
	if err != nil {
		return nil, err
	}
	if req.Price == nil {
		return nil, apperr.Missing("price")
	}
	if err := checkPrice(*req.Price); err != nil {
		return nil, err
	}
	if err := checkCategory(req.Category); err != nil {
		return nil, err
	}

	p := &Product{
		Name:        name,
		Description: description,
		Price:       *req.Price,
		Category:    req.Category,
		ImageURL:    DefaultImageURL,
	}
	if req.Stock != nil {
		if err := checkStock(*req.Stock); err != nil {
			return nil, err
		}
		p.Stock = *req.Stock
	}
	if req.Rating != nil {
		if err := checkRating(*req.Rating); err != nil {
			return nil, err
		}
		p.Rating = *req.Rating
	}
	if req.ImageURL != nil && strings.TrimSpace(*req.ImageURL) != "" {
		p.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.Reviews != nil {
		p.Reviews = *req.Reviews
	}
	if req.Featured != nil {
		p.Featured = *req.Featured
	}
	return p, nil
}

// applyUpdate validates the present fields of req and applies them to a copy
// of cur. cur is not modified when validation fails.
func applyUpdate(cur Product, req UpdateProductRequest) (*Product, error) {
	next := cur
	if req.Name != nil {
		name, err := checkName(*req.Name)
		if err != nil {
			return nil, err
		}
		next.Name = name
	}
	if req.Description != nil {
		description, err := checkDescription(*req.Description)
		if err != nil {
			return nil, err
		}
		next.Description = description
	}
	if req.Price != nil {
		if err := checkPrice(*req.Price); err != nil {
			return nil, err
		}
		next.Price = *req.Price
	}
	if req.Category != nil {
		if err := checkCategory(*req.Category); err != nil {
			return nil, err
		}
		next.Category = *req.Category
	}
	if req.Stock != nil {
		if err := checkStock(*req.Stock); err != nil {
			return nil, err
		}
		next.Stock = *req.Stock
	}
	if req.Rating != nil {
		if err := checkRating(*req.Rating); err != nil {
			return nil, err
		}
		next.Rating = *req.Rating
	}
	if req.ImageURL != nil {
		next.ImageURL = strings.TrimSpace(*req.ImageURL)
		if next.ImageURL == "" {
			next.ImageURL = DefaultImageURL
		}
	}
	if req.Reviews != nil {
		next.Reviews = *req.Reviews
	}
	if req.Featured != nil {
		next.Featured = *req.Featured
	}
	return &next, nil
}
