package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryBooks       Category = "Books"
	CategoryHome        Category = "Home"
	CategorySports      Category = "Sports"
	CategoryOther       Category = "Other"
)

var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryBooks,
	CategoryHome,
	CategorySports,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

const (
	DefaultImageURL = "https://via.placeholder.com/300"
	MaxRating       = 5.0
)

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// NUMERIC in Postgres; decimal keeps it exact.
	Price     decimal.Decimal `json:"price"`
	Category  Category        `json:"category"`
	Stock     int             `json:"stock"`
	ImageURL  string          `json:"image_url"`
	Rating    float64         `json:"rating"`
	Reviews   int             `json:"reviews"`
	Featured  bool            `json:"featured"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name        string           `json:"name"        example:"Mechanical Keyboard"`
	Description string           `json:"description" example:"RGB 60%"`
	Price       *decimal.Decimal `json:"price"       swaggertype:"string" example:"199.90"`
	Category    Category         `json:"category"    example:"Electronics"`
	Stock       *int             `json:"stock"       example:"10"`
	ImageURL    *string          `json:"image_url"`
	Rating      *float64         `json:"rating"      example:"4.5"`
	Reviews     *int             `json:"reviews"`
	Featured    *bool            `json:"featured"`
}

// UpdateProductRequest payload of partial update. Nil fields are left untouched.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string"`
	Category    *Category        `json:"category"`
	Stock       *int             `json:"stock"`
	ImageURL    *string          `json:"image_url"`
	Rating      *float64         `json:"rating"`
	Reviews     *int             `json:"reviews"`
	Featured    *bool            `json:"featured"`
}
