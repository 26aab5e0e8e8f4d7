package order

import (
	"time"

	"github.com/MikeMC777/storefront-api/internal/product"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var Statuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	Items           []LineItem      `json:"line_items"`
	TotalAmount     decimal.Decimal `json:"total_amount"` // NUMERIC
	Status          Status          `json:"status"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	ShippingAddress string          `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// LineItem is a snapshot taken when the order is created. ProductID is a weak
// reference: the product may since have changed or been deleted.
type LineItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Subtotal is Quantity × UnitPrice.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// ResolvedLineItem pairs a line item with the current catalog entry, or nil
// when the product no longer exists.
type ResolvedLineItem struct {
	LineItem
	Product *product.Product `json:"product"`
}

// View is an Order with its line items joined against the catalog at read
// time. The join is never persisted.
type View struct {
	Order
	LineItems []ResolvedLineItem `json:"line_items"`
}

// Summary is the projection used by the statistics snapshot.
type Summary struct {
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (o Order) Summary() Summary {
	return Summary{
		OrderNumber: o.OrderNumber,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
	}
}
