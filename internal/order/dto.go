package order

import "github.com/shopspring/decimal"

// CreateOrderItem payload of a line item. UnitPrice is optional; when omitted
// it is resolved from the catalog at creation time.
// swagger:model CreateOrderItem
type CreateOrderItem struct {
	ProductID   string           `json:"product_id"   example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	ProductName string           `json:"product_name" example:"Mechanical Keyboard"`
	Quantity    int              `json:"quantity"     example:"2"`
	UnitPrice   *decimal.Decimal `json:"unit_price"   swaggertype:"string" example:"10.00"`
}

// CreateOrderRequest payload of order creation.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	CustomerName    string            `json:"customer_name"    example:"Ada Lovelace"`
	CustomerEmail   string            `json:"customer_email"   example:"ada@example.com"`
	ShippingAddress string            `json:"shipping_address" example:"12 Analytical St"`
	Items           []CreateOrderItem `json:"items"`
	TotalAmount     *decimal.Decimal  `json:"total_amount"     swaggertype:"string" example:"25.00"`
}

// UpdateStatusRequest payload of a status change.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status Status `json:"status" example:"shipped"`
}
