// Package orders holds the contracts of the shop used to compile generated code.
package orders

import "fmt"

type GetOrder struct {
	ID string `json:"id"`
}

func (GetOrder) QueryType() string { return "example.com/shop/orders.GetOrder" }

// PlaceOrder is an interface contract implemented by PlaceOrderRequest.
type PlaceOrder interface {
	CommandType() string
	GetOrderID() string
	GetQuantity() int
	GetSummary() string
}

type PlaceOrderRequest struct {
	OrderID  string `json:"orderId"`
	Quantity int    `json:"quantity"`
}

func (PlaceOrderRequest) CommandType() string { return "example.com/shop/orders.PlaceOrder" }

func (r PlaceOrderRequest) GetOrderID() string { return r.OrderID }

func (r PlaceOrderRequest) GetQuantity() int { return r.Quantity }

func (r PlaceOrderRequest) GetSummary() string { return fmt.Sprintf("%d x %s", r.Quantity, r.OrderID) }

type CancelOrder struct {
	OrderID string
}

func (CancelOrder) CommandType() string { return "example.com/shop/orders.CancelOrder" }

type OrderPlaced struct {
	OrderID string `json:"orderId"`
	Email   string `json:"email"`
}

func (OrderPlaced) EventType() string { return "example.com/shop/orders.OrderPlaced" }
