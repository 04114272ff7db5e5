// Package handlers holds the handlers of the shop used to compile generated code.
package handlers

import (
	"context"
	"errors"

	"github.com/AshkanYarmoradi/go-foundation"

	"example.com/shop/orders"
)

// ErrAlreadyShipped is returned when cancelling the order "shipped".
var ErrAlreadyShipped = errors.New("order already shipped")

type GetOrderV1 struct{}

func NewGetOrderV1(foundation.Infrastructure) *GetOrderV1 { return &GetOrderV1{} }

func (*GetOrderV1) Handle(ctx context.Context, query foundation.Query) (any, error) {
	return "v1:" + query.(orders.GetOrder).ID, nil
}

type GetOrderV2 struct{}

func NewGetOrderV2(foundation.Infrastructure) *GetOrderV2 { return &GetOrderV2{} }

func (*GetOrderV2) Handle(ctx context.Context, query foundation.Query) (any, error) {
	return "v2:" + query.(orders.GetOrder).ID, nil
}

type GetOrderV3 struct{}

func NewGetOrderV3(foundation.Infrastructure) *GetOrderV3 { return &GetOrderV3{} }

func (*GetOrderV3) Handle(ctx context.Context, query foundation.Query) (any, error) {
	return "v3:" + query.(orders.GetOrder).ID, nil
}

// PlaceOrderHandler is built by the application through the bus factory.
type PlaceOrderHandler struct {
	Placed []string
}

func (h *PlaceOrderHandler) Handle(ctx context.Context, command foundation.Command) error {
	h.Placed = append(h.Placed, command.(orders.PlaceOrder).GetOrderID())
	return nil
}

type CancelOrderHandler struct{}

func NewCancelOrderHandler(foundation.Infrastructure) *CancelOrderHandler { return &CancelOrderHandler{} }

func (*CancelOrderHandler) Handle(ctx context.Context, command foundation.Command) error {
	if command.(orders.CancelOrder).OrderID == "shipped" {
		return ErrAlreadyShipped
	}
	return nil
}

// OrderPlacedHandler fails without infrastructure.
type OrderPlacedHandler struct {
	infrastructure foundation.Infrastructure
}

func NewOrderPlacedHandler(infrastructure foundation.Infrastructure) *OrderPlacedHandler {
	return &OrderPlacedHandler{infrastructure: infrastructure}
}

func (h *OrderPlacedHandler) Handle(ctx context.Context, event foundation.Event) error {
	if h.infrastructure == nil {
		return errors.New("no infrastructure")
	}
	return nil
}
