package services

import (
	"context"
	"fmt"

	"southhorizon/internal/domain"
	"southhorizon/internal/format"
	"southhorizon/internal/upstream"
)

// OrderService is the order-history surface. Persisted shipping
// addresses arrive in several historical shapes, so every order going
// to the UI carries a display-formatted copy.
type OrderService struct {
	API *upstream.Client
}

func NewOrderService(api *upstream.Client) *OrderService {
	return &OrderService{API: api}
}

// DisplayOrder is an order plus its display-ready shipping address.
type DisplayOrder struct {
	domain.Order
	ShippingAddressDisplay string `json:"shippingAddressDisplay,omitempty"`
}

func display(o domain.Order) DisplayOrder {
	d := DisplayOrder{Order: o}
	if o.ShippingAddress != "" {
		d.ShippingAddressDisplay = format.ShippingAddress(o.ShippingAddress)
	}
	return d
}

func (s *OrderService) List(ctx context.Context, sess domain.Session) ([]DisplayOrder, error) {
	orders, err := s.API.Orders(ctx, sess.Token)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	out := make([]DisplayOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, display(o))
	}
	return out, nil
}

func (s *OrderService) Detail(ctx context.Context, sess domain.Session, id string) (DisplayOrder, error) {
	o, err := s.API.OrderByID(ctx, sess.Token, id)
	if err != nil {
		return DisplayOrder{}, fmt.Errorf("load order %s: %w", id, err)
	}
	return display(o), nil
}

func (s *OrderService) Search(ctx context.Context, sess domain.Session, f domain.OrderSearchFilters) (domain.OrderSearchResult, error) {
	return s.API.SearchOrders(ctx, sess.Token, f)
}

func (s *OrderService) StatusHistory(ctx context.Context, sess domain.Session, id string) ([]domain.OrderStatusEvent, error) {
	return s.API.OrderStatusHistory(ctx, sess.Token, id)
}

func (s *OrderService) Cancel(ctx context.Context, sess domain.Session, id string) error {
	if err := s.API.CancelOrder(ctx, sess.Token, id); err != nil {
		return fmt.Errorf("cancel order %s: %w", id, err)
	}
	return nil
}
