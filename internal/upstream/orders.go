package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"southhorizon/internal/domain"
)

// PlaceOrder creates an order upstream. The idempotency key guards
// against double submission on retries.
func (c *Client) PlaceOrder(ctx context.Context, token string, req domain.PlaceOrderRequest, idemKey string) (domain.Order, error) {
	var o domain.Order
	err := c.send(ctx, http.MethodPost, token, "/api/orders/place", req, &o,
		"X-Idempotency-Key", idemKey)
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (c *Client) Orders(ctx context.Context, token string) ([]domain.Order, error) {
	raw, err := c.do(ctx, http.MethodGet, token, "/api/orders", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Order](raw, "orders"), nil
}

func (c *Client) OrderByID(ctx context.Context, token, id string) (domain.Order, error) {
	var o domain.Order
	if err := c.send(ctx, http.MethodGet, token, "/api/orders/"+url.PathEscape(id), nil, &o); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (c *Client) SearchOrders(ctx context.Context, token string, f domain.OrderSearchFilters) (domain.OrderSearchResult, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	var res domain.OrderSearchResult
	if err := c.send(ctx, http.MethodGet, token, "/api/orders/search?"+q.Encode(), nil, &res); err != nil {
		return domain.OrderSearchResult{}, err
	}
	if res.Orders == nil {
		res.Orders = []domain.Order{}
	}
	return res, nil
}

func (c *Client) OrderStatusHistory(ctx context.Context, token, id string) ([]domain.OrderStatusEvent, error) {
	raw, err := c.do(ctx, http.MethodGet, token, "/api/orders/"+url.PathEscape(id)+"/history", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.OrderStatusEvent](raw, "history"), nil
}

func (c *Client) CancelOrder(ctx context.Context, token, id string) error {
	return c.send(ctx, http.MethodDelete, token, "/api/orders/"+url.PathEscape(id)+"/cancel", nil, nil)
}
