package upstream

import (
	"context"
	"net/http"
	"net/url"

	"southhorizon/internal/domain"
)

func (c *Client) Addresses(ctx context.Context, token string) ([]domain.Address, error) {
	raw, err := c.do(ctx, http.MethodGet, token, "/api/profile/addresses", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Address](raw, "addresses"), nil
}

func (c *Client) CreateAddress(ctx context.Context, token string, a domain.Address) (domain.Address, error) {
	var out domain.Address
	if err := c.send(ctx, http.MethodPost, token, "/api/profile/addresses", a, &out); err != nil {
		return domain.Address{}, err
	}
	return out, nil
}

func (c *Client) UpdateAddress(ctx context.Context, token string, a domain.Address) (domain.Address, error) {
	var out domain.Address
	if err := c.send(ctx, http.MethodPut, token, "/api/profile/addresses/"+url.PathEscape(a.ID), a, &out); err != nil {
		return domain.Address{}, err
	}
	return out, nil
}

func (c *Client) DeleteAddress(ctx context.Context, token, id string) error {
	return c.send(ctx, http.MethodDelete, token, "/api/profile/addresses/"+url.PathEscape(id), nil, nil)
}

// SetDefaultAddress flips the default flag server-side and returns the
// updated address.
func (c *Client) SetDefaultAddress(ctx context.Context, token, id string) (domain.Address, error) {
	var out domain.Address
	if err := c.send(ctx, http.MethodPatch, token, "/api/profile/addresses/"+url.PathEscape(id)+"/default", nil, &out); err != nil {
		return domain.Address{}, err
	}
	return out, nil
}
