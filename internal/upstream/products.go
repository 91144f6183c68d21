package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"southhorizon/internal/domain"
)

// Products fetches the full catalog.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	raw, err := c.do(ctx, http.MethodGet, "", "/api/products", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Product](raw, "products"), nil
}

// ProductsFiltered fetches the catalog narrowed by filters.
func (c *Client) ProductsFiltered(ctx context.Context, f domain.ProductFilters) ([]domain.Product, error) {
	raw, err := c.do(ctx, http.MethodGet, "", "/api/products/filter?"+filterQuery(f).Encode(), nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Product](raw, "products"), nil
}

// ProductByID fetches one product's detail.
func (c *Client) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := c.send(ctx, http.MethodGet, "", "/api/products/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, fmt.Errorf("upstream: product %s: empty reply", id)
	}
	return &p, nil
}

// Categories fetches the category list.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	raw, err := c.do(ctx, http.MethodGet, "", "/api/categories", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Category](raw, "categories"), nil
}

func filterQuery(f domain.ProductFilters) url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.MinPrice > 0 {
		q.Set("minPrice", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		q.Set("maxPrice", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.Color != "" {
		q.Set("color", f.Color)
	}
	if f.Size != "" {
		q.Set("size", f.Size)
	}
	if f.IsFeatured != nil {
		q.Set("isFeatured", strconv.FormatBool(*f.IsFeatured))
	}
	if f.IsTop != nil {
		q.Set("isTop", strconv.FormatBool(*f.IsTop))
	}
	if f.IsNew != nil {
		q.Set("isNew", strconv.FormatBool(*f.IsNew))
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
		if f.SortOrder == "asc" || f.SortOrder == "desc" {
			q.Set("sortOrder", f.SortOrder)
		}
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}
