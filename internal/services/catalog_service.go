package services

import (
	"context"

	"southhorizon/internal/domain"
	"southhorizon/internal/upstream"
)

// lowStockThreshold is where IN_STOCK turns into LOW_STOCK.
const lowStockThreshold = 5

// CatalogService proxies the upstream catalog. Nothing is cached
// beyond the lifetime of a call; product data is immutable from our
// side.
type CatalogService struct {
	API *upstream.Client
}

func NewCatalogService(api *upstream.Client) *CatalogService {
	return &CatalogService{API: api}
}

func (s *CatalogService) Products(ctx context.Context) ([]domain.Product, error) {
	return s.API.Products(ctx)
}

func (s *CatalogService) ProductsFiltered(ctx context.Context, f domain.ProductFilters) ([]domain.Product, error) {
	return s.API.ProductsFiltered(ctx, f)
}

func (s *CatalogService) Product(ctx context.Context, id string) (*domain.Product, error) {
	return s.API.ProductByID(ctx, id)
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.API.Categories(ctx)
}

// Availability maps the product's inventory quantity onto the stock
// status vocabulary.
func (s *CatalogService) Availability(ctx context.Context, productID string) (domain.Availability, error) {
	p, err := s.API.ProductByID(ctx, productID)
	if err != nil {
		return domain.Availability{Status: "OUT_OF_STOCK"}, err
	}
	switch {
	case p.Inventory <= 0:
		return domain.Availability{Status: "OUT_OF_STOCK"}, nil
	case p.Inventory <= lowStockThreshold:
		return domain.Availability{Status: "LOW_STOCK", Qty: p.Inventory}, nil
	default:
		return domain.Availability{Status: "IN_STOCK", Qty: p.Inventory}, nil
	}
}
