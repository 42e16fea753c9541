package products

import (
	"context"
	"encoding/json"

	"github.com/xfery/dropship-backend/pkg/cj"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
)

type catalogGateway interface {
	ListProducts(ctx context.Context, page, pageSize int) (*cj.ProductPage, error)
	SearchProducts(ctx context.Context, query string, page, pageSize int) (*cj.ProductPage, error)
	GetProductDetail(ctx context.Context, productID string) (json.RawMessage, error)
	GetVariant(ctx context.Context, variantID string) (json.RawMessage, error)
	GetVariantPrice(ctx context.Context, variantID string) (json.RawMessage, error)
}

// Service passes catalog reads through to the supplier.
type Service struct {
	supplier catalogGateway
}

// NewService builds the catalog passthrough service.
func NewService(supplier catalogGateway) (*Service, error) {
	if supplier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "supplier gateway required")
	}
	return &Service{supplier: supplier}, nil
}

// List returns the first catalog page.
func (s *Service) List(ctx context.Context) ([]json.RawMessage, error) {
	page, err := s.supplier.ListProducts(ctx, defaultPage, defaultPageSize)
	if err != nil {
		return nil, err
	}
	return page.List, nil
}

// Search queries the catalog by product or category name.
func (s *Service) Search(ctx context.Context, query string, page int) ([]json.RawMessage, error) {
	if page < 1 {
		page = defaultPage
	}
	result, err := s.supplier.SearchProducts(ctx, query, page, defaultPageSize)
	if err != nil {
		return nil, err
	}
	return result.List, nil
}

// Detail returns a single product's full payload.
func (s *Service) Detail(ctx context.Context, productID string) (json.RawMessage, error) {
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}
	return s.supplier.GetProductDetail(ctx, productID)
}

// VariantPrice returns the sell price of a variant.
func (s *Service) VariantPrice(ctx context.Context, variantID string) (json.RawMessage, error) {
	if variantID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variantId is required")
	}
	return s.supplier.GetVariantPrice(ctx, variantID)
}

// Variant returns the full variant payload, used by the paid-variant view.
func (s *Service) Variant(ctx context.Context, variantID string) (json.RawMessage, error) {
	if variantID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variantId is required")
	}
	return s.supplier.GetVariant(ctx, variantID)
}
