package products

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xfery/dropship-backend/pkg/cj"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
)

type stubCatalog struct {
	listPage   int
	searchPage int
	query      string
}

func (s *stubCatalog) ListProducts(ctx context.Context, page, pageSize int) (*cj.ProductPage, error) {
	s.listPage = page
	return &cj.ProductPage{List: []json.RawMessage{json.RawMessage(`{"pid":"P1"}`)}}, nil
}

func (s *stubCatalog) SearchProducts(ctx context.Context, query string, page, pageSize int) (*cj.ProductPage, error) {
	s.query = query
	s.searchPage = page
	return &cj.ProductPage{}, nil
}

func (s *stubCatalog) GetProductDetail(ctx context.Context, productID string) (json.RawMessage, error) {
	return json.RawMessage(`{"pid":"` + productID + `"}`), nil
}

func (s *stubCatalog) GetVariant(ctx context.Context, variantID string) (json.RawMessage, error) {
	return json.RawMessage(`{"vid":"` + variantID + `"}`), nil
}

func (s *stubCatalog) GetVariantPrice(ctx context.Context, variantID string) (json.RawMessage, error) {
	return json.RawMessage(`19.99`), nil
}

func TestNewServiceRequiresGateway(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestListUsesFirstPage(t *testing.T) {
	catalog := &stubCatalog{}
	svc, err := NewService(catalog)
	require.NoError(t, err)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, catalog.listPage)
}

func TestSearchClampsPage(t *testing.T) {
	catalog := &stubCatalog{}
	svc, err := NewService(catalog)
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), "mug", 0)
	require.NoError(t, err)
	assert.Equal(t, "mug", catalog.query)
	assert.Equal(t, 1, catalog.searchPage)

	_, err = svc.Search(context.Background(), "mug", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, catalog.searchPage)
}

func TestDetailRequiresProductID(t *testing.T) {
	svc, err := NewService(&stubCatalog{})
	require.NoError(t, err)

	_, err = svc.Detail(context.Background(), "")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	raw, err := svc.Detail(context.Background(), "P9")
	require.NoError(t, err)
	assert.JSONEq(t, `{"pid":"P9"}`, string(raw))
}

func TestVariantLookupsRequireVariantID(t *testing.T) {
	svc, err := NewService(&stubCatalog{})
	require.NoError(t, err)

	_, err = svc.Variant(context.Background(), "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.VariantPrice(context.Background(), "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	price, err := svc.VariantPrice(context.Background(), "V1")
	require.NoError(t, err)
	assert.Equal(t, "19.99", string(price))
}
