package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/xfery/dropship-backend/internal/users"
	"github.com/xfery/dropship-backend/pkg/config"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
	"github.com/xfery/dropship-backend/pkg/fetch"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  shipping_customer_name TEXT,
  mobile TEXT,
  shipping_country TEXT,
  shipping_country_code TEXT,
  shipping_province TEXT,
  shipping_city TEXT,
  shipping_address TEXT,
  shipping_zip TEXT,
  house_number TEXT,
  remark TEXT,
  cart TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

type stubProductFetcher struct {
	products map[string]json.RawMessage
	errs     map[string]error
}

func (s *stubProductFetcher) GetProductByID(ctx context.Context, productID string) (json.RawMessage, error) {
	if err, ok := s.errs[productID]; ok {
		return nil, err
	}
	if payload, ok := s.products[productID]; ok {
		return payload, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func newCartService(t *testing.T, db *gorm.DB, fetcher *stubProductFetcher) (*Service, *users.Repository) {
	t.Helper()
	repo := users.NewRepository(db)
	svc, err := NewService(ServiceParams{
		Users:    repo,
		Supplier: fetcher,
		Pool:     fetch.NewPool(config.FetchConfig{Concurrency: 2, Interval: time.Millisecond}),
	})
	require.NoError(t, err)
	return svc, repo
}

func TestAddRejectsDuplicateProduct(t *testing.T) {
	svc, repo := newCartService(t, setupCartTestDB(t), &stubProductFetcher{})
	_, err := repo.Create(context.Background(), "Ada", "ada@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Add(context.Background(), "ada@example.com", "P1"))

	err = svc.Add(context.Background(), "ada@example.com", "P1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	user, err := repo.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, user.Cart, "duplicate add must leave one occurrence")
}

func TestRemoveAbsentProduct(t *testing.T) {
	svc, repo := newCartService(t, setupCartTestDB(t), &stubProductFetcher{})
	_, err := repo.Create(context.Background(), "Ada", "ada@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Add(context.Background(), "ada@example.com", "P1"))

	err = svc.Remove(context.Background(), "ada@example.com", "P2")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	user, err := repo.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, user.Cart, "cart unchanged after removing an absent id")
}

func TestRemoveKeepsOrder(t *testing.T) {
	svc, repo := newCartService(t, setupCartTestDB(t), &stubProductFetcher{})
	_, err := repo.Create(context.Background(), "Ada", "ada@example.com")
	require.NoError(t, err)
	for _, pid := range []string{"P1", "P2", "P3"} {
		require.NoError(t, svc.Add(context.Background(), "ada@example.com", pid))
	}

	require.NoError(t, svc.Remove(context.Background(), "ada@example.com", "P2"))

	user, err := repo.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P3"}, user.Cart)
}

func TestProductsEmptyCart(t *testing.T) {
	svc, repo := newCartService(t, setupCartTestDB(t), &stubProductFetcher{})
	_, err := repo.Create(context.Background(), "Ada", "ada@example.com")
	require.NoError(t, err)

	_, err = svc.Products(context.Background(), "ada@example.com")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestProductsDropsFailedItems(t *testing.T) {
	fetcher := &stubProductFetcher{
		products: map[string]json.RawMessage{
			"P1": json.RawMessage(`{"pid":"P1"}`),
			"P3": json.RawMessage(`{"pid":"P3"}`),
		},
		errs: map[string]error{
			"P2": pkgerrors.New(pkgerrors.CodeUpstream, "supplier unavailable"),
		},
	}
	svc, repo := newCartService(t, setupCartTestDB(t), fetcher)
	_, err := repo.Create(context.Background(), "Ada", "ada@example.com")
	require.NoError(t, err)
	for _, pid := range []string{"P1", "P2", "P3"} {
		require.NoError(t, svc.Add(context.Background(), "ada@example.com", pid))
	}

	products, err := svc.Products(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.JSONEq(t, `{"pid":"P1"}`, string(products[0]))
	assert.JSONEq(t, `{"pid":"P3"}`, string(products[1]))
}

func TestProductsAllFailed(t *testing.T) {
	fetcher := &stubProductFetcher{
		errs: map[string]error{
			"P1": pkgerrors.New(pkgerrors.CodeUpstream, "supplier unavailable"),
		},
	}
	svc, repo := newCartService(t, setupCartTestDB(t), fetcher)
	_, err := repo.Create(context.Background(), "Ada", "ada@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Add(context.Background(), "ada@example.com", "P1"))

	_, err = svc.Products(context.Background(), "ada@example.com")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUpstream))
}
