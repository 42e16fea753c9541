package address

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/xfery/dropship-backend/internal/users"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
)

func setupAddressTestDB(t *testing.T) *gorm.DB {
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

func fullUpdate(email string) UpdateRequest {
	return UpdateRequest{
		Email:                email,
		ShippingCustomerName: "Ada Buyer",
		Mobile:               "15550001111",
		ShippingCountry:      "United States",
		ShippingCountryCode:  "US",
		ShippingProvince:     "CA",
		ShippingCity:         "San Jose",
		ShippingAddress:      "1 Main St",
		ShippingZip:          "95112",
		HouseNumber:          "1",
		Remark:               "leave at the door",
	}
}

func TestInfoStatuses(t *testing.T) {
	db := setupAddressTestDB(t)
	repo := users.NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)

	status, err := svc.Info(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, status)

	_, err = repo.Create(context.Background(), "Ada", "ada@example.com")
	require.NoError(t, err)

	status, err = svc.Info(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, StatusIncomplete, status)

	require.NoError(t, svc.Update(context.Background(), fullUpdate("ada@example.com")))

	status, err = svc.Info(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, StatusExist, status)
}

func TestInfoIncompleteWhenAnyFieldMissing(t *testing.T) {
	db := setupAddressTestDB(t)
	repo := users.NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), "Ada", "ada@example.com")
	require.NoError(t, err)

	update := fullUpdate("ada@example.com")
	require.NoError(t, svc.Update(context.Background(), update))

	user, err := repo.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	user.ShippingZip = ""
	require.NoError(t, repo.Save(context.Background(), user))

	status, err := svc.Info(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, StatusIncomplete, status)
}

func TestUpdateUnknownUser(t *testing.T) {
	svc, err := NewService(users.NewRepository(setupAddressTestDB(t)))
	require.NoError(t, err)

	err = svc.Update(context.Background(), fullUpdate("ghost@example.com"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestSavedDisplayShape(t *testing.T) {
	db := setupAddressTestDB(t)
	repo := users.NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), "Ada", "ada@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Update(context.Background(), fullUpdate("ada@example.com")))

	saved, err := svc.Saved(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada Buyer", saved.Name)
	assert.Equal(t, "CA", saved.State)
	assert.Equal(t, "95112", saved.ZipCode)
	assert.Equal(t, "1", saved.HouseNumber)
}
