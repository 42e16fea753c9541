package payments

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/xfery/dropship-backend/pkg/db/models"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS payment_intents (
  id TEXT PRIMARY KEY,
  user_email TEXT NOT NULL,
  variant_id TEXT NOT NULL,
  order_num TEXT NOT NULL,
  quantity TEXT NOT NULL,
  product_name TEXT NOT NULL,
  price TEXT NOT NULL,
  created_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_intents_user_variant
  ON payment_intents (user_email, variant_id);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func sampleIntent() *models.PaymentIntent {
	return &models.PaymentIntent{
		UserEmail:   "a@b.com",
		VariantID:   "V1",
		OrderNum:    "ABC123",
		Quantity:    "2",
		ProductName: "Widget",
		Price:       "19.99",
	}
}

func TestRecordAndFindIntentRoundTrip(t *testing.T) {
	repo := NewRepository(setupLedgerTestDB(t))

	require.NoError(t, repo.RecordIntent(context.Background(), sampleIntent()))

	found, err := repo.FindIntent(context.Background(), "a@b.com", "V1")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", found.OrderNum)
	assert.Equal(t, "2", found.Quantity)
	assert.Equal(t, "Widget", found.ProductName)
	assert.Equal(t, "19.99", found.Price)
}

func TestRecordIntentReplacesExistingPair(t *testing.T) {
	repo := NewRepository(setupLedgerTestDB(t))

	require.NoError(t, repo.RecordIntent(context.Background(), sampleIntent()))

	replacement := sampleIntent()
	replacement.OrderNum = "DEF456"
	replacement.Quantity = "5"
	require.NoError(t, repo.RecordIntent(context.Background(), replacement))

	found, err := repo.FindIntent(context.Background(), "a@b.com", "V1")
	require.NoError(t, err)
	assert.Equal(t, "DEF456", found.OrderNum)
	assert.Equal(t, "5", found.Quantity)

	intents, err := repo.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Len(t, intents, 1, "replacement must not leave a second row for the pair")
}

func TestRecordIntentRejectsMissingFields(t *testing.T) {
	repo := NewRepository(setupLedgerTestDB(t))

	intent := sampleIntent()
	intent.Price = ""
	intent.OrderNum = ""
	err := repo.RecordIntent(context.Background(), intent)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestFindIntentMissingPair(t *testing.T) {
	repo := NewRepository(setupLedgerTestDB(t))

	_, err := repo.FindIntent(context.Background(), "a@b.com", "V1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteIntentReportsClaim(t *testing.T) {
	repo := NewRepository(setupLedgerTestDB(t))

	require.NoError(t, repo.RecordIntent(context.Background(), sampleIntent()))

	claimed, err := repo.DeleteIntent(context.Background(), "a@b.com", "V1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, claimed)

	claimed, err = repo.DeleteIntent(context.Background(), "a@b.com", "V1")
	require.NoError(t, err)
	assert.Zero(t, claimed, "second delete must lose the claim, not error")
}

func TestLedgerNormalizesEmailCase(t *testing.T) {
	repo := NewRepository(setupLedgerTestDB(t))

	intent := sampleIntent()
	intent.UserEmail = "A@B.com"
	require.NoError(t, repo.RecordIntent(context.Background(), intent))

	found, err := repo.FindIntent(context.Background(), "a@b.com", "V1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", found.UserEmail)
}
