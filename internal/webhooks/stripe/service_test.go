package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	"github.com/xfery/dropship-backend/pkg/db/models"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
)

type recordingLedger struct {
	calls    int
	failures int
	recorded []*models.PaymentIntent
}

func (l *recordingLedger) RecordIntent(ctx context.Context, intent *models.PaymentIntent) error {
	l.calls++
	if l.calls <= l.failures {
		return pkgerrors.New(pkgerrors.CodeInternal, "database unavailable")
	}
	l.recorded = append(l.recorded, intent)
	return nil
}

func (l *recordingLedger) FindIntent(ctx context.Context, email, variantID string) (*models.PaymentIntent, error) {
	panic("not implemented")
}

func (l *recordingLedger) FindByEmail(ctx context.Context, email string) ([]models.PaymentIntent, error) {
	panic("not implemented")
}

func (l *recordingLedger) DeleteIntent(ctx context.Context, email, variantID string) (int64, error) {
	panic("not implemented")
}

func completedSessionEvent(t *testing.T, metadata map[string]string) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"id": "cs_test_1", "metadata": metadata})
	require.NoError(t, err)
	return &stripe.Event{
		ID:   "evt_1",
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: raw},
	}
}

func fullMetadata() map[string]string {
	return map[string]string{
		"userEmail":   "buyer@example.com",
		"variantId":   "variant-1",
		"quantity":    "2",
		"productName": "Desk Lamp",
		"price":       "19.99",
		"orderNum":    "AABBCCDDEEFF00112",
	}
}

func TestHandleEventRecordsIntent(t *testing.T) {
	ledger := &recordingLedger{}
	svc, err := NewService(ServiceParams{Ledger: ledger})
	require.NoError(t, err)

	err = svc.HandleEvent(context.Background(), completedSessionEvent(t, fullMetadata()))
	require.NoError(t, err)

	require.Len(t, ledger.recorded, 1)
	intent := ledger.recorded[0]
	assert.Equal(t, "buyer@example.com", intent.UserEmail)
	assert.Equal(t, "variant-1", intent.VariantID)
	assert.Equal(t, "AABBCCDDEEFF00112", intent.OrderNum)
	assert.Equal(t, "2", intent.Quantity)
	assert.Equal(t, "19.99", intent.Price)
	assert.Equal(t, "Desk Lamp", intent.ProductName)
}

func TestHandleEventRetriesTransientPersistFailures(t *testing.T) {
	ledger := &recordingLedger{failures: 2}
	svc, err := NewService(ServiceParams{Ledger: ledger})
	require.NoError(t, err)

	err = svc.HandleEvent(context.Background(), completedSessionEvent(t, fullMetadata()))
	require.NoError(t, err)
	assert.Equal(t, 3, ledger.calls)
	assert.Len(t, ledger.recorded, 1)
}

func TestHandleEventSurfacesExhaustedRetries(t *testing.T) {
	ledger := &recordingLedger{failures: 100}
	svc, err := NewService(ServiceParams{Ledger: ledger})
	require.NoError(t, err)

	err = svc.HandleEvent(context.Background(), completedSessionEvent(t, fullMetadata()))
	require.Error(t, err, "a lost intent must not be acknowledged")
	assert.Equal(t, persistRetries+1, ledger.calls)
	assert.Empty(t, ledger.recorded)
}

func TestHandleEventSkipsUnhandledTypes(t *testing.T) {
	ledger := &recordingLedger{}
	svc, err := NewService(ServiceParams{Ledger: ledger})
	require.NoError(t, err)

	err = svc.HandleEvent(context.Background(), &stripe.Event{
		ID:   "evt_2",
		Type: stripe.EventTypeChargeRefunded,
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	})
	require.NoError(t, err)
	assert.Zero(t, ledger.calls)
}

func TestHandleEventSkipsSessionsWithoutMetadata(t *testing.T) {
	ledger := &recordingLedger{}
	svc, err := NewService(ServiceParams{Ledger: ledger})
	require.NoError(t, err)

	err = svc.HandleEvent(context.Background(), completedSessionEvent(t, map[string]string{
		"userEmail": "buyer@example.com",
	}))
	require.NoError(t, err, "sessions not opened by this backend are acknowledged")
	assert.Zero(t, ledger.calls)
}

func TestHandleEventSkipsPartialMetadata(t *testing.T) {
	for _, missing := range []string{"userEmail", "variantId", "orderNum", "quantity", "productName", "price"} {
		t.Run("missing_"+missing, func(t *testing.T) {
			ledger := &recordingLedger{}
			svc, err := NewService(ServiceParams{Ledger: ledger})
			require.NoError(t, err)

			metadata := fullMetadata()
			delete(metadata, missing)

			err = svc.HandleEvent(context.Background(), completedSessionEvent(t, metadata))
			require.NoError(t, err, "redelivery cannot complete the metadata, so the event is acknowledged")
			assert.Zero(t, ledger.calls, "a partial payload must never reach the ledger")
		})
	}
}

type rejectingLedger struct {
	recordingLedger
}

func (l *rejectingLedger) RecordIntent(ctx context.Context, intent *models.PaymentIntent) error {
	l.calls++
	return pkgerrors.New(pkgerrors.CodeValidation, "payment intent fields are required")
}

func TestHandleEventAcksLedgerValidationReject(t *testing.T) {
	ledger := &rejectingLedger{}
	svc, err := NewService(ServiceParams{Ledger: ledger})
	require.NoError(t, err)

	err = svc.HandleEvent(context.Background(), completedSessionEvent(t, fullMetadata()))
	require.NoError(t, err, "a permanent reject must not trigger redelivery")
	assert.Equal(t, 1, ledger.calls, "validation rejects are not retried")
}

type fakeIdempotencyStore struct {
	keys map[string]bool
}

func (f *fakeIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.keys == nil {
		f.keys = map[string]bool{}
	}
	if f.keys[key] {
		return false, nil
	}
	f.keys[key] = true
	return true, nil
}

func (f *fakeIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.keys, key)
	}
	return nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return scope + ":" + id
}

func TestIdempotencyGuardMarksOnce(t *testing.T) {
	guard, err := NewIdempotencyGuard(&fakeIdempotencyStore{}, time.Minute, "stripe-webhook")
	require.NoError(t, err)

	seen, err := guard.CheckAndMark(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.True(t, seen, "second delivery of the same event is a duplicate")
}

func TestIdempotencyGuardDeleteAllowsRedelivery(t *testing.T) {
	guard, err := NewIdempotencyGuard(&fakeIdempotencyStore{}, time.Minute, "stripe-webhook")
	require.NoError(t, err)

	_, err = guard.CheckAndMark(context.Background(), "evt_1")
	require.NoError(t, err)
	require.NoError(t, guard.Delete(context.Background(), "evt_1"))

	seen, err := guard.CheckAndMark(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.False(t, seen, "a released mark must accept the redelivered event")
}
