package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stripe/stripe-go/v84"

	"github.com/xfery/dropship-backend/internal/payments"
	"github.com/xfery/dropship-backend/pkg/db/models"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
	"github.com/xfery/dropship-backend/pkg/logger"
	"github.com/xfery/dropship-backend/pkg/metrics"
)

const (
	persistRetries  = 3
	persistBackoff  = 500 * time.Millisecond
	skipUnhandled   = "unhandled_event_type"
	skipBadMetadata = "incomplete_metadata"
)

type ServiceParams struct {
	Ledger  payments.Ledger
	Metrics *metrics.WebhookMetrics
	Logger  *logger.Logger
}

// Service turns completed checkout sessions into payment intents. A session
// that cannot be persisted is surfaced as an error so the delivery is retried
// by the sender instead of being silently dropped.
type Service struct {
	ledger  payments.Ledger
	metrics *metrics.WebhookMetrics
	logger  *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment ledger required")
	}
	return &Service{
		ledger:  params.Ledger,
		metrics: params.Metrics,
		logger:  params.Logger,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
		}
		return s.recordIntent(ctx, string(event.Type), session.Metadata)
	default:
		s.metrics.IncSkipped(skipUnhandled)
		return nil
	}
}

// recordIntent persists the intent carried in session metadata. Sessions not
// opened by this backend have no metadata and are acknowledged as-is;
// redelivery cannot fix them.
func (s *Service) recordIntent(ctx context.Context, eventType string, metadata map[string]string) error {
	intent, ok := intentFromMetadata(metadata)
	if !ok {
		if s.logger != nil {
			s.logger.Warn(ctx, "checkout session completed without usable metadata, skipping")
		}
		s.metrics.IncSkipped(skipBadMetadata)
		return nil
	}

	backoff := retry.WithMaxRetries(persistRetries, retry.NewConstant(persistBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.ledger.RecordIntent(ctx, intent); err != nil {
			// A validation reject is permanent; retrying or redelivering
			// the same payload can never make it pass.
			if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			if s.logger != nil {
				s.logger.Warn(ctx, "checkout session metadata rejected by ledger, skipping: "+err.Error())
			}
			s.metrics.IncSkipped(skipBadMetadata)
			return nil
		}
		s.metrics.IncPersistFailure(eventType)
		if s.logger != nil {
			logCtx := s.logger.WithFields(ctx, map[string]any{
				"email":      intent.UserEmail,
				"variant_id": intent.VariantID,
				"order_num":  intent.OrderNum,
			})
			s.logger.Error(logCtx, "payment intent persist failed after retries", err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist payment intent")
	}

	s.metrics.IncRecorded(eventType)
	if s.logger != nil {
		s.logger.Info(s.logger.WithEmail(ctx, intent.UserEmail),
			fmt.Sprintf("payment intent recorded for order %s", intent.OrderNum))
	}
	return nil
}

func intentFromMetadata(metadata map[string]string) (*models.PaymentIntent, bool) {
	if metadata == nil {
		return nil, false
	}
	intent := &models.PaymentIntent{
		UserEmail:   metadata["userEmail"],
		VariantID:   metadata["variantId"],
		OrderNum:    metadata["orderNum"],
		Quantity:    metadata["quantity"],
		ProductName: metadata["productName"],
		Price:       metadata["price"],
	}
	// All six fields are required by the ledger; a partial payload would
	// only fail validation there, so it is unusable here already.
	if intent.UserEmail == "" || intent.VariantID == "" || intent.OrderNum == "" ||
		intent.Quantity == "" || intent.ProductName == "" || intent.Price == "" {
		return nil, false
	}
	return intent, true
}
