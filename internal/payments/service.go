package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xfery/dropship-backend/pkg/cj"
	"github.com/xfery/dropship-backend/pkg/config"
	"github.com/xfery/dropship-backend/pkg/db/models"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
	"github.com/xfery/dropship-backend/pkg/stripe"
)

type checkoutGateway interface {
	CreateCheckoutSession(ctx context.Context, params stripe.SessionParams) (string, error)
}

type freightCalculator interface {
	CalculateFreight(ctx context.Context, req cj.FreightRequest) ([]cj.FreightOption, error)
}

type userFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Ledger is the payment-intent surface the rest of the system consumes.
type Ledger interface {
	RecordIntent(ctx context.Context, intent *models.PaymentIntent) error
	FindIntent(ctx context.Context, email, variantID string) (*models.PaymentIntent, error)
	FindByEmail(ctx context.Context, email string) ([]models.PaymentIntent, error)
	DeleteIntent(ctx context.Context, email, variantID string) (int64, error)
}

// CheckoutRequest is the payload for opening a hosted checkout session.
type CheckoutRequest struct {
	VariantID     string  `json:"variantId" validate:"required"`
	Quantity      int     `json:"quantity" validate:"required,min=1"`
	FinalPrice    float64 `json:"finalPrice" validate:"required,gt=0"`
	ProductNameEn string  `json:"productNameEn" validate:"required"`
	UserEmail     string  `json:"userEmail" validate:"required,email"`
	OrderNum      string  `json:"orderNum" validate:"required,len=17"`
}

// ServiceParams packages the checkout service dependencies.
type ServiceParams struct {
	Ledger   Ledger
	Users    userFinder
	Checkout checkoutGateway
	Freight  freightCalculator
	Config   config.CheckoutConfig
}

// Service brokers checkout sessions and the ledger's read side.
type Service struct {
	ledger   Ledger
	users    userFinder
	checkout checkoutGateway
	freight  freightCalculator
	cfg      config.CheckoutConfig
}

// NewService builds the payments service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment ledger required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repo required")
	}
	if params.Checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout gateway required")
	}
	if params.Freight == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "freight calculator required")
	}
	return &Service{
		ledger:   params.Ledger,
		users:    params.Users,
		checkout: params.Checkout,
		freight:  params.Freight,
		cfg:      params.Config,
	}, nil
}

// MinorUnits converts a decimal currency amount to integer minor units.
// Rounding is half away from zero: 19.99 -> 1999, 10.005 -> 1001.
func MinorUnits(price float64) int64 {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// CreateCheckoutSession opens a hosted payment session. The order number and
// purchase details ride along as session metadata and come back on the
// completion webhook; nothing is persisted locally at this point.
func (s *Service) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	amount := MinorUnits(req.FinalPrice)

	sessionID, err := s.checkout.CreateCheckoutSession(ctx, stripe.SessionParams{
		AmountMinorUnits: amount,
		Currency:         s.cfg.Currency,
		Quantity:         int64(req.Quantity),
		ProductName:      req.ProductNameEn,
		Description:      fmt.Sprintf("Order Number: %s", req.OrderNum),
		CustomerEmail:    req.UserEmail,
		SuccessURL:       s.cfg.SuccessURL,
		CancelURL:        s.cfg.CancelURL,
		Metadata: map[string]string{
			"userEmail":   req.UserEmail,
			"variantId":   req.VariantID,
			"quantity":    strconv.Itoa(req.Quantity),
			"productName": req.ProductNameEn,
			"price":       strconv.FormatFloat(req.FinalPrice, 'f', -1, 64),
			"orderNum":    req.OrderNum,
		},
	})
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// PaidProducts returns every recorded intent for the user.
func (s *Service) PaidProducts(ctx context.Context, email string) ([]models.PaymentIntent, error) {
	intents, err := s.ledger.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(intents) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no matching payment records found")
	}
	return intents, nil
}

// Validate checks shipping availability for the variant and then looks up
// the user's payment intent. Run before quoting a new order.
func (s *Service) Validate(ctx context.Context, email, variantID string, quantity int) (*models.PaymentIntent, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found for the given email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}

	options, err := s.freight.CalculateFreight(ctx, cj.FreightRequest{
		StartCountryCode: originCountryCode,
		EndCountryCode:   user.ShippingCountryCode,
		Products: []cj.FreightProduct{
			{VID: variantID, Quantity: quantity},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(options) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			"this variant has no shipping method available for your country, please try a different variant or quantity")
	}

	return s.ledger.FindIntent(ctx, email, variantID)
}

// ValidateForCreateOrder looks up the user's payment intent without the
// shipping-availability preflight.
func (s *Service) ValidateForCreateOrder(ctx context.Context, email, variantID string) (*models.PaymentIntent, error) {
	return s.ledger.FindIntent(ctx, email, variantID)
}

// All supplier shipments originate from the supplier's warehouses in China.
const originCountryCode = "CN"
