package controllers

import (
	"context"
	"net/http"

	"github.com/xfery/dropship-backend/api/responses"
	"github.com/xfery/dropship-backend/api/validators"
	"github.com/xfery/dropship-backend/internal/payments"
	"github.com/xfery/dropship-backend/pkg/db/models"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
	"github.com/xfery/dropship-backend/pkg/logger"
)

type paymentsService interface {
	CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (string, error)
	PaidProducts(ctx context.Context, email string) ([]models.PaymentIntent, error)
	Validate(ctx context.Context, email, variantID string, quantity int) (*models.PaymentIntent, error)
	ValidateForCreateOrder(ctx context.Context, email, variantID string) (*models.PaymentIntent, error)
}

// CheckoutPayment opens a hosted checkout session and returns its id.
func CheckoutPayment(svc paymentsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var body payments.CheckoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID, err := svc.CreateCheckoutSession(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"sessionId": sessionID})
	}
}

// PaidProductList returns every payment intent recorded for the email.
func PaidProductList(svc paymentsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		email, err := validators.RequireEmailQuery(r, "email")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intents, err := svc.PaidProducts(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, intents)
	}
}

// PaymentValidation checks shipping availability and then the intent, the
// preflight the storefront runs before quoting an order.
func PaymentValidation(svc paymentsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		email, err := validators.RequireEmailQuery(r, "email")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := validators.RequireQuery(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity, err := validators.ParseQueryInt(r, "quantity", 1, 1, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.Validate(r.Context(), email, variantID, quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, intent)
	}
}

// PaymentValidationCreateOrder looks up the intent without the shipping
// preflight, the check run right before confirmation.
func PaymentValidationCreateOrder(svc paymentsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		email, err := validators.RequireEmailQuery(r, "email")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := validators.RequireQuery(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.ValidateForCreateOrder(r.Context(), email, variantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, intent)
	}
}
