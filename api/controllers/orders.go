package controllers

import (
	"context"
	"net/http"

	"github.com/xfery/dropship-backend/api/responses"
	"github.com/xfery/dropship-backend/api/validators"
	"github.com/xfery/dropship-backend/internal/orders"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
	"github.com/xfery/dropship-backend/pkg/logger"
)

type orderService interface {
	Quote(ctx context.Context, req orders.QuoteRequest) (*orders.QuoteResult, error)
	Confirm(ctx context.Context, req orders.ConfirmRequest) error
	Orders(ctx context.Context, email string) ([]orders.OrderView, error)
	Tracking(ctx context.Context, email, trackingID string) (*orders.TrackingView, error)
}

// CheckOrderCreate quotes shipping and submits a provisional supplier order.
func CheckOrderCreate(svc orderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var body orders.QuoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Quote(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CreateOrder finalizes a paid order against the supplier.
func CreateOrder(svc orderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var body orders.ConfirmRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Confirm(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "confirmed"})
	}
}

// GetOrders returns the user's order history with supplier detail merged in.
func GetOrders(svc orderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		email, err := validators.RequireEmailQuery(r, "email")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, err := svc.Orders(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// OrderTracking merges supplier tracking info with the stored shipping
// fields.
func OrderTracking(svc orderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		email, err := validators.RequireEmailQuery(r, "email")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		trackingID, err := validators.RequireQuery(r, "trackingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Tracking(r.Context(), email, trackingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
