package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xfery/dropship-backend/api/responses"
	"github.com/xfery/dropship-backend/api/validators"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
	"github.com/xfery/dropship-backend/pkg/logger"
)

type cartService interface {
	Add(ctx context.Context, email, productID string) error
	Remove(ctx context.Context, email, productID string) error
	Products(ctx context.Context, email string) ([]json.RawMessage, error)
}

type cartAddRequest struct {
	Email     string `json:"email" validate:"required,email"`
	ProductID string `json:"productId" validate:"required"`
}

// CartAdd puts a product id into the user's cart once.
func CartAdd(svc cartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var body cartAddRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Add(r.Context(), body.Email, body.ProductID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "added"})
	}
}

// CartRemove drops a product id from the cart.
func CartRemove(svc cartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		email, err := validators.RequireEmailQuery(r, "email")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.RequireQuery(r, "pid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), email, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// CartProducts resolves the cart's product ids to supplier snapshots.
func CartProducts(svc cartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		email, err := validators.RequireEmailQuery(r, "email")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.Products(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}
