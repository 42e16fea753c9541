package controllers

import (
	"context"
	"net/http"

	"github.com/xfery/dropship-backend/api/responses"
	"github.com/xfery/dropship-backend/api/validators"
	"github.com/xfery/dropship-backend/internal/address"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
	"github.com/xfery/dropship-backend/pkg/logger"
)

type addressService interface {
	Info(ctx context.Context, email string) (string, error)
	Update(ctx context.Context, req address.UpdateRequest) error
	Saved(ctx context.Context, email string) (*address.SavedAddress, error)
}

// AddressInfo reports whether the stored shipping details are complete.
// Storefronts call this gate before opening the checkout flow.
func AddressInfo(svc addressService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		email, err := validators.RequireEmailQuery(r, "email")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.Info(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": status})
	}
}

// AddressUpdate overwrites the full shipping payload.
func AddressUpdate(svc addressService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		var body address.UpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Update(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// SaveAddress returns the stored address in its display shape.
func SaveAddress(svc addressService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		email, err := validators.RequireEmailQuery(r, "email")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saved, err := svc.Saved(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, saved)
	}
}
