package controllers

import (
	"context"
	"net/http"

	"github.com/xfery/dropship-backend/api/responses"
	"github.com/xfery/dropship-backend/api/validators"
	"github.com/xfery/dropship-backend/internal/identity"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
	"github.com/xfery/dropship-backend/pkg/logger"
)

type registerService interface {
	Register(ctx context.Context, req identity.RegisterRequest) (string, error)
}

// Register onboards a shopper, or re-issues a token when the email is
// already known.
func Register(svc registerService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "identity service unavailable"))
			return
		}

		// Decoded without tag validation: missing fields must surface as
		// the service's 422, not a generic 400.
		var body identity.RegisterRequest
		if err := validators.DecodeJSONBodyLoose(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"token": token})
	}
}
