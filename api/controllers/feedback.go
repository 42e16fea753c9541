package controllers

import (
	"context"
	"net/http"

	"github.com/xfery/dropship-backend/api/responses"
	"github.com/xfery/dropship-backend/api/validators"
	"github.com/xfery/dropship-backend/internal/feedback"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
	"github.com/xfery/dropship-backend/pkg/logger"
)

type feedbackService interface {
	Submit(ctx context.Context, req feedback.SubmitRequest) error
}

// Feedback stores one write-once feedback entry.
func Feedback(svc feedbackService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feedback service unavailable"))
			return
		}

		var body feedback.SubmitRequest
		if err := validators.DecodeJSONBodyLoose(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Submit(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "received"})
	}
}
