package orders

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
)

// PaymentUpdater notifies the external payment system that an order's
// payment record should be retired.
type PaymentUpdater interface {
	DeletePayment(ctx context.Context, email, variantID string) error
}

// HTTPPaymentUpdater calls the hosted payment-update endpoint.
type HTTPPaymentUpdater struct {
	httpClient *http.Client
	baseURL    string
}

// NewHTTPPaymentUpdater builds the client for the hosted endpoint.
func NewHTTPPaymentUpdater(baseURL string, timeout time.Duration) (*HTTPPaymentUpdater, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment update base url required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPPaymentUpdater{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}, nil
}

// DeletePayment issues the payment-update delete for the given pair.
func (u *HTTPPaymentUpdater) DeletePayment(ctx context.Context, email, variantID string) error {
	query := url.Values{}
	query.Set("email", email)
	query.Set("variantId", variantID)
	endpoint := u.baseURL + "/updatePayment?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build payment update request")
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "call payment update endpoint")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pkgerrors.New(pkgerrors.CodeUpstream, fmt.Sprintf("payment update endpoint returned status %d", resp.StatusCode))
	}
	return nil
}
