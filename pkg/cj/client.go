package cj

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xfery/dropship-backend/pkg/config"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
	"github.com/xfery/dropship-backend/pkg/logger"
	"github.com/xfery/dropship-backend/pkg/metrics"
)

const (
	accessTokenHeader = "CJ-Access-Token"

	// The supplier rejects paging past its offset ceiling with this exact
	// message in an otherwise well-formed response.
	maxOffsetMessage = "the max offset is 1000"
)

var (
	errAccessTokenRequired = errors.New("supplier access token is required")
	errBaseURLRequired     = errors.New("supplier base url is required")
)

// Client wraps the dropshipping supplier's HTTP API with centralized auth,
// timeouts, logging, and error mapping.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	accessToken   string
	timeout       time.Duration
	searchTimeout time.Duration
	logger        *logger.Logger
	metrics       *metrics.SupplierMetrics
}

// NewClient validates the supplier credentials and builds the wrapper.
func NewClient(ctx context.Context, cfg config.SupplierConfig, logg *logger.Logger, m *metrics.SupplierMetrics) (*Client, error) {
	accessToken := strings.TrimSpace(cfg.AccessToken)
	if accessToken == "" {
		return nil, errAccessTokenRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	searchTimeout := cfg.SearchTimeout
	if searchTimeout <= 0 {
		searchTimeout = 30 * time.Second
	}

	c := &Client{
		httpClient:    &http.Client{},
		baseURL:       baseURL,
		accessToken:   accessToken,
		timeout:       timeout,
		searchTimeout: searchTimeout,
		logger:        logg,
		metrics:       m,
	}

	if logg != nil {
		logg.Info(ctx, "supplier client initialized")
	}
	return c, nil
}

// ListProducts fetches one page of the supplier catalog.
func (c *Client) ListProducts(ctx context.Context, page, pageSize int) (*ProductPage, error) {
	query := url.Values{}
	query.Set("pageNum", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(pageSize))

	var result ProductPage
	if err := c.get(ctx, "list_products", "/product/list", query, c.timeout, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchProducts queries the catalog by name and category. The supplier is
// slow on this path, so it runs under the dedicated search budget.
func (c *Client) SearchProducts(ctx context.Context, queryText string, page, pageSize int) (*ProductPage, error) {
	query := url.Values{}
	query.Set("productNameEn", queryText)
	query.Set("categoryName", queryText)
	query.Set("pageNum", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(pageSize))

	var result ProductPage
	if err := c.get(ctx, "search_products", "/product/list", query, c.searchTimeout, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProductDetail fetches a single product by id, returned verbatim.
func (c *Client) GetProductDetail(ctx context.Context, productID string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("pid", productID)

	var result json.RawMessage
	if err := c.get(ctx, "get_product_detail", "/product/query", query, c.timeout, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetProductByID fetches the product list entry for one product id. Used by
// the cart view, which stores bare product ids.
func (c *Client) GetProductByID(ctx context.Context, productID string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("pid", productID)

	var result ProductPage
	if err := c.get(ctx, "get_product_by_id", "/product/list", query, c.timeout, &result); err != nil {
		return nil, err
	}
	if len(result.List) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return result.List[0], nil
}

// GetVariant fetches the full variant detail payload.
func (c *Client) GetVariant(ctx context.Context, variantID string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("vid", variantID)

	var result json.RawMessage
	if err := c.get(ctx, "get_variant", "/product/variant/queryByVid", query, c.timeout, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetVariantPrice fetches only the sell price of a variant.
func (c *Client) GetVariantPrice(ctx context.Context, variantID string) (json.RawMessage, error) {
	raw, err := c.GetVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	var variant Variant
	if err := json.Unmarshal(raw, &variant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode variant detail")
	}
	return variant.VariantSellPrice, nil
}

// CalculateFreight returns the logistics options for shipping the given
// lines between two countries.
func (c *Client) CalculateFreight(ctx context.Context, req FreightRequest) ([]FreightOption, error) {
	var result []FreightOption
	if err := c.post(ctx, "calculate_freight", "/logistic/freightCalculate", req, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateOrder submits a full shipment payload and returns the supplier's
// raw order-create response.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.post(ctx, "create_order", "/shopping/order/createOrder", req, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ConfirmOrder confirms a previously created supplier order.
func (c *Client) ConfirmOrder(ctx context.Context, orderID string) error {
	body := map[string]string{"orderId": orderID}
	return c.patch(ctx, "confirm_order", "/shopping/order/confirmOrder", body, nil)
}

// ListOrders fetches one page of the account's supplier orders.
func (c *Client) ListOrders(ctx context.Context, page, pageSize int) (*OrderPage, error) {
	query := url.Values{}
	query.Set("pageNum", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(pageSize))

	var result OrderPage
	if err := c.get(ctx, "list_orders", "/shopping/order/list", query, c.timeout, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOrderDetail fetches a single supplier order, returned verbatim.
func (c *Client) GetOrderDetail(ctx context.Context, orderID string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("orderId", orderID)

	var result json.RawMessage
	if err := c.get(ctx, "get_order_detail", "/shopping/order/getOrderDetail", query, c.timeout, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetTrackingInfo fetches logistics tracking for a shipped order.
func (c *Client) GetTrackingInfo(ctx context.Context, trackNumber string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("trackNumber", trackNumber)

	var result json.RawMessage
	if err := c.get(ctx, "get_tracking_info", "/logistic/getTrackInfo", query, c.timeout, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, operation, path string, query url.Values, timeout time.Duration, dest any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return c.do(ctx, operation, http.MethodGet, endpoint, nil, timeout, dest)
}

func (c *Client) post(ctx context.Context, operation, path string, body any, dest any) error {
	return c.do(ctx, operation, http.MethodPost, c.baseURL+path, body, c.timeout, dest)
}

func (c *Client) patch(ctx context.Context, operation, path string, body any, dest any) error {
	return c.do(ctx, operation, http.MethodPatch, c.baseURL+path, body, c.timeout, dest)
}

func (c *Client) do(ctx context.Context, operation, method, endpoint string, body any, timeout time.Duration, dest any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode supplier request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build supplier request")
	}
	req.Header.Set(accessTokenHeader, c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log(ctx, "request", operation)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveDuration(operation, time.Since(start))
	if err != nil {
		c.metrics.IncFailure(operation)
		return c.mapTransportError(ctx, operation, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncFailure(operation)
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, fmt.Sprintf("read supplier response for %s", operation))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.IncFailure(operation)
		return pkgerrors.New(pkgerrors.CodeUpstream, fmt.Sprintf("supplier returned status %d for %s", resp.StatusCode, operation))
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		c.metrics.IncFailure(operation)
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, fmt.Sprintf("decode supplier response for %s", operation))
	}

	if strings.EqualFold(strings.TrimSpace(env.Message), maxOffsetMessage) {
		c.metrics.IncFailure(operation)
		return pkgerrors.New(pkgerrors.CodeRateLimit, "supplier paging limit reached")
	}

	if !env.Result {
		c.metrics.IncFailure(operation)
		message := env.Message
		if message == "" {
			message = fmt.Sprintf("supplier reported failure for %s", operation)
		}
		return pkgerrors.New(pkgerrors.CodeUpstream, message)
	}

	if dest != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, dest); err != nil {
			c.metrics.IncFailure(operation)
			return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, fmt.Sprintf("decode supplier data for %s", operation))
		}
	}

	c.log(ctx, "response", operation)
	return nil
}

func (c *Client) mapTransportError(ctx context.Context, operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, fmt.Sprintf("supplier %s timed out", operation))
	}
	return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, fmt.Sprintf("supplier %s failed", operation))
}

func (c *Client) log(ctx context.Context, phase, operation string) {
	if c.logger == nil {
		return
	}
	ctx = c.logger.WithFields(ctx, map[string]any{
		"gateway":   "cj",
		"phase":     phase,
		"operation": operation,
	})
	c.logger.Info(ctx, "supplier."+phase)
}
