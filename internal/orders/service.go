package orders

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xfery/dropship-backend/internal/payments"
	"github.com/xfery/dropship-backend/internal/users"
	"github.com/xfery/dropship-backend/pkg/cj"
	"github.com/xfery/dropship-backend/pkg/db/models"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
	"github.com/xfery/dropship-backend/pkg/fetch"
	"github.com/xfery/dropship-backend/pkg/logger"
	"github.com/xfery/dropship-backend/pkg/types"
)

// All supplier shipments originate from the supplier's Chinese warehouses.
const originCountryCode = "CN"

// The confirmation scan covers only the first supplier order page. A match
// beyond the first 50 orders is not found; this is a known scaling limit of
// the correlation scheme, not a contract.
const (
	orderListPage     = 1
	orderListPageSize = 50
)

type supplierGateway interface {
	CalculateFreight(ctx context.Context, req cj.FreightRequest) ([]cj.FreightOption, error)
	CreateOrder(ctx context.Context, req cj.CreateOrderRequest) (json.RawMessage, error)
	ConfirmOrder(ctx context.Context, orderID string) error
	ListOrders(ctx context.Context, page, pageSize int) (*cj.OrderPage, error)
	GetOrderDetail(ctx context.Context, orderID string) (json.RawMessage, error)
	GetTrackingInfo(ctx context.Context, trackNumber string) (json.RawMessage, error)
}

// QuoteRequest asks for a freight quote and a provisional supplier order.
type QuoteRequest struct {
	VariantID string             `json:"variantId" validate:"required"`
	Shipment  types.ShipmentData `json:"userShipmentData" validate:"required"`
	Quantity  int                `json:"quantity" validate:"required,min=1"`
}

// QuoteResult carries the supplier's raw order-create response and the
// order number minted for this attempt. The caller threads the order number
// into the subsequent checkout-session call.
type QuoteResult struct {
	OrderNum         string          `json:"orderNum"`
	SupplierResponse json.RawMessage `json:"supplierResponse"`
}

// ConfirmRequest finalizes a paid order against the supplier.
type ConfirmRequest struct {
	VariantID    string             `json:"variantId" validate:"required"`
	Shipment     types.ShipmentData `json:"userShipmentData" validate:"required"`
	Quantity     int                `json:"quantityNum" validate:"required,min=1"`
	VariantImage string             `json:"variantImage"`
	ProductName  string             `json:"productName"`
}

// OrderView is one entry of a user's order history: the supplier's detail
// payload merged with the locally stored display fields.
type OrderView struct {
	OrderID      string          `json:"orderId"`
	Data         json.RawMessage `json:"data"`
	VariantImage string          `json:"variantImage,omitempty"`
	ProductName  string          `json:"productName,omitempty"`
}

// TrackingView merges supplier tracking info with the stored shipping fields.
type TrackingView struct {
	TrackInfo            json.RawMessage `json:"trackInfo"`
	ShippingCountry      string          `json:"shippingCountry"`
	ShippingProvince     string          `json:"shippingProvince"`
	ShippingCity         string          `json:"shippingCity"`
	ShippingAddress      string          `json:"shippingAddress"`
	ShippingCustomerName string          `json:"shippingCustomerName"`
	Mobile               string          `json:"mobile"`
	ShippingZip          string          `json:"shippingZip"`
}

// ServiceParams packages the orchestrator dependencies.
type ServiceParams struct {
	Supplier       supplierGateway
	Ledger         payments.Ledger
	Records        *Repository
	Users          *users.Repository
	PaymentUpdater PaymentUpdater
	Pool           *fetch.Pool
	Logger         *logger.Logger
}

// Service coordinates the quote, confirmation, and order-history flows.
type Service struct {
	supplier       supplierGateway
	ledger         payments.Ledger
	records        *Repository
	users          *users.Repository
	paymentUpdater PaymentUpdater
	pool           *fetch.Pool
	logger         *logger.Logger
}

// NewService builds the order workflow service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Supplier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "supplier gateway required")
	}
	if params.Ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment ledger required")
	}
	if params.Records == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order records repo required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repo required")
	}
	if params.PaymentUpdater == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment updater required")
	}
	if params.Pool == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fetch pool required")
	}
	return &Service{
		supplier:       params.Supplier,
		ledger:         params.Ledger,
		records:        params.Records,
		users:          params.Users,
		paymentUpdater: params.PaymentUpdater,
		pool:           params.Pool,
		logger:         params.Logger,
	}, nil
}

// NewOrderNum mints a fresh correlation identifier: 17 uppercase
// alphanumeric characters derived from a random UUID.
func NewOrderNum() string {
	compact := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(compact[:17])
}

// Quote checks shipping availability and submits a provisional order to the
// supplier. Nothing is persisted locally; the minted order number must be
// carried into the checkout-session call by the caller.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	orderNum := NewOrderNum()

	options, err := s.supplier.CalculateFreight(ctx, cj.FreightRequest{
		StartCountryCode: originCountryCode,
		EndCountryCode:   req.Shipment.ShippingCountryCode,
		Products: []cj.FreightProduct{
			{VID: req.VariantID, Quantity: req.Quantity},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(options) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping not found")
	}

	// The supplier's ordering is unspecified; the first option is a
	// best-effort pick, not a guaranteed cheapest or fastest carrier.
	logisticName := options[0].LogisticName

	response, err := s.supplier.CreateOrder(ctx, cj.CreateOrderRequest{
		OrderNumber:          orderNum,
		ShippingZip:          req.Shipment.ShippingZip,
		ShippingCountryCode:  req.Shipment.ShippingCountryCode,
		ShippingCountry:      req.Shipment.ShippingCountry,
		ShippingProvince:     req.Shipment.ShippingProvince,
		ShippingCity:         req.Shipment.ShippingCity,
		ShippingAddress:      req.Shipment.ShippingAddress,
		ShippingCustomerName: req.Shipment.ShippingCustomerName,
		ShippingPhone:        req.Shipment.Mobile,
		Remark:               req.Shipment.Remark,
		FromCountryCode:      originCountryCode,
		LogisticName:         logisticName,
		HouseNumber:          req.Shipment.HouseNumber,
		Email:                req.Shipment.Email,
		Products: []cj.OrderProduct{
			{
				VID:          req.VariantID,
				Quantity:     req.Quantity,
				ShippingName: req.Shipment.ShippingCustomerName,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return &QuoteResult{OrderNum: orderNum, SupplierResponse: response}, nil
}

// Confirm finalizes a paid order: it correlates the payment intent with the
// supplier's order list, confirms the supplier order when still unconfirmed,
// claims the intent, retires the external payment record, and appends the
// local order record. The tail has no compensating rollback; failures leave
// a retryable at-least-once state.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) error {
	email := req.Shipment.Email

	intent, err := s.ledger.FindIntent(ctx, email, req.VariantID)
	if err != nil {
		return err
	}

	page, err := s.supplier.ListOrders(ctx, orderListPage, orderListPageSize)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "retrieve supplier order list")
	}

	var matched *cj.OrderSummary
	for i := range page.List {
		entry := &page.List[i]
		if entry.OrderStatus != cj.OrderStatusCreated && entry.OrderStatus != cj.OrderStatusUnpaid {
			continue
		}
		if entry.OrderNum == intent.OrderNum {
			matched = entry
			break
		}
	}
	if matched == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "matching supplier order not found, try again")
	}

	if matched.OrderStatus == cj.OrderStatusCreated {
		if err := s.supplier.ConfirmOrder(ctx, matched.OrderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "confirm supplier order")
		}
	}

	// Deleting the intent is the atomic claim on this confirmation. A
	// concurrent attempt for the same pair sees zero rows and backs off
	// instead of double-writing the order record.
	claimed, err := s.ledger.DeleteIntent(ctx, email, req.VariantID)
	if err != nil {
		return err
	}
	if claimed == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "order is already being processed")
	}

	if err := s.paymentUpdater.DeletePayment(ctx, email, req.VariantID); err != nil {
		if s.logger != nil {
			s.logger.Error(ctx, "payment update failed after intent claim", err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "failed to update payment information")
	}

	if err := s.records.Create(ctx, &models.OrderRecord{
		Email:        email,
		OrderID:      matched.OrderID,
		VariantImage: req.VariantImage,
		ProductName:  req.ProductName,
	}); err != nil {
		if s.logger != nil {
			s.logger.Error(ctx, "order record write failed after supplier confirm", err)
		}
		return err
	}

	return nil
}

// Orders returns the user's order history with supplier detail merged in.
// Details the supplier fails to return are dropped; failures are logged.
func (s *Service) Orders(ctx context.Context, email string) ([]OrderView, error) {
	records, err := s.records.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user has no orders")
	}

	byOrderID := make(map[string]models.OrderRecord, len(records))
	orderIDs := make([]string, 0, len(records))
	for _, record := range records {
		if _, seen := byOrderID[record.OrderID]; !seen {
			orderIDs = append(orderIDs, record.OrderID)
		}
		byOrderID[record.OrderID] = record
	}

	type detail struct {
		orderID string
		payload json.RawMessage
	}
	details, fetchErr := fetch.Collect(ctx, s.pool, orderIDs, func(ctx context.Context, orderID string) (detail, error) {
		payload, err := s.supplier.GetOrderDetail(ctx, orderID)
		if err != nil {
			return detail{}, err
		}
		return detail{orderID: orderID, payload: payload}, nil
	})
	if fetchErr != nil && s.logger != nil {
		s.logger.Warn(s.logger.WithEmail(ctx, email), "order detail fetch partially failed: "+fetchErr.Error())
	}
	if len(details) == 0 && fetchErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, fetchErr, "fetch order details")
	}

	views := make([]OrderView, 0, len(details))
	for _, d := range details {
		view := OrderView{OrderID: d.orderID, Data: d.payload}
		if record, ok := byOrderID[d.orderID]; ok {
			view.VariantImage = record.VariantImage
			view.ProductName = record.ProductName
		}
		views = append(views, view)
	}
	return views, nil
}

// Tracking merges supplier tracking info with the user's stored shipping
// details.
func (s *Service) Tracking(ctx context.Context, email, trackingID string) (*TrackingView, error) {
	trackInfo, err := s.supplier.GetTrackingInfo(ctx, trackingID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}

	return &TrackingView{
		TrackInfo:            trackInfo,
		ShippingCountry:      user.ShippingCountry,
		ShippingProvince:     user.ShippingProvince,
		ShippingCity:         user.ShippingCity,
		ShippingAddress:      user.ShippingAddress,
		ShippingCustomerName: user.ShippingCustomerName,
		Mobile:               user.Mobile,
		ShippingZip:          user.ShippingZip,
	}, nil
}
