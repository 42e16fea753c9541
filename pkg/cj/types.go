package cj

import "encoding/json"

// envelope is the supplier's standard response wrapper.
type envelope struct {
	Code    int             `json:"code"`
	Result  bool            `json:"result"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ProductPage is a page of product list entries, passed through to clients
// without reshaping.
type ProductPage struct {
	PageNum  int               `json:"pageNum"`
	PageSize int               `json:"pageSize"`
	Total    int               `json:"total"`
	List     []json.RawMessage `json:"list"`
}

// Variant is the subset of variant detail the backend reads; everything
// else in the payload passes through verbatim.
type Variant struct {
	VID              string          `json:"vid"`
	VariantSellPrice json.RawMessage `json:"variantSellPrice"`
}

// FreightProduct is one line of a freight calculation request.
type FreightProduct struct {
	VID      string `json:"vid"`
	Quantity int    `json:"quantity"`
}

// FreightRequest asks for available logistics options between two countries.
type FreightRequest struct {
	StartCountryCode string           `json:"startCountryCode"`
	EndCountryCode   string           `json:"endCountryCode"`
	Products         []FreightProduct `json:"products"`
}

// FreightOption is one carrier quote returned by the freight calculator.
type FreightOption struct {
	LogisticName  string  `json:"logisticName"`
	LogisticPrice float64 `json:"logisticPrice"`
	LogisticAging string  `json:"logisticAging"`
}

// OrderProduct is one line of an order-create request.
type OrderProduct struct {
	VID          string `json:"vid"`
	Quantity     int    `json:"quantity"`
	ShippingName string `json:"shippingName"`
}

// CreateOrderRequest is the full shipment payload submitted to the supplier.
type CreateOrderRequest struct {
	OrderNumber          string         `json:"orderNumber"`
	ShippingZip          string         `json:"shippingZip"`
	ShippingCountryCode  string         `json:"shippingCountryCode"`
	ShippingCountry      string         `json:"shippingCountry"`
	ShippingProvince     string         `json:"shippingProvince"`
	ShippingCity         string         `json:"shippingCity"`
	ShippingAddress      string         `json:"shippingAddress"`
	ShippingCustomerName string         `json:"shippingCustomerName"`
	ShippingPhone        string         `json:"shippingPhone"`
	Remark               string         `json:"remark"`
	FromCountryCode      string         `json:"fromCountryCode"`
	LogisticName         string         `json:"logisticName"`
	HouseNumber          string         `json:"houseNumber"`
	Email                string         `json:"email"`
	Products             []OrderProduct `json:"products"`
}

// OrderSummary is one entry of the supplier's order list.
type OrderSummary struct {
	OrderID     string `json:"orderId"`
	OrderNum    string `json:"orderNum"`
	OrderStatus string `json:"orderStatus"`
}

// OrderPage is a page of the supplier's order list.
type OrderPage struct {
	PageNum  int            `json:"pageNum"`
	PageSize int            `json:"pageSize"`
	Total    int            `json:"total"`
	List     []OrderSummary `json:"list"`
}

// Supplier order statuses the confirmation flow distinguishes.
const (
	OrderStatusCreated = "CREATED"
	OrderStatusUnpaid  = "UNPAID"
)
