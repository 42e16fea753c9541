package types

// ShipmentData is the client-supplied shipping payload threaded through the
// quote and confirmation flows. Field names mirror the storefront contract.
type ShipmentData struct {
	Email                string `json:"email" validate:"required,email"`
	ShippingCustomerName string `json:"shippingCustomerName" validate:"required"`
	Mobile               string `json:"mobile" validate:"required"`
	ShippingCountry      string `json:"shippingCountry" validate:"required"`
	ShippingCountryCode  string `json:"shippingCountryCode" validate:"required"`
	ShippingProvince     string `json:"shippingProvince" validate:"required"`
	ShippingCity         string `json:"shippingCity" validate:"required"`
	ShippingAddress      string `json:"shippingAddress" validate:"required"`
	ShippingZip          string `json:"shippingZip" validate:"required"`
	HouseNumber          string `json:"houseNumber" validate:"required"`
	Remark               string `json:"remark"`
}
