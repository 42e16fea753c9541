package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the canonical shopper profile, keyed by email at the API surface.
// Cart keeps insertion order for display; set semantics are enforced by the
// cart service, not the column.
type User struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email                string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name                 string    `gorm:"column:name;type:text;not null"`
	ShippingCustomerName string    `gorm:"column:shipping_customer_name;type:text"`
	Mobile               string    `gorm:"column:mobile;type:text"`
	ShippingCountry      string    `gorm:"column:shipping_country;type:text"`
	ShippingCountryCode  string    `gorm:"column:shipping_country_code;type:text"`
	ShippingProvince     string    `gorm:"column:shipping_province;type:text"`
	ShippingCity         string    `gorm:"column:shipping_city;type:text"`
	ShippingAddress      string    `gorm:"column:shipping_address;type:text"`
	ShippingZip          string    `gorm:"column:shipping_zip;type:text"`
	HouseNumber          string    `gorm:"column:house_number;type:text"`
	Remark               string    `gorm:"column:remark;type:text"`
	Cart                 []string  `gorm:"column:cart;serializer:json"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// HasCompleteShipping reports whether every required shipping field is set.
// Remark is optional for completeness purposes.
func (u *User) HasCompleteShipping() bool {
	required := []string{
		u.ShippingCustomerName,
		u.Mobile,
		u.ShippingCountry,
		u.ShippingCountryCode,
		u.ShippingProvince,
		u.ShippingCity,
		u.ShippingAddress,
		u.ShippingZip,
		u.HouseNumber,
	}
	for _, field := range required {
		if field == "" {
			return false
		}
	}
	return true
}
