package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentIntent asserts that a user has paid for a variant and is awaiting
// supplier-side order confirmation. Quantity and price are kept as strings
// exactly as received in checkout session metadata. One intent per
// (user_email, variant_id): recording a new one replaces the previous row.
type PaymentIntent struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserEmail   string    `gorm:"column:user_email;type:text;not null;uniqueIndex:idx_payment_intents_user_variant"`
	VariantID   string    `gorm:"column:variant_id;type:text;not null;uniqueIndex:idx_payment_intents_user_variant"`
	OrderNum    string    `gorm:"column:order_num;type:text;not null"`
	Quantity    string    `gorm:"column:quantity;type:text;not null"`
	ProductName string    `gorm:"column:product_name;type:text;not null"`
	Price       string    `gorm:"column:price;type:text;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
