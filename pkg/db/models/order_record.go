package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderRecord links a user to a confirmed supplier order. Append-only.
type OrderRecord struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email        string    `gorm:"column:email;type:text;not null;index"`
	OrderID      string    `gorm:"column:order_id;type:text;not null"`
	VariantImage string    `gorm:"column:variant_image;type:text"`
	ProductName  string    `gorm:"column:product_name;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
