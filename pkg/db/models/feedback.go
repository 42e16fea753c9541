package models

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackEntry is a write-once feedback submission.
type FeedbackEntry struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email     string    `gorm:"column:email;type:text;not null;index"`
	Emoji     string    `gorm:"column:emoji;type:text"`
	TextBox   []string  `gorm:"column:text_box;serializer:json"`
	Message   string    `gorm:"column:message;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
