package feedback

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xfery/dropship-backend/pkg/db/models"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
)

// SubmitRequest is the feedback payload; at least one content field must be
// present alongside the email.
type SubmitRequest struct {
	SelectedEmojiDescription string   `json:"selectedEmojiDescription"`
	SelectedBoxes            []string `json:"selectedBoxes"`
	TextareaText             string   `json:"textareaText"`
	Email                    string   `json:"email"`
}

// Service persists write-once feedback entries.
type Service struct {
	db *gorm.DB
}

// NewService builds the feedback service.
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database required")
	}
	return &Service{db: db}, nil
}

// Submit stores one feedback entry.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) error {
	if req.SelectedEmojiDescription == "" && len(req.SelectedBoxes) == 0 && strings.TrimSpace(req.TextareaText) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one message is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	entry := &models.FeedbackEntry{
		ID:      uuid.New(),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Emoji:   req.SelectedEmojiDescription,
		TextBox: req.SelectedBoxes,
		Message: req.TextareaText,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save feedback")
	}
	return nil
}
