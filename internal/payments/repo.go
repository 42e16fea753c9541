package payments

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xfery/dropship-backend/pkg/db/models"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
)

// Repository is the payment-intent ledger. One intent per
// (user_email, variant_id); recording over an existing pair replaces it.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a ledger repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// RecordIntent validates and upserts a payment intent.
func (r *Repository) RecordIntent(ctx context.Context, intent *models.PaymentIntent) error {
	if intent == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent is required")
	}

	missing := []string{}
	for field, value := range map[string]string{
		"userEmail":   intent.UserEmail,
		"variantId":   intent.VariantID,
		"orderNum":    intent.OrderNum,
		"quantity":    intent.Quantity,
		"productName": intent.ProductName,
		"price":       intent.Price,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent fields missing").
			WithDetails(map[string]any{"fields": missing})
	}

	if intent.ID == uuid.Nil {
		intent.ID = uuid.New()
	}
	intent.UserEmail = strings.ToLower(strings.TrimSpace(intent.UserEmail))

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_email"}, {Name: "variant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"order_num", "quantity", "product_name", "price", "created_at",
		}),
	}).Create(intent).Error
}

// FindIntent returns the intent for the given (email, variant) pair.
func (r *Repository) FindIntent(ctx context.Context, email, variantID string) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("user_email = ? AND variant_id = ?", strings.ToLower(strings.TrimSpace(email)), variantID).
		First(&intent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment record not found for the given email and variantId")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find payment intent")
	}
	return &intent, nil
}

// FindByEmail returns every intent recorded for the given user.
func (r *Repository) FindByEmail(ctx context.Context, email string) ([]models.PaymentIntent, error) {
	var intents []models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("user_email = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("created_at DESC").
		Find(&intents).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payment intents")
	}
	return intents, nil
}

// DeleteIntent removes the intent for the pair and reports how many rows the
// delete touched. Zero rows is not an error: the confirmation flow uses the
// count as its atomic claim, so a racing confirm sees zero and backs off.
func (r *Repository) DeleteIntent(ctx context.Context, email, variantID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_email = ? AND variant_id = ?", strings.ToLower(strings.TrimSpace(email)), variantID).
		Delete(&models.PaymentIntent{})
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "delete payment intent")
	}
	return result.RowsAffected, nil
}
