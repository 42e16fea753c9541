package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xfery/dropship-backend/pkg/db/models"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
)

// Repository persists confirmed-order records. Append-only.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order-record repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create appends a confirmed-order record.
func (r *Repository) Create(ctx context.Context, record *models.OrderRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.Email = strings.ToLower(strings.TrimSpace(record.Email))
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order record")
	}
	return nil
}

// FindByEmail returns every order record for the given user, newest first.
func (r *Repository) FindByEmail(ctx context.Context, email string) ([]models.OrderRecord, error) {
	var records []models.OrderRecord
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list order records")
	}
	return records, nil
}
