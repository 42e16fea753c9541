package address

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/xfery/dropship-backend/internal/users"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
)

// Completeness statuses reported by Info.
const (
	StatusExist      = "exist"
	StatusIncomplete = "incomplete_profile"
	StatusNotFound   = "not_found"
)

// UpdateRequest is the full shipping payload. Every field, including the
// remark, is required by the storefront contract.
type UpdateRequest struct {
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
	Remark               string `json:"remark" validate:"required"`
}

// SavedAddress is the display shape for a stored address.
type SavedAddress struct {
	Name        string `json:"name"`
	Mobile      string `json:"mobile"`
	Country     string `json:"country"`
	State       string `json:"state"`
	City        string `json:"city"`
	Address     string `json:"address"`
	ZipCode     string `json:"zipCode"`
	HouseNumber string `json:"houseNumber"`
}

// Service manages the shipping-address slice of a profile.
type Service struct {
	users *users.Repository
}

// NewService builds the address service.
func NewService(repo *users.Repository) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repo required")
	}
	return &Service{users: repo}, nil
}

// Info reports whether the profile's shipping details are complete. The
// quote and confirmation flows expect callers to pass this gate first.
func (s *Service) Info(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StatusNotFound, nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}
	if user.HasCompleteShipping() {
		return StatusExist, nil
	}
	return StatusIncomplete, nil
}

// Update overwrites every shipping field of the profile.
func (s *Service) Update(ctx context.Context, req UpdateRequest) error {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found, please login with email first")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}

	user.ShippingCustomerName = strings.TrimSpace(req.ShippingCustomerName)
	user.Mobile = strings.TrimSpace(req.Mobile)
	user.ShippingCountry = strings.TrimSpace(req.ShippingCountry)
	user.ShippingCountryCode = strings.TrimSpace(req.ShippingCountryCode)
	user.ShippingProvince = strings.TrimSpace(req.ShippingProvince)
	user.ShippingCity = strings.TrimSpace(req.ShippingCity)
	user.ShippingAddress = strings.TrimSpace(req.ShippingAddress)
	user.ShippingZip = strings.TrimSpace(req.ShippingZip)
	user.HouseNumber = strings.TrimSpace(req.HouseNumber)
	user.Remark = strings.TrimSpace(req.Remark)

	if err := s.users.Save(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save address")
	}
	return nil
}

// Saved returns the stored address in its display shape.
func (s *Service) Saved(ctx context.Context, email string) (*SavedAddress, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}

	return &SavedAddress{
		Name:        user.ShippingCustomerName,
		Mobile:      user.Mobile,
		Country:     user.ShippingCountry,
		State:       user.ShippingProvince,
		City:        user.ShippingCity,
		Address:     user.ShippingAddress,
		ZipCode:     user.ShippingZip,
		HouseNumber: user.HouseNumber,
	}, nil
}
