package cart

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"gorm.io/gorm"

	"github.com/xfery/dropship-backend/internal/users"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
	"github.com/xfery/dropship-backend/pkg/fetch"
	"github.com/xfery/dropship-backend/pkg/logger"
)

type productFetcher interface {
	GetProductByID(ctx context.Context, productID string) (json.RawMessage, error)
}

// ServiceParams packages the cart service dependencies.
type ServiceParams struct {
	Users    *users.Repository
	Supplier productFetcher
	Pool     *fetch.Pool
	Logger   *logger.Logger
}

// Service manages the profile-embedded cart. The cart is a set keyed by
// product id; insertion order is preserved for display.
type Service struct {
	users    *users.Repository
	supplier productFetcher
	pool     *fetch.Pool
	logger   *logger.Logger
}

// NewService builds the cart service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repo required")
	}
	if params.Supplier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "supplier gateway required")
	}
	if params.Pool == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fetch pool required")
	}
	return &Service{
		users:    params.Users,
		supplier: params.Supplier,
		pool:     params.Pool,
		logger:   params.Logger,
	}, nil
}

// Add appends a product id to the cart; duplicates are rejected.
func (s *Service) Add(ctx context.Context, email, productID string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}

	if slices.Contains(user.Cart, productID) {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is already in cart")
	}

	cart := append(user.Cart, productID)
	if err := s.users.UpdateCart(ctx, user.ID, cart); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart")
	}
	return nil
}

// Remove deletes a product id from the cart; removing an absent id reports
// that it was already removed and leaves the cart unchanged.
func (s *Service) Remove(ctx context.Context, email, productID string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}

	index := slices.Index(user.Cart, productID)
	if index < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item already removed")
	}

	cart := slices.Delete(slices.Clone(user.Cart), index, index+1)
	if err := s.users.UpdateCart(ctx, user.ID, cart); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart")
	}
	return nil
}

// Products resolves the cart's product ids to supplier product snapshots
// through the rate-limited pool. Items the supplier fails to return are
// dropped from the response; the failures are logged, not fatal.
func (s *Service) Products(ctx context.Context, email string) ([]json.RawMessage, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}

	if len(user.Cart) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	products, fetchErr := fetch.Collect(ctx, s.pool, user.Cart, s.supplier.GetProductByID)
	if fetchErr != nil && s.logger != nil {
		s.logger.Warn(s.logger.WithField(ctx, "email", email), "cart product fetch partially failed: "+fetchErr.Error())
	}
	if len(products) == 0 && fetchErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, fetchErr, "fetch cart products")
	}
	return products, nil
}
