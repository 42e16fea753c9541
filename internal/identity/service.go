package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xfery/dropship-backend/internal/users"
	"github.com/xfery/dropship-backend/pkg/config"
	"github.com/xfery/dropship-backend/pkg/db/models"
	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
)

// RegisterRequest is the registration payload. Shipping details come later
// through the address endpoints.
type RegisterRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// ServiceParams packages the identity service dependencies.
type ServiceParams struct {
	Users     *users.Repository
	JWTConfig config.JWTConfig
}

// Service registers shoppers and mints their session tokens.
type Service struct {
	users *users.Repository
	jwt   config.JWTConfig
}

// NewService builds the identity service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repo required")
	}
	if strings.TrimSpace(params.JWTConfig.Secret) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "jwt secret required")
	}
	return &Service{users: params.Users, jwt: params.JWTConfig}, nil
}

// Register creates the profile if the email is new and returns a signed
// token either way, so repeat registrations behave like logins.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnprocessable, "please fill all the required fields")
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return s.signToken(user.ID)
	case errors.Is(err, gorm.ErrRecordNotFound):
		created, createErr := s.users.Create(ctx, name, email)
		if createErr != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, createErr, "create user")
		}
		return s.signToken(created.ID)
	default:
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}
}

// GetUser loads a full profile by id.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}
	return user, nil
}

func (s *Service) signToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  userID.String(),
		Issuer:   s.jwt.Issuer,
		IssuedAt: jwt.NewNumericDate(now),
	})
	signed, err := token.SignedString([]byte(s.jwt.Secret))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sign token")
	}
	return signed, nil
}
