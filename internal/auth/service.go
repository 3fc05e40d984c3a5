package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldhr/fieldhr-backend/internal/users"
	pkgauth "github.com/fieldhr/fieldhr-backend/pkg/auth"
	"github.com/fieldhr/fieldhr-backend/pkg/config"
	"github.com/fieldhr/fieldhr-backend/pkg/db/models"
	"github.com/fieldhr/fieldhr-backend/pkg/enums"
	pkgerrors "github.com/fieldhr/fieldhr-backend/pkg/errors"
	"github.com/fieldhr/fieldhr-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid email or password"

// LoginRequest carries the credentials presented at login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the issued token plus the authenticated profile.
type LoginResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresAt   time.Time        `json:"expires_at"`
	UserID      uuid.UUID        `json:"user_id"`
	CompanyID   uuid.UUID        `json:"company_id"`
	Email       string           `json:"email"`
	FullName    string           `json:"full_name"`
	Role        enums.MemberRole `json:"role"`
}

// Service issues access tokens for valid credentials.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

type service struct {
	users    users.Repository
	password config.PasswordConfig
	jwt      config.JWTConfig
}

// ServiceParams wires auth dependencies.
type ServiceParams struct {
	UserRepo users.Repository
	Password config.PasswordConfig
	JWT      config.JWTConfig
}

func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user repository required")
	}
	if params.JWT.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "jwt secret required")
	}
	return &service{users: params.UserRepo, password: params.Password, jwt: params.JWT}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	token, err := pkgauth.MintAccessToken(s.jwt, now, pkgauth.AccessTokenPayload{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   now.Add(time.Duration(s.jwt.ExpirationMinutes) * time.Minute),
		UserID:      user.ID,
		CompanyID:   user.CompanyID,
		Email:       user.Email,
		FullName:    user.FullName(),
		Role:        user.Role,
	}, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}
