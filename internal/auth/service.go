package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/lumera-labs/marketplace-backend/internal/users"
	pkgauth "github.com/lumera-labs/marketplace-backend/pkg/auth"
	"github.com/lumera-labs/marketplace-backend/pkg/auth/session"
	"github.com/lumera-labs/marketplace-backend/pkg/config"
	"github.com/lumera-labs/marketplace-backend/pkg/db"
	"github.com/lumera-labs/marketplace-backend/pkg/db/models"
	"github.com/lumera-labs/marketplace-backend/pkg/enums"
	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
	"github.com/lumera-labs/marketplace-backend/pkg/security"
)

// SessionManager is the session lifecycle surface the auth service needs.
// *session.Manager satisfies it.
type SessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	UserRepo *users.Repository
	Sessions SessionManager
	JWT      config.JWTConfig
	Password config.PasswordConfig
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Service implements registration, credential login, refresh-token rotation,
// and logout.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (AuthResultDTO, error)
	Login(ctx context.Context, input LoginInput) (AuthResultDTO, error)
	Refresh(ctx context.Context, input RefreshInput) (AuthResultDTO, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	userRepo *users.Repository
	sessions SessionManager
	jwt      config.JWTConfig
	password config.PasswordConfig
	now      func() time.Time
}

// NewService builds an auth service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session manager is required")
	}
	if params.JWT.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "jwt secret is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		userRepo: params.UserRepo,
		sessions: params.Sessions,
		jwt:      params.JWT,
		password: params.Password,
		now:      now,
	}, nil
}

// Register creates the account and signs the user in.
func (s *service) Register(ctx context.Context, input RegisterInput) (AuthResultDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" {
		return AuthResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "email and name are required")
	}
	if len(input.Password) < 8 {
		return AuthResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Phone:        input.Phone,
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return s.issueTokens(ctx, &user)
}

// Login verifies credentials. Bad email and bad password fail identically so
// the endpoint does not confirm which accounts exist.
func (s *service) Login(ctx context.Context, input LoginInput) (AuthResultDTO, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResultDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return AuthResultDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	if !user.IsActive {
		return AuthResultDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "account is disabled")
	}

	loginAt := s.now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, loginAt); err != nil {
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp login")
	}
	return s.issueTokens(ctx, user)
}

// Refresh rotates the refresh token and mints a fresh access token. The
// expired access token supplies the session identity; its signature is still
// verified.
func (s *service) Refresh(ctx context.Context, input RefreshInput) (AuthResultDTO, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwt, input.AccessToken)
	if err != nil {
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, input.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid refresh token")
		}
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "unknown account")
	}
	if !user.IsActive {
		return AuthResultDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "account is disabled")
	}

	access, expiresIn, err := s.mintAccess(user, newAccessID)
	if err != nil {
		return AuthResultDTO{}, err
	}
	return authResult(user, access, newRefresh, expiresIn), nil
}

// Logout revokes the session behind the provided access id.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) issueTokens(ctx context.Context, user *models.User) (AuthResultDTO, error) {
	accessID := session.NewAccessID()
	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return AuthResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}
	access, expiresIn, err := s.mintAccess(user, accessID)
	if err != nil {
		return AuthResultDTO{}, err
	}
	return authResult(user, access, refresh, expiresIn), nil
}

func (s *service) mintAccess(user *models.User, accessID string) (string, int64, error) {
	token, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return "", 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return token, int64(s.jwt.ExpirationMinutes) * 60, nil
}

func authResult(user *models.User, access, refresh string, expiresIn int64) AuthResultDTO {
	return AuthResultDTO{
		User: AccountDTO{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
		Tokens: TokenPairDTO{
			AccessToken:   access,
			RefreshToken:  refresh,
			TokenType:     "Bearer",
			ExpiresInSecs: expiresIn,
		},
	}
}
