// Package auth issues and rotates the storefront's JWT access tokens and
// Redis-backed refresh sessions.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/techzonevn/storefront-backend/internal/users"
	pkgAuth "github.com/techzonevn/storefront-backend/pkg/auth"
	"github.com/techzonevn/storefront-backend/pkg/auth/session"
	"github.com/techzonevn/storefront-backend/pkg/config"
	"github.com/techzonevn/storefront-backend/pkg/db/models"
	"github.com/techzonevn/storefront-backend/pkg/enums"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
	"github.com/techzonevn/storefront-backend/pkg/logger"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error)
	RegisterAdmin(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error)
	Logout(ctx context.Context, accessID string) error
}

type userRepository interface {
	Create(ctx context.Context, in users.NewUser) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// sessionStore is the refresh-session half of session.Manager.
type sessionStore interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionStore
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	// Logger is optional; without it a failed password rehash goes unreported.
	Logger *logger.Logger
}

type service struct {
	users    userRepository
	sessions sessionStore
	jwt      config.JWTConfig
	argon    config.PasswordConfig
	logg     *logger.Logger
	clock    func() time.Time
}

func NewService(p ServiceParams) (Service, error) {
	switch {
	case p.UserRepo == nil:
		return nil, errors.New("user repository is required")
	case p.SessionManager == nil:
		return nil, errors.New("session manager is required")
	}
	return &service{
		users:    p.UserRepo,
		sessions: p.SessionManager,
		jwt:      p.JWTConfig,
		argon:    p.PasswordConfig,
		logg:     p.Logger,
		clock:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	user, err := s.signUp(ctx, req, enums.UserRoleCustomer)
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, user)
}

// RegisterAdmin creates an admin account and opens no session. The router only
// mounts it when admin signup is enabled outside production.
func (s *service) RegisterAdmin(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	user, err := s.signUp(ctx, req, enums.UserRoleAdmin)
	if err != nil {
		return nil, err
	}
	return users.FromModel(user), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.checkCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	at := s.clock()
	if err := s.users.UpdateLastLogin(ctx, user.ID, at); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}
	user.LastLoginAt = &at
	s.upgradeHash(ctx, user, req.Password)

	return s.openSession(ctx, user)
}

// Refresh accepts an expired access token so long as its signature holds, and
// trades the refresh token for a new pair. A refresh token works once.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwt, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	accessID, refresh, err := s.sessions.Rotate(ctx, claims.ID, req.RefreshToken)
	switch {
	case errors.Is(err, session.ErrInvalidRefreshToken):
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, lookupFailure(err)
	}
	if !user.IsActive {
		_ = s.sessions.Revoke(ctx, accessID)
		return nil, errBadCredentials()
	}
	return s.tokens(user, accessID, refresh)
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "no active session")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) openSession(ctx context.Context, user *models.User) (*TokenResponse, error) {
	accessID := session.NewAccessID()
	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh session")
	}
	return s.tokens(user, accessID, refresh)
}

func (s *service) tokens(user *models.User, accessID, refresh string) (*TokenResponse, error) {
	access, err := pkgAuth.MintAccessToken(s.jwt, s.clock(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sign access token")
	}
	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.jwt.ExpirationMinutes * 60,
		User:         users.FromModel(user),
	}, nil
}
