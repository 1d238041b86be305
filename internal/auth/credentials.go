package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/techzonevn/storefront-backend/internal/users"
	"github.com/techzonevn/storefront-backend/pkg/db"
	"github.com/techzonevn/storefront-backend/pkg/db/models"
	"github.com/techzonevn/storefront-backend/pkg/enums"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
	"github.com/techzonevn/storefront-backend/pkg/security"
)

// Unknown email, wrong password and disabled account all read the same.
func errBadCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func lookupFailure(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errBadCredentials()
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
}

func (s *service) signUp(ctx context.Context, req RegisterRequest, role enums.UserRole) (*models.User, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.FullName)
	switch {
	case email == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	case name == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full_name is required")
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, errEmailTaken()
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
	}

	hash, err := security.HashPassword(req.Password, s.argon)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user, err := s.users.Create(ctx, users.NewUser{
		Email:        email,
		PasswordHash: hash,
		FullName:     name,
		Phone:        optionalText(req.Phone),
		Role:         role,
	})
	if err != nil {
		// Two signups can pass the lookup together; the unique index decides.
		if db.IsUniqueViolation(err, "ux_users_email") {
			return nil, errEmailTaken()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return user, nil
}

func errEmailTaken() error {
	return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
}

func (s *service) checkCredentials(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, errBadCredentials()
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, lookupFailure(err)
	}

	match, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match || !user.IsActive {
		return nil, errBadCredentials()
	}
	return user, nil
}

// upgradeHash re-hashes the password after a successful login when the stored
// hash predates the current argon2 settings. Failure keeps the old hash.
func (s *service) upgradeHash(ctx context.Context, user *models.User, password string) {
	if !security.NeedsRehash(user.PasswordHash, s.argon) {
		return
	}
	hash, err := security.HashPassword(password, s.argon)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithUserID(ctx, user.ID.String()), "auth.rehash_failed: "+err.Error())
		}
		return
	}
	user.PasswordHash = hash
}

func normalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func optionalText(v *string) *string {
	if v == nil {
		return nil
	}
	if t := strings.TrimSpace(*v); t != "" {
		return &t
	}
	return nil
}
