package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techzonevn/storefront-backend/internal/pricing"
	"github.com/techzonevn/storefront-backend/pkg/db/models"
	"github.com/techzonevn/storefront-backend/pkg/enums"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
)

// Service resolves profile data and loyalty tiers for users.
type Service interface {
	Profile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	TierOf(ctx context.Context, userID uuid.UUID) (enums.CustomerTier, error)
}

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type service struct {
	repo  userReader
	tiers pricing.TierPolicy
}

// NewService builds the users service.
func NewService(repo userReader, tiers pricing.TierPolicy) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{repo: repo, tiers: tiers}, nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := &ProfileDTO{
		UserDTO:       FromModel(user),
		Tier:          s.tiers.TierFor(user.LifetimeSpend),
		LifetimeSpend: user.LifetimeSpend,
	}
	if next, remaining, ok := s.tiers.NextTier(user.LifetimeSpend); ok {
		profile.NextTier = &next
		profile.AmountToNextTier = &remaining
	}
	return profile, nil
}

func (s *service) TierOf(ctx context.Context, userID uuid.UUID) (enums.CustomerTier, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.tiers.TierFor(user.LifetimeSpend), nil
}
