package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techzonevn/storefront-backend/internal/pricing"
	"github.com/techzonevn/storefront-backend/internal/testsupport"
	"github.com/techzonevn/storefront-backend/pkg/enums"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
)

func TestRepositoryCreateAndLookup(t *testing.T) {
	repo := NewRepository(testsupport.OpenSQLite(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, NewUser{
		Email:        "lan.nguyen@example.vn",
		PasswordHash: "hash",
		FullName:     "Nguyễn Thị Lan",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleCustomer, user.Role)
	assert.True(t, user.IsActive)

	found, err := repo.FindByEmail(ctx, "LAN.NGUYEN@example.vn")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	require.NoError(t, repo.AddLifetimeSpend(ctx, user.ID, 2_500_000))
	require.NoError(t, repo.AddLifetimeSpend(ctx, user.ID, 2_500_000))
	found, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5_000_000), found.LifetimeSpend)

	assert.Error(t, repo.AddLifetimeSpend(ctx, uuid.New(), 1))

	count, err := repo.CountCreatedBetween(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestServiceProfileIncludesTierProgress(t *testing.T) {
	repo := NewRepository(testsupport.OpenSQLite(t))
	ctx := context.Background()
	user, err := repo.Create(ctx, NewUser{Email: "minh@example.vn", PasswordHash: "hash", FullName: "Trần Minh"})
	require.NoError(t, err)
	require.NoError(t, repo.AddLifetimeSpend(ctx, user.ID, 21_000_000))

	svc, err := NewService(repo, pricing.DefaultTierPolicy)
	require.NoError(t, err)

	profile, err := svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CustomerTierGold, profile.Tier)
	require.NotNil(t, profile.NextTier)
	assert.Equal(t, enums.CustomerTierDiamond, *profile.NextTier)
	assert.Equal(t, int64(29_000_000), *profile.AmountToNextTier)

	tier, err := svc.TierOf(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CustomerTierGold, tier)

	_, err = svc.Profile(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
