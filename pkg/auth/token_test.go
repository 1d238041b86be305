package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techzonevn/storefront-backend/pkg/config"
	"github.com/techzonevn/storefront-backend/pkg/enums"
)

var testCfg = config.JWTConfig{Secret: "s3cret", Issuer: "storefront", ExpirationMinutes: 30}

func TestMintThenParse(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	userID := uuid.New()

	token, err := MintAccessToken(testCfg, now, AccessTokenPayload{UserID: userID, Role: enums.UserRoleAdmin, JTI: " jti-123 "})
	require.NoError(t, err)

	claims, err := ParseAccessToken(testCfg, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, enums.UserRoleAdmin, claims.Role)
	assert.Equal(t, "jti-123", claims.ID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "storefront", claims.Issuer)
	assert.Equal(t, now.Add(30*time.Minute), claims.ExpiresAt.Time.UTC())
}

func TestMintGeneratesJTI(t *testing.T) {
	token, err := MintAccessToken(testCfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer})
	require.NoError(t, err)
	claims, err := ParseAccessToken(testCfg, token)
	require.NoError(t, err)
	_, err = uuid.Parse(claims.ID)
	assert.NoError(t, err)
}

func TestMintValidation(t *testing.T) {
	valid := AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer}
	cases := map[string]struct {
		cfg     config.JWTConfig
		payload AccessTokenPayload
	}{
		"no secret":  {config.JWTConfig{Issuer: "storefront", ExpirationMinutes: 5}, valid},
		"no issuer":  {config.JWTConfig{Secret: "s", ExpirationMinutes: 5}, valid},
		"no ttl":     {config.JWTConfig{Secret: "s", Issuer: "storefront"}, valid},
		"no user":    {testCfg, AccessTokenPayload{Role: enums.UserRoleCustomer}},
		"empty role": {testCfg, AccessTokenPayload{UserID: uuid.New()}},
	}
	for name, tc := range cases {
		_, err := MintAccessToken(tc.cfg, time.Now(), tc.payload)
		assert.Error(t, err, name)
	}
}

func TestParseRejections(t *testing.T) {
	good, err := MintAccessToken(testCfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer})
	require.NoError(t, err)

	otherIssuer := testCfg
	otherIssuer.Issuer = "someone-else"
	_, err = ParseAccessToken(otherIssuer, good)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	_, err = ParseAccessToken(testCfg, good+"x")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"iss": "storefront"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseAccessToken(testCfg, none)
	assert.Error(t, err, "alg=none must be refused")

	noRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "storefront", "user_id": uuid.NewString(), "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testCfg.Secret))
	require.NoError(t, err)
	_, err = ParseAccessToken(testCfg, noRole)
	assert.Error(t, err)
}

func TestExpiredTokenOnlyReadableForRefresh(t *testing.T) {
	token, err := MintAccessToken(testCfg, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer})
	require.NoError(t, err)

	_, err = ParseAccessToken(testCfg, token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	claims, err := ParseAccessTokenAllowExpired(testCfg, token)
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleCustomer, claims.Role)
}

func TestSkewWithinLeewayAccepted(t *testing.T) {
	cfg := testCfg
	cfg.ExpirationMinutes = 1
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Minute-10*time.Second), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer})
	require.NoError(t, err)
	_, err = ParseAccessToken(cfg, token)
	assert.NoError(t, err)
}
