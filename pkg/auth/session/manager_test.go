package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techzonevn/storefront-backend/pkg/config"
	"github.com/techzonevn/storefront-backend/pkg/redis"
)

type memoryStore struct {
	data   map[string]string
	getErr error
}

func newMemoryStore() *memoryStore { return &memoryStore{data: map[string]string{}} }

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", redis.ErrCacheMiss
	}
	return v, nil
}

func (m *memoryStore) GetDel(ctx context.Context, key string) (string, error) {
	v, err := m.Get(ctx, key)
	delete(m.data, key)
	return v, err
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryStore) AccessSessionKey(accessID string) string { return "sess:" + accessID }

var testJWT = config.JWTConfig{ExpirationMinutes: 15, RefreshTokenTTLMinutes: 60}

func newTestManager(t *testing.T) (*Manager, *memoryStore) {
	t.Helper()
	s := newMemoryStore()
	m, err := newManager(s, testJWT)
	require.NoError(t, err)
	return m, s
}

func TestGenerateStoresDigestOnly(t *testing.T) {
	m, s := newTestManager(t)

	token, err := m.Generate(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.NotEqual(t, token, s.data["sess:jti-1"])
	assert.Equal(t, digest(token), s.data["sess:jti-1"])

	_, err = m.Generate(context.Background(), " ")
	assert.Error(t, err)
}

func TestRotateIssuesNewSession(t *testing.T) {
	m, s := newTestManager(t)
	ctx := context.Background()
	token, err := m.Generate(ctx, "jti-1")
	require.NoError(t, err)

	newID, newToken, err := m.Rotate(ctx, "jti-1", token)
	require.NoError(t, err)
	assert.NotEqual(t, "jti-1", newID)
	assert.NotContains(t, s.data, "sess:jti-1")
	assert.Equal(t, digest(newToken), s.data["sess:"+newID])

	_, _, err = m.Rotate(ctx, "jti-1", token)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken, "a refresh token works once")
}

func TestRotateWithWrongTokenEndsSession(t *testing.T) {
	m, s := newTestManager(t)
	ctx := context.Background()
	_, err := m.Generate(ctx, "jti-1")
	require.NoError(t, err)

	_, _, err = m.Rotate(ctx, "jti-1", "forged")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	assert.Empty(t, s.data)

	ok, err := m.HasSession(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasSessionAndRevoke(t *testing.T) {
	m, s := newTestManager(t)
	ctx := context.Background()
	_, err := m.Generate(ctx, "jti-1")
	require.NoError(t, err)

	ok, err := m.HasSession(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Revoke(ctx, "jti-1"))
	ok, err = m.HasSession(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)

	s.getErr = errors.New("redis down")
	_, err = m.HasSession(ctx, "jti-1")
	assert.Error(t, err)
}

func TestNewManagerValidatesTTL(t *testing.T) {
	_, err := newManager(newMemoryStore(), config.JWTConfig{ExpirationMinutes: 60, RefreshTokenTTLMinutes: 30})
	assert.Error(t, err)
	_, err = newManager(newMemoryStore(), config.JWTConfig{ExpirationMinutes: 15})
	assert.Error(t, err)
	_, err = NewManager(nil, testJWT)
	assert.Error(t, err)
}
