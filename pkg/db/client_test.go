package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/techzonevn/storefront-backend/pkg/config"
	"github.com/techzonevn/storefront-backend/pkg/logger"
)

type sku struct {
	ID   int
	Code string
}

func memoryClient(t *testing.T) *Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())),
		&gorm.Config{SkipDefaultTransaction: true, Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&sku{}))
	t.Cleanup(func() {
		if pool, err := conn.DB(); err == nil {
			_ = pool.Close()
		}
	})
	return FromGorm(conn)
}

func skuCount(t *testing.T, c *Client) int64 {
	t.Helper()
	var n int64
	require.NoError(t, c.DB().Model(&sku{}).Count(&n).Error)
	return n
}

func TestWithTx(t *testing.T) {
	c := memoryClient(t)
	ctx := context.Background()
	insert := func(code string) func(*gorm.DB) error {
		return func(tx *gorm.DB) error { return tx.Create(&sku{Code: code}).Error }
	}

	require.NoError(t, c.WithTx(ctx, insert("IP15-128-BLK")))
	assert.Equal(t, int64(1), skuCount(t, c))

	failed := errors.New("stock check failed")
	err := c.WithTx(ctx, func(tx *gorm.DB) error {
		require.NoError(t, insert("IP15-256-BLU")(tx))
		return failed
	})
	assert.ErrorIs(t, err, failed)
	assert.Equal(t, int64(1), skuCount(t, c), "error rolls back")

	assert.Panics(t, func() {
		_ = c.WithTx(ctx, func(tx *gorm.DB) error {
			require.NoError(t, insert("S24-512-GRY")(tx))
			panic("mid-transaction")
		})
	})
	assert.Equal(t, int64(1), skuCount(t, c), "panic rolls back")
}

func TestPingAndClose(t *testing.T) {
	c := memoryClient(t)
	require.NoError(t, c.Ping(context.Background()))
	require.NoError(t, c.Close())
	assert.Error(t, c.Ping(context.Background()))
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{}, nil)
	assert.ErrorContains(t, err, "DSN")
}

func TestSQLLogger(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, gormlogger.Discard, sqlLogger(ctx, config.DBConfig{}, logger.New(logger.Options{ServiceName: "test"})))
	assert.Equal(t, gormlogger.Discard, sqlLogger(ctx, config.DBConfig{SlowQueryThreshold: 1}, nil))
	assert.NotEqual(t, gormlogger.Discard, sqlLogger(ctx, config.DBConfig{SlowQueryThreshold: 1}, logger.New(logger.Options{ServiceName: "test"})))
}

func TestIsUniqueViolation(t *testing.T) {
	pgUnique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "ux_users_email"})

	cases := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"sqlite any", errors.New("UNIQUE constraint failed: users.email"), "", true},
		{"postgres text", errors.New(`duplicate key value violates unique constraint "ux_orders_number"`), "ux_orders_number", true},
		{"postgres typed", pgUnique, "ux_users_email", true},
		{"other constraint", pgUnique, "products_slug_key", false},
		{"foreign key", &pgconn.PgError{Code: "23503"}, "", false},
		{"nil", nil, "", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsUniqueViolation(tc.err, tc.constraint), tc.name)
	}

	assert.True(t, IsNotFound(fmt.Errorf("load: %w", gorm.ErrRecordNotFound)))
	assert.False(t, IsNotFound(errors.New("timeout")))
}
