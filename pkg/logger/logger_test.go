package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestContextFieldsAccumulate(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "api", Level: zerolog.DebugLevel, Format: "json", Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithFields(ctx, map[string]any{"sku": "IP15-128", "qty": 2})
	log.Error(log.WithOrderID(ctx, "order-9"), "order.failed", errors.New("out of stock"))
	log.Info(ctx, "order.retry")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "api", first["service"])
	assert.Equal(t, "req-123", first[FieldRequestID])
	assert.Equal(t, "order-9", first[FieldOrderID])
	assert.Equal(t, "IP15-128", first["sku"])
	assert.Equal(t, "out of stock", first["error"])
	assert.NotEmpty(t, first["stack"])

	_, leaked := entries[1][FieldOrderID]
	assert.False(t, leaked, "fields added to a derived context stay there")
	assert.Equal(t, "req-123", entries[1][FieldRequestID])
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "worker", Level: ParseLevel("warn"), Format: "json", Output: buf})

	log.Debug(context.Background(), "quiet")
	log.Info(context.Background(), "quiet")
	assert.Zero(t, buf.Len())

	log.Warn(context.Background(), "loud")
	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	_, hasStack := entries[0]["stack"]
	assert.False(t, hasStack, "warn stacks are opt-in")
}

func TestWarnStackOptIn(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "worker", WarnStack: true, Format: "json", Output: buf})
	log.Warn(context.Background(), "slow query")
	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0]["stack"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
}
