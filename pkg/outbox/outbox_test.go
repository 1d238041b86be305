package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/techzonevn/storefront-backend/pkg/db/models"
	"github.com/techzonevn/storefront-backend/pkg/enums"
	"github.com/techzonevn/storefront-backend/pkg/outbox/payloads"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`
CREATE TABLE outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`).Error)
	require.NoError(t, conn.Exec(`
CREATE TABLE outbox_dlq (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload_json TEXT NOT NULL,
  error_reason TEXT NOT NULL,
  error_message TEXT,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  failed_at DATETIME,
  created_at DATETIME
);`).Error)
	return conn
}

func TestEmitWritesEnvelopeInTransaction(t *testing.T) {
	conn := setupOutboxTestDB(t)
	svc := NewService(NewRepository(conn), nil)
	productID := uuid.New()

	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventStockDepleted,
			AggregateType: enums.AggregateProduct,
			AggregateID:   productID,
			Data:          payloads.StockDepletedEvent{ProductID: productID, Name: "Galaxy S24", Slug: "galaxy-s24"},
		})
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, productID, rows[0].AggregateID)

	var env PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &env))
	assert.Equal(t, 1, env.Version)
	assert.NotEmpty(t, env.EventID)

	var data payloads.StockDepletedEvent
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "galaxy-s24", data.Slug)
}

func TestEmitRollsBackWithCaller(t *testing.T) {
	conn := setupOutboxTestDB(t)
	svc := NewService(NewRepository(conn), nil)

	boom := errors.New("order insert failed")
	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Data:          map[string]string{"k": "v"},
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestEmitValidatesInput(t *testing.T) {
	conn := setupOutboxTestDB(t)
	svc := NewService(NewRepository(conn), nil)

	assert.Error(t, svc.Emit(context.Background(), nil, DomainEvent{}))
	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{EventType: "nope", AggregateType: enums.AggregateOrder})
	})
	assert.Error(t, err)
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	conn := setupOutboxTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	first := models.OutboxEvent{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	second := models.OutboxEvent{EventType: enums.EventOrderStatusChanged, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	require.NoError(t, repo.Insert(conn, first))
	require.NoError(t, repo.Insert(conn, second))

	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NoError(t, repo.MarkPublishedTx(conn, rows[0].ID))
	require.NoError(t, repo.MarkFailedTx(conn, rows[1].ID, errors.New("unavailable")))

	pending, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	var failed models.OutboxEvent
	require.NoError(t, conn.First(&failed, "id = ?", rows[1].ID).Error)
	assert.Equal(t, 1, failed.AttemptCount)
	require.NotNil(t, failed.LastError)
	assert.Equal(t, "unavailable", *failed.LastError)

	require.NoError(t, repo.MarkTerminalTx(conn, failed.ID, errors.New("gave up"), 3))
	rows, err = repo.FetchUnpublishedForPublish(conn, 10, 3)
	require.NoError(t, err)
	assert.Empty(t, rows)

	dlq := NewDLQRepository(conn)
	msg := "gave up"
	require.NoError(t, dlq.InsertTx(conn, models.OutboxDLQ{
		EventID:       failed.ID,
		EventType:     failed.EventType,
		AggregateType: failed.AggregateType,
		AggregateID:   failed.AggregateID,
		Payload:       failed.Payload,
		ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
		ErrorMessage:  &msg,
		AttemptCount:  3,
	}))
	found, err := dlq.FindByEventID(ctx, failed.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, enums.OutboxDLQReasonMaxAttempts, found.ErrorReason)

	missing, err := dlq.FindByEventID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDecodeEnvelope(t *testing.T) {
	env, err := newEnvelope(payloads.PromotionChangedEvent{Action: payloads.PromotionActionUpdated}, nil, time.Time{})
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)

	decoded, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, env.EventID, decoded.EventID)
	assert.Equal(t, EnvelopeVersion, decoded.Version)
	assert.Equal(t, time.UTC, decoded.OccurredAt.Location())

	_, err = DecodeEnvelope([]byte(`{"eventId":"x","data":{}}`))
	assert.Error(t, err, "event id must be a uuid")

	_, err = DecodeEnvelope([]byte(`{"eventId":"` + uuid.NewString() + `","data":null}`))
	assert.ErrorIs(t, err, ErrEmptyData)

	_, err = DecodeEnvelope([]byte(`{`))
	assert.Error(t, err)
}

func TestClipKeepsRunesWhole(t *testing.T) {
	long := strings.Repeat("ư", lastErrorLimit)
	clipped := clip(long)
	assert.LessOrEqual(t, len(clipped), lastErrorLimit)
	assert.True(t, utf8.ValidString(clipped))
	assert.Equal(t, "short", clip("short"))
}
