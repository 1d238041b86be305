package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techzonevn/storefront-backend/pkg/config"
	"github.com/techzonevn/storefront-backend/pkg/db/models"
	"github.com/techzonevn/storefront-backend/pkg/enums"
	"github.com/techzonevn/storefront-backend/pkg/outbox"
	"github.com/techzonevn/storefront-backend/pkg/outbox/payloads"
)

func testRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{OrdersTopic: "sf-orders", CatalogTopic: "sf-catalog"})
	require.NoError(t, err)
	return reg
}

// wrap puts data into an envelope the way outbox.Service.Emit does.
func wrap(t *testing.T, data any) json.RawMessage {
	t.Helper()
	raw, ok := data.(json.RawMessage)
	if !ok {
		var err error
		raw, err = json.Marshal(data)
		require.NoError(t, err)
	}
	env, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    outbox.EnvelopeVersion,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	})
	require.NoError(t, err)
	return env
}

func row(t *testing.T, typ enums.OutboxEventType, agg enums.OutboxAggregateType, data any) models.OutboxEvent {
	return models.OutboxEvent{EventType: typ, AggregateType: agg, AggregateID: uuid.New(), Payload: wrap(t, data)}
}

func TestResolveOrderCreated(t *testing.T) {
	orderID := uuid.New()
	event := row(t, enums.EventOrderCreated, enums.AggregateOrder, payloads.OrderCreatedEvent{
		OrderID:     orderID,
		OrderNumber: "TZ241111123456",
		Total:       825_000,
		Items:       []payloads.OrderLine{{ProductID: uuid.New(), Name: "iPhone 15", Qty: 1, UnitPrice: 825_000, LineTotal: 825_000}},
	})

	resolved, err := testRegistry(t).Resolve(event)
	require.NoError(t, err)

	assert.Equal(t, "sf-orders", resolved.Descriptor.Topic)
	assert.NotEmpty(t, resolved.Envelope.EventID)
	assert.False(t, resolved.Envelope.OccurredAt.IsZero())
	payload, ok := resolved.Payload.(*payloads.OrderCreatedEvent)
	require.True(t, ok, "payload type %T", resolved.Payload)
	assert.Equal(t, orderID, payload.OrderID)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, int64(825_000), payload.Items[0].UnitPrice)
}

func TestCatalogEventsShareATopic(t *testing.T) {
	reg := testRegistry(t)

	promo, err := reg.Resolve(row(t, enums.EventPromotionChanged, enums.AggregatePromotion, payloads.PromotionChangedEvent{
		Action:          payloads.PromotionActionCreated,
		Scope:           enums.PromotionScopeGlobal,
		DiscountPercent: 10,
	}))
	require.NoError(t, err)
	stock, err := reg.Resolve(row(t, enums.EventStockDepleted, enums.AggregateProduct, payloads.StockDepletedEvent{}))
	require.NoError(t, err)

	assert.Equal(t, "sf-catalog", promo.Descriptor.Topic)
	assert.Equal(t, "sf-catalog", stock.Descriptor.Topic)
	assert.IsType(t, &payloads.PromotionChangedEvent{}, promo.Payload)
	assert.Equal(t, []string{"sf-catalog", "sf-orders"}, reg.Topics())
}

func TestResolveFailuresAreNonRetryable(t *testing.T) {
	reg := testRegistry(t)
	empty := json.RawMessage(`{}`)

	badID, err := json.Marshal(outbox.PayloadEnvelope{Version: 1, EventID: "evt-1", Data: empty})
	require.NoError(t, err)

	noAggregate := row(t, enums.EventOrderCreated, enums.AggregateOrder, empty)
	noAggregate.AggregateID = uuid.Nil

	cases := map[string]models.OutboxEvent{
		"unknown event type":  row(t, "coupon_redeemed", enums.AggregateOrder, empty),
		"aggregate mismatch":  row(t, enums.EventOrderCreated, enums.AggregateProduct, empty),
		"missing aggregate":   noAggregate,
		"null data":           row(t, enums.EventOrderCreated, enums.AggregateOrder, json.RawMessage("null")),
		"wrong payload shape": row(t, enums.EventOrderCreated, enums.AggregateOrder, json.RawMessage(`{"total_amount":"lots"}`)),
		"truncated envelope": {
			EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(),
			Payload: json.RawMessage(`{"version":`),
		},
		"non-uuid event id": {
			EventType: enums.EventStockDepleted, AggregateType: enums.AggregateProduct, AggregateID: uuid.New(),
			Payload: badID,
		},
	}
	for name, event := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Resolve(event)
			var permanent NonRetryableError
			assert.True(t, errors.As(err, &permanent), "got %v", err)
		})
	}
}

func TestNewEventRegistryRequiresTopics(t *testing.T) {
	_, err := NewEventRegistry(config.PubSubConfig{CatalogTopic: "c"})
	assert.ErrorContains(t, err, "orders topic")
	_, err = NewEventRegistry(config.PubSubConfig{OrdersTopic: "o"})
	assert.ErrorContains(t, err, "catalog topic")
}
