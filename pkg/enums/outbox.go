package enums

import "slices"

// OutboxAggregateType maps to the aggregate_type column of outbox_events.
type OutboxAggregateType string

const (
	AggregateOrder     OutboxAggregateType = "order"
	AggregateProduct   OutboxAggregateType = "product"
	AggregatePromotion OutboxAggregateType = "promotion"
)

func (a OutboxAggregateType) IsValid() bool {
	return slices.Contains([]OutboxAggregateType{AggregateOrder, AggregateProduct, AggregatePromotion}, a)
}

// OutboxEventType maps to the event_type column of outbox_events. Order
// events go to the orders topic; the rest share the catalog topic.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
	EventStockDepleted      OutboxEventType = "stock_depleted"
	EventPromotionChanged   OutboxEventType = "promotion_changed"
)

func (e OutboxEventType) IsValid() bool {
	switch e {
	case EventOrderCreated, EventOrderStatusChanged, EventStockDepleted, EventPromotionChanged:
		return true
	}
	return false
}

// OutboxDLQErrorReason records why a row was moved to outbox_dlq.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

func (r OutboxDLQErrorReason) IsValid() bool {
	return r == OutboxDLQReasonMaxAttempts || r == OutboxDLQReasonNonRetryable
}
