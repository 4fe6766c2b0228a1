// Package events defines the versioned envelope published for order
// lifecycle milestones. Consumers live outside this service (analytics,
// notifications); nothing in the checkout path depends on them.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated  = "OrderCreated"
	EventRouteAssigned = "OrderRouteAssigned"
)

const (
	TopicOrderCreated  = "order.created"
	TopicRouteAssigned = "order.route.assigned"
)

// PartitionKey keeps all events of one order on one partition so their
// order is preserved.
func PartitionKey(orderID int64) []byte {
	return []byte(EncodeID(orderID))
}

func EncodeID(orderID int64) string {
	b, _ := json.Marshal(orderID)
	return string(b)
}

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

func NewEnvelope(eventType, producer, correlationID string, payload any) Envelope {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}
}

type ItemLine struct {
	DishID    int64           `json:"dish_id"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
}

type OrderCreatedPayload struct {
	OrderID         int64           `json:"order_id"`
	OrderRef        string          `json:"order_ref"`
	UserID          int64           `json:"user_id"`
	ProviderID      int64           `json:"provider_id,omitempty"`
	Total           decimal.Decimal `json:"total"`
	DeliveryAddress string          `json:"delivery_address"`
	Items           []ItemLine      `json:"items"`
}

type RouteAssignedPayload struct {
	RouteID  int64   `json:"route_id"`
	OrderIDs []int64 `json:"order_ids"`
}
