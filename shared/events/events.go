package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ordermesh/order-system/shared/models"
)

// EventType names one entry of the closed saga event catalog.
type EventType string

// The full catalog. Every event a service publishes or routes must be one of
// these; routers drop anything outside the set.
const (
	// Forward chain
	OrderCreated         EventType = "OrderCreated"
	ItemReserved         EventType = "ItemReserved"
	ItemDescribed        EventType = "ItemDescribed"
	CustomerDescribed    EventType = "CustomerDescribed"
	DeliveryEstimated    EventType = "DeliveryEstimated"
	PaymentMade          EventType = "PaymentMade"
	ItemRemoved          EventType = "ItemRemoved"
	DeliveryStarted      EventType = "DeliveryStarted"
	Delivered            EventType = "Delivered"
	DeliveryWasDelivered EventType = "DeliveryWasDelivered"
	OrderDelivered       EventType = "OrderDelivered"

	// Failure and compensation chain
	ItemNotAvailable    EventType = "ItemNotAvailable"
	PaymentFailed       EventType = "PaymentFailed"
	ItemUnreserved      EventType = "ItemUnreserved"
	OrderCanceled       EventType = "OrderCanceled"
	ItemReturned        EventType = "ItemReturned"
	PaymentCanceled     EventType = "PaymentCanceled"
	DeliveryWasCanceled EventType = "DeliveryWasCanceled"
)

// Catalog lists every known event type, in saga order where one exists.
var Catalog = []EventType{
	OrderCreated, ItemReserved, ItemDescribed, CustomerDescribed,
	DeliveryEstimated, PaymentMade, ItemRemoved, DeliveryStarted,
	Delivered, DeliveryWasDelivered, OrderDelivered,
	ItemNotAvailable, PaymentFailed, ItemUnreserved,
	OrderCanceled, ItemReturned, PaymentCanceled, DeliveryWasCanceled,
}

func (t EventType) String() string {
	return string(t)
}

// Known reports whether t belongs to the catalog.
func (t EventType) Known() bool {
	for _, k := range Catalog {
		if k == t {
			return true
		}
	}
	return false
}

// Detail is the saga payload. It starts as the original request fields and is
// progressively enriched: each service fills in its own snapshot and leaves
// the rest untouched.
type Detail struct {
	OrderID    models.ID     `json:"orderId,omitempty"`
	CustomerID models.ID     `json:"customerId,omitempty"`
	ItemID     models.ID     `json:"itemId,omitempty"`
	Address    string        `json:"address,omitempty"`
	Total      *models.Money `json:"total,omitempty"`

	Item     *models.ItemSnapshot     `json:"item,omitempty"`
	Customer *models.CustomerSnapshot `json:"customer,omitempty"`
	Delivery *models.DeliverySnapshot `json:"delivery,omitempty"`
	Payment  *models.PaymentSnapshot  `json:"payment,omitempty"`
	Order    *models.OrderSnapshot    `json:"order,omitempty"`
}

// Metadata carries transport bookkeeping (receipt handles, message IDs). It is
// never part of the business payload.
type Metadata map[string]string

func (m Metadata) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m Metadata) Set(key, value string) {
	m[key] = value
}

func (m Metadata) Clone() Metadata {
	clone := make(Metadata, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}

// Event is the bus envelope: who published it, which catalog entry it is, and
// the enriched saga detail. ID is the deduplication key.
type Event struct {
	ID         models.ID `json:"id"`
	Source     string    `json:"source"`
	DetailType EventType `json:"detailType"`
	Detail     Detail    `json:"detail"`
	Timestamp  time.Time `json:"timestamp"`
	Metadata   Metadata  `json:"metadata,omitempty"`
}

// New creates an event with a fresh ID and timestamp.
func New(source string, detailType EventType, detail Detail) *Event {
	return &Event{
		ID:         models.GenerateUUID(),
		Source:     source,
		DetailType: detailType,
		Detail:     detail,
		Timestamp:  time.Now(),
		Metadata:   make(Metadata),
	}
}

// ToJSON converts event to JSON
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON creates event from JSON
func FromJSON(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	if event.Metadata == nil {
		event.Metadata = make(Metadata)
	}
	return &event, nil
}

// Publisher publishes events
type Publisher interface {
	Publish(ctx context.Context, events ...*Event) error
}

// Handler handles bus events
type Handler interface {
	HandlerID() string
	Handle(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event *Event) error
