package events

import (
	"context"
	"testing"

	"github.com/ordermesh/order-system/shared/dedup"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRouter_Handle_DispatchesKnownEvent(t *testing.T) {
	var handled []*Event
	router := NewRouter("test-service", map[EventType]HandlerFunc{
		OrderCreated: func(ctx context.Context, event *Event) error {
			handled = append(handled, event)
			return nil
		},
	}, zap.NewNop())

	event := New("order-service", OrderCreated, Detail{OrderID: "1700000000000"})
	err := router.Handle(context.Background(), event)

	assert.NoError(t, err)
	assert.Len(t, handled, 1)
	assert.Equal(t, event.ID, handled[0].ID)
}

func TestRouter_Handle_DropsUnknownEvent(t *testing.T) {
	called := false
	router := NewRouter("test-service", map[EventType]HandlerFunc{
		OrderCreated: func(ctx context.Context, event *Event) error {
			called = true
			return nil
		},
	}, zap.NewNop())

	err := router.Handle(context.Background(), New("somewhere", "SomethingElse", Detail{}))

	assert.NoError(t, err)
	assert.False(t, called)
}

func TestRouter_Handle_DropsDuplicateEvent(t *testing.T) {
	calls := 0
	router := NewRouter("test-service", map[EventType]HandlerFunc{
		OrderCreated: func(ctx context.Context, event *Event) error {
			calls++
			return nil
		},
	}, zap.NewNop(), WithDedup(dedup.NewMemoryStore()))

	event := New("order-service", OrderCreated, Detail{})

	assert.NoError(t, router.Handle(context.Background(), event))
	assert.NoError(t, router.Handle(context.Background(), event))
	assert.Equal(t, 1, calls)
}

func TestRouter_Handle_DistinctEventsBothDispatch(t *testing.T) {
	calls := 0
	router := NewRouter("test-service", map[EventType]HandlerFunc{
		OrderCreated: func(ctx context.Context, event *Event) error {
			calls++
			return nil
		},
	}, zap.NewNop(), WithDedup(dedup.NewMemoryStore()))

	assert.NoError(t, router.Handle(context.Background(), New("order-service", OrderCreated, Detail{})))
	assert.NoError(t, router.Handle(context.Background(), New("order-service", OrderCreated, Detail{})))
	assert.Equal(t, 2, calls)
}

func TestRouter_Handle_SharedStoreStillReachesEveryConsumer(t *testing.T) {
	store := dedup.NewMemoryStore()
	handled := map[string]int{}
	handlerFor := func(id string) map[EventType]HandlerFunc {
		return map[EventType]HandlerFunc{
			PaymentMade: func(ctx context.Context, event *Event) error {
				handled[id]++
				return nil
			},
		}
	}

	inventory := NewRouter("inventory-service", handlerFor("inventory-service"), zap.NewNop(), WithDedup(store))
	order := NewRouter("order-service", handlerFor("order-service"), zap.NewNop(), WithDedup(store))

	// One event fans out to both services; a shared redis must not make the
	// second consumer mistake its own copy for a duplicate.
	event := New("payment-service", PaymentMade, Detail{OrderID: "1700000000000"})

	assert.NoError(t, inventory.Handle(context.Background(), event))
	assert.NoError(t, order.Handle(context.Background(), event))
	assert.Equal(t, 1, handled["inventory-service"])
	assert.Equal(t, 1, handled["order-service"])
}

func TestRouter_Handle_RedeliveryAfterHandlerFailureIsProcessed(t *testing.T) {
	calls := 0
	router := NewRouter("inventory-service", map[EventType]HandlerFunc{
		OrderCreated: func(ctx context.Context, event *Event) error {
			calls++
			if calls == 1 {
				return errors.New("database unreachable")
			}
			return nil
		},
	}, zap.NewNop(), WithDedup(dedup.NewMemoryStore()))

	event := New("order-service", OrderCreated, Detail{OrderID: "1700000000000"})

	// First delivery fails in the handler; the bus redelivers, and that
	// redelivery must run the handler again rather than be dropped as a
	// duplicate of an attempt that committed nothing.
	assert.Error(t, router.Handle(context.Background(), event))
	assert.NoError(t, router.Handle(context.Background(), event))
	assert.Equal(t, 2, calls)

	// A redelivery after the successful run is a real duplicate.
	assert.NoError(t, router.Handle(context.Background(), event))
	assert.Equal(t, 2, calls)
}

func TestRouter_Handle_WrapsHandlerError(t *testing.T) {
	router := NewRouter("test-service", map[EventType]HandlerFunc{
		PaymentMade: func(ctx context.Context, event *Event) error {
			return errors.New("database unreachable")
		},
	}, zap.NewNop())

	err := router.Handle(context.Background(), New("payment-service", PaymentMade, Detail{}))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "PaymentMade")
	assert.Contains(t, err.Error(), "database unreachable")
}

func TestRouter_Handles(t *testing.T) {
	router := NewRouter("test-service", map[EventType]HandlerFunc{
		OrderCreated: func(ctx context.Context, event *Event) error { return nil },
		PaymentMade:  func(ctx context.Context, event *Event) error { return nil },
	}, zap.NewNop())

	types := router.Handles()

	assert.ElementsMatch(t, []EventType{OrderCreated, PaymentMade}, types)
	for _, et := range types {
		assert.True(t, et.Known())
	}
}
