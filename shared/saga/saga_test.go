package saga

import (
	"context"
	"testing"

	"github.com/ordermesh/order-system/shared/events"
	"github.com/ordermesh/order-system/shared/events/eventstest"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishOutcome_SuccessPublishesOK(t *testing.T) {
	pub := eventstest.NewCapturingPublisher()

	err := PublishOutcome(context.Background(), pub, "inventory-service",
		events.ItemReserved, events.ItemNotAvailable, events.Detail{ItemID: "I1"}, nil)

	require.NoError(t, err)
	require.Len(t, pub.Events(), 1)
	assert.Equal(t, events.ItemReserved, pub.Last().DetailType)
	assert.Equal(t, "inventory-service", pub.Last().Source)
}

func TestPublishOutcome_BusinessOutcomePublishesKO(t *testing.T) {
	pub := eventstest.NewCapturingPublisher()

	err := PublishOutcome(context.Background(), pub, "inventory-service",
		events.ItemReserved, events.ItemNotAvailable, events.Detail{ItemID: "I1"},
		errors.Wrap(ledger.ErrConditionNotMet, "no stock"))

	require.NoError(t, err)
	require.Len(t, pub.Events(), 1)
	assert.Equal(t, events.ItemNotAvailable, pub.Last().DetailType)
}

func TestPublishOutcome_BusinessOutcomeWithoutKOIsSwallowed(t *testing.T) {
	pub := eventstest.NewCapturingPublisher()

	err := PublishOutcome(context.Background(), pub, "customer-service",
		events.CustomerDescribed, "", events.Detail{CustomerID: "C1"}, ledger.ErrNotFound)

	require.NoError(t, err)
	assert.Empty(t, pub.Events())
}

func TestPublishOutcome_InfrastructureFaultPropagates(t *testing.T) {
	pub := eventstest.NewCapturingPublisher()
	fault := errors.New("connection refused")

	err := PublishOutcome(context.Background(), pub, "payment-service",
		events.PaymentMade, events.PaymentFailed, events.Detail{}, fault)

	require.Error(t, err)
	assert.Equal(t, fault, err)
	assert.Empty(t, pub.Events())
}

func TestPublishOutcome_PublisherErrorPropagates(t *testing.T) {
	pub := eventstest.NewCapturingPublisher()
	pub.Err = errors.New("bus unavailable")

	err := PublishOutcome(context.Background(), pub, "inventory-service",
		events.ItemReserved, events.ItemNotAvailable, events.Detail{}, nil)

	assert.Error(t, err)
}
