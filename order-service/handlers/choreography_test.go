package handlers_test

import (
	"context"
	"sync"
	"testing"
	"time"

	customerapp "github.com/ordermesh/order-system/customer-service/application"
	customerdomain "github.com/ordermesh/order-system/customer-service/domain"
	customerhandlers "github.com/ordermesh/order-system/customer-service/handlers"
	deliveryapp "github.com/ordermesh/order-system/delivery-service/application"
	deliverydomain "github.com/ordermesh/order-system/delivery-service/domain"
	deliveryhandlers "github.com/ordermesh/order-system/delivery-service/handlers"
	inventoryapp "github.com/ordermesh/order-system/inventory-service/application"
	inventorydomain "github.com/ordermesh/order-system/inventory-service/domain"
	inventoryhandlers "github.com/ordermesh/order-system/inventory-service/handlers"
	orderapp "github.com/ordermesh/order-system/order-service/application"
	orderdomain "github.com/ordermesh/order-system/order-service/domain"
	orderhandlers "github.com/ordermesh/order-system/order-service/handlers"
	paymentapp "github.com/ordermesh/order-system/payment-service/application"
	paymentdomain "github.com/ordermesh/order-system/payment-service/domain"
	paymenthandlers "github.com/ordermesh/order-system/payment-service/handlers"
	"github.com/ordermesh/order-system/shared/events"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryBus delivers every published event to every router, in publish
// order, until the system is quiescent. It stands in for SNS fan-out plus
// one SQS queue per consumer: a failed dispatch is redelivered to that
// consumer alone, later, which is exactly the real retry model.
type memoryBus struct {
	mu        sync.Mutex
	queue     []busDelivery
	published []*events.Event
	routers   []*events.Router
}

type busDelivery struct {
	event    *events.Event
	routers  []*events.Router
	attempts int
}

func (b *memoryBus) Publish(_ context.Context, evts ...*events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range evts {
		b.queue = append(b.queue, busDelivery{event: e, routers: b.routers})
		b.published = append(b.published, e)
	}
	return nil
}

func (b *memoryBus) Run(ctx context.Context, t *testing.T) {
	t.Helper()
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.mu.Unlock()
			return
		}
		delivery := b.queue[0]
		b.queue = b.queue[1:]
		b.mu.Unlock()

		var failed []*events.Router
		for _, r := range delivery.routers {
			if err := r.Handle(ctx, delivery.event); err != nil {
				failed = append(failed, r)
			}
		}
		if len(failed) > 0 {
			require.Less(t, delivery.attempts, 10,
				"event %s still failing after redeliveries", delivery.event.DetailType)
			b.mu.Lock()
			b.queue = append(b.queue, busDelivery{
				event:    delivery.event,
				routers:  failed,
				attempts: delivery.attempts + 1,
			})
			b.mu.Unlock()
		}
	}
}

func (b *memoryBus) types() []events.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.EventType, len(b.published))
	for i, e := range b.published {
		out[i] = e.DetailType
	}
	return out
}

// In-memory ledgers with the same conditional-write semantics as the
// Postgres repositories.

type memItems struct {
	mu    sync.Mutex
	items map[models.ID]*inventorydomain.Item
}

func (s *memItems) get(itemID models.ID) (*inventorydomain.Item, bool) {
	item, ok := s.items[itemID]
	return item, ok
}

func (s *memItems) Find(_ context.Context, itemID models.ID) (*inventorydomain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.get(itemID)
	if !ok {
		return nil, ledger.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *memItems) Reserve(_ context.Context, itemID models.ID) (*inventorydomain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.get(itemID)
	if !ok || item.Available <= 0 {
		return nil, ledger.ErrConditionNotMet
	}
	item.Available--
	item.Reserved++
	copied := *item
	return &copied, nil
}

func (s *memItems) Unreserve(_ context.Context, itemID models.ID) (*inventorydomain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.get(itemID)
	if !ok || item.Reserved <= 0 {
		return nil, ledger.ErrConditionNotMet
	}
	item.Available++
	item.Reserved--
	copied := *item
	return &copied, nil
}

func (s *memItems) Remove(_ context.Context, itemID models.ID) (*inventorydomain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.get(itemID)
	if !ok || item.Reserved <= 0 {
		return nil, ledger.ErrConditionNotMet
	}
	item.Reserved--
	copied := *item
	return &copied, nil
}

func (s *memItems) Return(_ context.Context, itemID models.ID) (*inventorydomain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.get(itemID)
	if !ok {
		return nil, ledger.ErrConditionNotMet
	}
	item.Available++
	copied := *item
	return &copied, nil
}

type memPayments struct {
	mu       sync.Mutex
	payments map[models.ID]*paymentdomain.Payment
}

func (s *memPayments) Save(_ context.Context, payment *paymentdomain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *payment
	s.payments[payment.PaymentID] = &copied
	return nil
}

func (s *memPayments) Find(_ context.Context, paymentID models.ID) (*paymentdomain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.payments[paymentID]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	copied := *payment
	return &copied, nil
}

func (s *memPayments) Cancel(_ context.Context, paymentID models.ID) (*paymentdomain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.payments[paymentID]
	if !ok || payment.Status != paymentdomain.PaymentStatusPaid {
		return nil, ledger.ErrConditionNotMet
	}
	payment.Status = paymentdomain.PaymentStatusCanceled
	copied := *payment
	return &copied, nil
}

type memDeliveries struct {
	mu         sync.Mutex
	deliveries map[string]*deliverydomain.Delivery
}

func deliveryKey(customerID, orderID models.ID) string {
	return customerID.String() + "/" + orderID.String()
}

func (s *memDeliveries) Save(_ context.Context, delivery *deliverydomain.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *delivery
	s.deliveries[deliveryKey(delivery.CustomerID, delivery.OrderID)] = &copied
	return nil
}

func (s *memDeliveries) Find(_ context.Context, customerID, orderID models.ID) (*deliverydomain.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delivery, ok := s.deliveries[deliveryKey(customerID, orderID)]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	copied := *delivery
	return &copied, nil
}

func (s *memDeliveries) transition(customerID, orderID models.ID, to deliverydomain.DeliveryStatus) (*deliverydomain.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delivery, ok := s.deliveries[deliveryKey(customerID, orderID)]
	if !ok || delivery.Status != deliverydomain.DeliveryStatusDelivering {
		return nil, ledger.ErrConditionNotMet
	}
	delivery.Status = to
	copied := *delivery
	return &copied, nil
}

func (s *memDeliveries) Delivered(_ context.Context, customerID, orderID models.ID) (*deliverydomain.Delivery, error) {
	return s.transition(customerID, orderID, deliverydomain.DeliveryStatusDelivered)
}

func (s *memDeliveries) Cancel(_ context.Context, customerID, orderID models.ID) (*deliverydomain.Delivery, error) {
	return s.transition(customerID, orderID, deliverydomain.DeliveryStatusCanceled)
}

type memCustomers struct {
	customers map[models.ID]*customerdomain.Customer
}

func (s *memCustomers) Find(_ context.Context, customerID models.ID) (*customerdomain.Customer, error) {
	customer, ok := s.customers[customerID]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	copied := *customer
	return &copied, nil
}

type memOrders struct {
	mu     sync.Mutex
	orders map[string]*orderdomain.Order
}

func orderKey(customerID, orderID models.ID) string {
	return customerID.String() + "/" + orderID.String()
}

func (s *memOrders) Store(_ context.Context, order *orderdomain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := orderKey(order.CustomerID, order.OrderID)
	if _, ok := s.orders[key]; ok {
		return errors.New("order already stored")
	}
	copied := *order
	s.orders[key] = &copied
	return nil
}

func (s *memOrders) Find(_ context.Context, customerID, orderID models.ID) (*orderdomain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderKey(customerID, orderID)]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *memOrders) UpdateStatus(_ context.Context, customerID, orderID models.ID, to orderdomain.OrderStatus, now time.Time, from ...orderdomain.OrderStatus) (*orderdomain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderKey(customerID, orderID)]
	if !ok {
		return nil, ledger.ErrConditionNotMet
	}
	if len(from) > 0 {
		allowed := false
		for _, f := range from {
			if order.Status == f {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, ledger.ErrConditionNotMet
		}
	}
	order.Status = to
	order.UpdateDate = now
	copied := *order
	return &copied, nil
}

// fixedRouting resolves any address and routes with a constant duration.
type fixedRouting struct {
	durationSeconds float64
}

func (r *fixedRouting) ResolvePlace(_ context.Context, address string) (deliverydomain.Place, error) {
	return deliverydomain.Place{Longitude: float64(len(address)), Latitude: 51.5}, nil
}

func (r *fixedRouting) CalculateRoute(_ context.Context, _, _ deliverydomain.Place) (deliverydomain.RouteSummary, error) {
	return deliverydomain.RouteSummary{DurationSeconds: r.durationSeconds}, nil
}

// system wires all five services over an in-memory bus and in-memory
// ledgers.
type system struct {
	bus        *memoryBus
	items      *memItems
	payments   *memPayments
	deliveries *memDeliveries
	orders     *memOrders

	createOrder      *orderapp.CreateOrder
	cancelOrder      *orderapp.CancelOrder
	confirmDelivered *orderapp.ConfirmDelivered
}

func newSystem(t *testing.T, random func() float64) *system {
	bus := &memoryBus{}
	log := zap.NewNop()

	items := &memItems{items: map[models.ID]*inventorydomain.Item{
		"I1": {ItemID: "I1", Available: 5, Reserved: 0, Price: models.NewMoney(2500, "USD")},
	}}
	payments := &memPayments{payments: map[models.ID]*paymentdomain.Payment{}}
	deliveries := &memDeliveries{deliveries: map[string]*deliverydomain.Delivery{}}
	customers := &memCustomers{customers: map[models.ID]*customerdomain.Customer{
		"C1": {CustomerID: "C1", Name: "Sherlock Holmes", Address: "221B Baker Street, London"},
	}}
	orders := &memOrders{orders: map[string]*orderdomain.Order{}}

	inventoryRouter := inventoryhandlers.NewInventoryEventHandlers(
		inventoryapp.NewDescribeItem(items),
		inventoryapp.NewReserveItem(items),
		inventoryapp.NewUnreserveItem(items),
		inventoryapp.NewRemoveItem(items),
		inventoryapp.NewReturnItem(items),
		bus,
	).Router(log)

	customerRouter := customerhandlers.NewCustomerEventHandlers(
		customerapp.NewDescribeCustomer(customers),
		bus,
	).Router(log)

	estimate := deliveryapp.NewEstimateDelivery(&fixedRouting{durationSeconds: 1800}, "60 Holborn Viaduct, London", "USD")
	deliveryRouter := deliveryhandlers.NewDeliveryEventHandlers(
		estimate,
		deliveryapp.NewStartDelivery(deliveries, estimate),
		deliveryapp.NewCompleteDelivery(deliveries),
		deliveryapp.NewCancelDelivery(deliveries),
		bus,
	).Router(log)

	paymentRouter := paymenthandlers.NewPaymentEventHandlers(
		paymentapp.NewMakePayment(payments, 0.2, paymentapp.WithRandom(random)),
		paymentapp.NewCancelPayment(payments),
		bus,
	).Router(log)

	orderRouter := orderhandlers.NewOrderEventHandlers(
		orderapp.NewStoreOrder(orders),
		orderapp.NewUpdateOrderStatus(orders),
		bus,
	).Router(log)

	bus.routers = []*events.Router{
		inventoryRouter, customerRouter, deliveryRouter, paymentRouter, orderRouter,
	}

	return &system{
		bus:              bus,
		items:            items,
		payments:         payments,
		deliveries:       deliveries,
		orders:           orders,
		createOrder:      orderapp.NewCreateOrder(bus, orderhandlers.Source),
		cancelOrder:      orderapp.NewCancelOrder(orders, bus, orderhandlers.Source),
		confirmDelivered: orderapp.NewConfirmDelivered(orders, bus, orderhandlers.Source),
	}
}

func TestChoreography_HappyPathEndsDelivered(t *testing.T) {
	sys := newSystem(t, func() float64 { return 0.9 })
	ctx := context.Background()

	created, err := sys.createOrder.Execute(ctx, orderapp.CreateOrderCommand{CustomerID: "C1", ItemID: "I1"})
	require.NoError(t, err)
	sys.bus.Run(ctx, t)

	order, err := sys.orders.Find(ctx, "C1", created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.OrderStatusDelivering, order.Status)
	assert.Equal(t, int64(2500), order.ItemPrice.Amount)
	assert.Equal(t, int64(1800), order.DeliveryPrice.Amount)
	assert.Equal(t, int64(4300), order.TotalPrice.Amount)

	_, err = sys.confirmDelivered.Execute(ctx, orderapp.ConfirmDeliveredCommand{CustomerID: "C1", OrderID: created.OrderID})
	require.NoError(t, err)
	sys.bus.Run(ctx, t)

	order, err = sys.orders.Find(ctx, "C1", created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.OrderStatusDelivered, order.Status)

	// One unit consumed for good.
	item, err := sys.items.Find(ctx, "I1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), item.Available)
	assert.Equal(t, int64(0), item.Reserved)

	assert.Equal(t, []events.EventType{
		events.OrderCreated,
		events.ItemReserved,
		events.ItemDescribed,
		events.CustomerDescribed,
		events.DeliveryEstimated,
		events.PaymentMade,
		events.ItemRemoved,
		events.DeliveryStarted,
		events.Delivered,
		events.DeliveryWasDelivered,
		events.OrderDelivered,
	}, sys.bus.types())
}

func TestChoreography_PaymentFailureUnwindsReservation(t *testing.T) {
	sys := newSystem(t, func() float64 { return 0.1 })
	ctx := context.Background()

	created, err := sys.createOrder.Execute(ctx, orderapp.CreateOrderCommand{CustomerID: "C1", ItemID: "I1"})
	require.NoError(t, err)
	sys.bus.Run(ctx, t)

	order, err := sys.orders.Find(ctx, "C1", created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.OrderStatusPaymentFailed, order.Status)

	// Counters back to pre-reservation values.
	item, err := sys.items.Find(ctx, "I1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.Available)
	assert.Equal(t, int64(0), item.Reserved)

	types := sys.bus.types()
	assert.Contains(t, types, events.PaymentFailed)
	assert.Contains(t, types, events.ItemUnreserved)
	assert.NotContains(t, types, events.DeliveryStarted)
}

func TestChoreography_CancelAfterPaymentCompensatesEverything(t *testing.T) {
	sys := newSystem(t, func() float64 { return 0.9 })
	ctx := context.Background()

	created, err := sys.createOrder.Execute(ctx, orderapp.CreateOrderCommand{CustomerID: "C1", ItemID: "I1"})
	require.NoError(t, err)
	sys.bus.Run(ctx, t)

	_, err = sys.cancelOrder.Execute(ctx, orderapp.CancelOrderCommand{CustomerID: "C1", OrderID: created.OrderID})
	require.NoError(t, err)
	sys.bus.Run(ctx, t)

	order, err := sys.orders.Find(ctx, "C1", created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.OrderStatusDeliveryCanceled, order.Status)

	// Item returned to available stock.
	item, err := sys.items.Find(ctx, "I1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.Available)

	// Payment canceled.
	payment, err := sys.payments.Find(ctx, order.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.PaymentStatusCanceled, payment.Status)

	// Delivery canceled.
	delivery, err := sys.deliveries.Find(ctx, "C1", created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, deliverydomain.DeliveryStatusCanceled, delivery.Status)

	types := sys.bus.types()
	assert.Contains(t, types, events.OrderCanceled)
	assert.Contains(t, types, events.ItemReturned)
	assert.Contains(t, types, events.PaymentCanceled)
	assert.Contains(t, types, events.DeliveryWasCanceled)
}

func TestChoreography_DeliveryEventsOvertakingPaymentStillConverge(t *testing.T) {
	sys := newSystem(t, func() float64 { return 0.9 })
	ctx := context.Background()

	// Nothing orders events of different types: the delivery stamps can
	// arrive before the payment outcome that stores the row. Redelivery has
	// to carry them until the row exists, ending DELIVERED, not wedged.
	total := models.NewMoney(4300, "USD")
	detail := events.Detail{
		OrderID:    "1700000000000",
		CustomerID: "C1",
		ItemID:     "I1",
		Address:    "221B Baker Street, London",
		Total:      &total,
		Item:       &models.ItemSnapshot{ItemID: "I1", Price: models.NewMoney(2500, "USD")},
		Delivery:   &models.DeliverySnapshot{Address: "221B Baker Street, London", Price: models.NewMoney(1800, "USD")},
		Payment:    &models.PaymentSnapshot{PaymentID: "P1", Status: "PAID", Amount: total},
	}

	require.NoError(t, sys.bus.Publish(ctx,
		events.New("delivery-service", events.DeliveryStarted, detail),
		events.New("payment-service", events.PaymentMade, detail),
		events.New("delivery-service", events.DeliveryWasDelivered, detail),
	))
	sys.bus.Run(ctx, t)

	order, err := sys.orders.Find(ctx, "C1", "1700000000000")
	require.NoError(t, err)
	assert.Equal(t, orderdomain.OrderStatusDelivered, order.Status)
	assert.Contains(t, sys.bus.types(), events.OrderDelivered)
}
