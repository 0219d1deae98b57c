package handlers

import (
	"context"
	"testing"

	"github.com/ordermesh/order-system/customer-service/application"
	"github.com/ordermesh/order-system/customer-service/domain"
	"github.com/ordermesh/order-system/customer-service/mocks"
	"github.com/ordermesh/order-system/shared/events"
	"github.com/ordermesh/order-system/shared/events/eventstest"
	"github.com/ordermesh/order-system/shared/ledger"
	"github.com/ordermesh/order-system/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newHandlers(t *testing.T) (*CustomerEventHandlers, *mocks.MockCustomerRepository, *eventstest.CapturingPublisher) {
	repo := mocks.NewMockCustomerRepository(t)
	pub := eventstest.NewCapturingPublisher()
	h := NewCustomerEventHandlers(application.NewDescribeCustomer(repo), pub)
	return h, repo, pub
}

func TestHandleItemDescribed_AttachesCustomerAndAddress(t *testing.T) {
	h, repo, pub := newHandlers(t)

	customer := &domain.Customer{CustomerID: "C1", Name: "Sherlock Holmes", Address: "221B Baker Street"}
	repo.On("Find", mock.Anything, models.ID("C1")).Return(customer, nil).Once()

	detail := events.Detail{OrderID: "1700000000000", CustomerID: "C1", ItemID: "I1"}
	err := h.HandleItemDescribed(context.Background(), events.New("inventory-service", events.ItemDescribed, detail))

	require.NoError(t, err)
	require.Len(t, pub.Events(), 1)
	published := pub.Last()
	assert.Equal(t, events.CustomerDescribed, published.DetailType)
	require.NotNil(t, published.Detail.Customer)
	assert.Equal(t, "Sherlock Holmes", published.Detail.Customer.Name)
	assert.Equal(t, "221B Baker Street", published.Detail.Address)
}

func TestHandleItemDescribed_UnknownCustomerStallsSaga(t *testing.T) {
	h, repo, pub := newHandlers(t)

	repo.On("Find", mock.Anything, models.ID("C1")).Return(nil, ledger.ErrNotFound).Once()

	detail := events.Detail{OrderID: "1700000000000", CustomerID: "C1"}
	err := h.HandleItemDescribed(context.Background(), events.New("inventory-service", events.ItemDescribed, detail))

	require.NoError(t, err)
	assert.Empty(t, pub.Events())
}
