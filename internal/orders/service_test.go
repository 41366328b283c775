package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OsvaldoArellano/kasports/internal/domain"
	"github.com/OsvaldoArellano/kasports/internal/repository"
)

type MockOrderStore struct {
	Orders []*domain.Order

	SearchedField repository.SearchField
	SearchedQuery string
}

func (m *MockOrderStore) GetOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	for _, o := range m.Orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *MockOrderStore) PlaceOrder(context.Context, *repository.PlacedOrder) error { return nil }

func (m *MockOrderStore) ListOrdersByCustomer(_ context.Context, customerID int64) ([]*domain.Order, error) {
	var list []*domain.Order
	for _, o := range m.Orders {
		if o.CustomerID == customerID {
			list = append(list, o)
		}
	}
	return list, nil
}

func (m *MockOrderStore) SearchOrders(_ context.Context, field repository.SearchField, query string) ([]*domain.Order, error) {
	m.SearchedField = field
	m.SearchedQuery = query
	return m.Orders, nil
}

type MockDeliveryStore struct {
	Deliveries map[uuid.UUID]*domain.Delivery
}

func (m *MockDeliveryStore) GetDelivery(_ context.Context, orderID uuid.UUID) (*domain.Delivery, error) {
	d, ok := m.Deliveries[orderID]
	if !ok {
		return nil, repository.ErrDeliveryNotFound
	}
	return d, nil
}

func (m *MockDeliveryStore) ApplyTransition(context.Context, *domain.Delivery, domain.OrderStatus, *repository.OutboxEvent) error {
	return nil
}

func TestGet(t *testing.T) {
	order := &domain.Order{ID: uuid.New(), CustomerID: 7}
	d := &domain.Delivery{ID: uuid.New(), OrderID: order.ID, Status: domain.DeliveryStatusInTransit}
	svc := NewService(
		&MockOrderStore{Orders: []*domain.Order{order}},
		&MockDeliveryStore{Deliveries: map[uuid.UUID]*domain.Delivery{order.ID: d}},
	)

	detail, err := svc.Get(context.Background(), 7, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order, detail.Order)
	assert.Equal(t, d, detail.Delivery)
}

func TestGet_MissingDeliveryRecordIsNil(t *testing.T) {
	order := &domain.Order{ID: uuid.New(), CustomerID: 7}
	svc := NewService(
		&MockOrderStore{Orders: []*domain.Order{order}},
		&MockDeliveryStore{Deliveries: map[uuid.UUID]*domain.Delivery{}},
	)

	detail, err := svc.Get(context.Background(), 7, order.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Delivery)
}

func TestGet_ForeignOrderForbidden(t *testing.T) {
	order := &domain.Order{ID: uuid.New(), CustomerID: 7}
	svc := NewService(
		&MockOrderStore{Orders: []*domain.Order{order}},
		&MockDeliveryStore{Deliveries: map[uuid.UUID]*domain.Delivery{}},
	)

	_, err := svc.Get(context.Background(), 8, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListByCustomer(t *testing.T) {
	svc := NewService(&MockOrderStore{Orders: []*domain.Order{
		{ID: uuid.New(), CustomerID: 7},
		{ID: uuid.New(), CustomerID: 8},
		{ID: uuid.New(), CustomerID: 7},
	}}, &MockDeliveryStore{})

	list, err := svc.ListByCustomer(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSearch_ParsesField(t *testing.T) {
	store := &MockOrderStore{}
	svc := NewService(store, &MockDeliveryStore{})

	_, err := svc.Search(context.Background(), "status", "Shipped")
	require.NoError(t, err)
	assert.Equal(t, repository.SearchByStatus, store.SearchedField)
	assert.Equal(t, "Shipped", store.SearchedQuery)
}

func TestSearch_UnknownField(t *testing.T) {
	svc := NewService(&MockOrderStore{}, &MockDeliveryStore{})

	_, err := svc.Search(context.Background(), "color", "red")
	assert.ErrorIs(t, err, repository.ErrUnknownSearchField)
}
