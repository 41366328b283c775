// Package orders serves order history for customers and the admin order
// search.
package orders

import (
	"context"
	"errors"

	"github.com/OsvaldoArellano/kasports/internal/domain"
	"github.com/OsvaldoArellano/kasports/internal/repository"
	"github.com/google/uuid"
)

var ErrForbidden = errors.New("order does not belong to this customer")

// Detail is an order plus its delivery record, nil when the record is
// missing.
type Detail struct {
	Order    *domain.Order
	Delivery *domain.Delivery
}

type Service struct {
	orders     repository.OrderStore
	deliveries repository.DeliveryStore
}

func NewService(orders repository.OrderStore, deliveries repository.DeliveryStore) *Service {
	return &Service{orders: orders, deliveries: deliveries}
}

// Get returns one order with its delivery record; the requester must be the
// owning customer.
func (s *Service) Get(ctx context.Context, customerID int64, orderID uuid.UUID) (*Detail, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, ErrForbidden
	}

	d, err := s.deliveries.GetDelivery(ctx, order.ID)
	if err != nil && !errors.Is(err, repository.ErrDeliveryNotFound) {
		return nil, err
	}
	return &Detail{Order: order, Delivery: d}, nil
}

// ListByCustomer returns the customer's orders newest first.
func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	return s.orders.ListOrdersByCustomer(ctx, customerID)
}

// Search runs the admin order search over the enumerated field set. An
// unknown field name is rejected with repository.ErrUnknownSearchField.
func (s *Service) Search(ctx context.Context, field, query string) ([]*domain.Order, error) {
	parsed, err := repository.ParseSearchField(field)
	if err != nil {
		return nil, err
	}
	return s.orders.SearchOrders(ctx, parsed, query)
}
