// Package checkout converts a customer's active cart into an immutable
// order. Everything the conversion touches — order, delivery record, stock
// decrements, cart completion and the outbox notification — commits in one
// database transaction.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/OsvaldoArellano/kasports/internal/cache"
	"github.com/OsvaldoArellano/kasports/internal/cart"
	"github.com/OsvaldoArellano/kasports/internal/domain"
	"github.com/OsvaldoArellano/kasports/internal/pricing"
	"github.com/OsvaldoArellano/kasports/internal/repository"
	"github.com/google/uuid"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to check out")

// EventOrderPlaced is the outbox event type written with every checkout.
const EventOrderPlaced = "order_placed"

type Service struct {
	carts     repository.CartStore
	customers repository.CustomerStore
	orders    repository.OrderStore
	cache     cache.CartCache
}

func NewService(carts repository.CartStore, customers repository.CustomerStore, orders repository.OrderStore, cartCache cache.CartCache) *Service {
	return &Service{
		carts:     carts,
		customers: customers,
		orders:    orders,
		cache:     cartCache,
	}
}

// Checkout freezes the active cart's totals into a new order, creates its
// delivery record (ship date today, address defaulting to the customer's),
// decrements stock for every line with an in-transaction re-check, and
// completes the cart. It returns the new order's ID. A stock shortfall at
// commit time surfaces repository.ErrStockConflict and persists nothing.
func (s *Service) Checkout(ctx context.Context, customerID int64, paymentMethod, deliveryAddress string) (uuid.UUID, error) {
	activeCart, err := s.carts.GetActiveCart(ctx, customerID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return uuid.Nil, ErrEmptyCart
	}
	if err != nil {
		return uuid.Nil, err
	}
	if len(activeCart.Lines) == 0 {
		return uuid.Nil, ErrEmptyCart
	}

	// Same engine as the cart preview; the charged totals cannot drift from
	// what the customer saw.
	totals := pricing.Compute(cart.Lines(activeCart)).Round()

	address := deliveryAddress
	if address == "" {
		customer, errCust := s.customers.GetCustomer(ctx, customerID)
		if errCust != nil {
			return uuid.Nil, errCust
		}
		address = customer.Address
	}

	now := time.Now()
	order := &domain.Order{
		ID:            uuid.New(),
		CustomerID:    customerID,
		CartID:        activeCart.ID,
		PaymentMethod: paymentMethod,
		Subtotal:      totals.DiscountedSubtotal,
		Tax:           totals.Tax,
		ShippingCost:  totals.ShippingCost,
		Total:         totals.GrandTotal,
		Status:        domain.OrderStatusInProgress,
		PlacedAt:      now,
	}

	shipDate := now
	delivery := &domain.Delivery{
		ID:       uuid.New(),
		OrderID:  order.ID,
		Address:  address,
		ShipDate: &shipDate,
		Status:   domain.DeliveryStatusPending,
	}

	decrements := make([]repository.StockDecrement, len(activeCart.Lines))
	for i, line := range activeCart.Lines {
		decrements[i] = repository.StockDecrement{Ref: line.Product, Quantity: line.Quantity}
	}

	event, err := placedEvent(order)
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.orders.PlaceOrder(ctx, &repository.PlacedOrder{
		Order:      order,
		Delivery:   delivery,
		Decrements: decrements,
		CartID:     activeCart.ID,
		CartTotal:  totals.GrandTotal,
		Event:      event,
	}); err != nil {
		return uuid.Nil, err
	}

	s.invalidate(customerID)
	return order.ID, nil
}

func placedEvent(order *domain.Order) (*repository.OutboxEvent, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"order_id":       order.ID,
		"customer_id":    order.CustomerID,
		"payment_method": order.PaymentMethod,
		"total":          order.Total,
		"placed_at":      order.PlacedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order placed payload: %w", err)
	}
	return &repository.OutboxEvent{
		AggregateID: order.ID.String(),
		EventType:   EventOrderPlaced,
		Payload:     payload,
	}, nil
}

func (s *Service) invalidate(customerID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, customerID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
