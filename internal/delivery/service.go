// Package delivery drives the post-purchase shipment state machine:
// Pending -> InTransit -> Delivered, with Failed reachable from either and a
// customer-triggered cancel path. Order status mirrors the delivery record.
//
// Known business gap carried over from the storefront's behavior: neither
// Cancel nor a Failed delivery restores product stock. Confirm with
// stakeholders before changing it; admins may already restock by hand.
package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/OsvaldoArellano/kasports/internal/domain"
	"github.com/OsvaldoArellano/kasports/internal/repository"
	"github.com/google/uuid"
)

var ErrForbidden = errors.New("order does not belong to this customer")

// Outbox event types emitted by delivery transitions.
const (
	EventOrderShipped   = "order_shipped"
	EventOrderDelivered = "order_delivered"
	EventOrderCancelled = "order_cancelled"
	EventDeliveryReport = "delivery_report"
)

type Service struct {
	orders     repository.OrderStore
	deliveries repository.DeliveryStore
	customers  repository.CustomerStore
	outbox     repository.OutboxStore
}

func NewService(orders repository.OrderStore, deliveries repository.DeliveryStore, customers repository.CustomerStore, outbox repository.OutboxStore) *Service {
	return &Service{
		orders:     orders,
		deliveries: deliveries,
		customers:  customers,
		outbox:     outbox,
	}
}

// MarkShipped is the explicit admin shipment action: it stamps the ship date
// and moves the delivery to InTransit and the order to Shipped.
func (s *Service) MarkShipped(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	d, err := s.deliveries.GetDelivery(ctx, order.ID)
	if err != nil {
		return err
	}

	now := time.Now()
	d.ShipDate = &now
	d.Status = domain.DeliveryStatusInTransit

	event, err := transitionEvent(order.ID, EventOrderShipped, d.Status)
	if err != nil {
		return err
	}
	return s.deliveries.ApplyTransition(ctx, d, domain.OrderStatusShipped, event)
}

// ConfirmReceipt records the owning customer's confirmation: delivery
// Delivered with today's date, order Delivered. Re-confirming an already
// delivered order succeeds again without error.
func (s *Service) ConfirmReceipt(ctx context.Context, customerID int64, orderID uuid.UUID) error {
	order, err := s.ownedOrder(ctx, customerID, orderID)
	if err != nil {
		return err
	}

	d, err := s.deliveries.GetDelivery(ctx, order.ID)
	if err != nil && !errors.Is(err, repository.ErrDeliveryNotFound) {
		return err
	}

	event, err := transitionEvent(order.ID, EventOrderDelivered, domain.DeliveryStatusDelivered)
	if err != nil {
		return err
	}

	if d == nil {
		// No record to update; the order status still moves.
		return s.deliveries.ApplyTransition(ctx, nil, domain.OrderStatusDelivered, event)
	}

	now := time.Now()
	d.Status = domain.DeliveryStatusDelivered
	d.DeliveryDate = &now
	return s.deliveries.ApplyTransition(ctx, d, domain.OrderStatusDelivered, event)
}

// ReportNotReceived records that the customer says the package never
// arrived. No state changes; a notification event is all that is written.
func (s *Service) ReportNotReceived(ctx context.Context, customerID int64, orderID uuid.UUID) error {
	order, err := s.ownedOrder(ctx, customerID, orderID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"reported_at": time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal delivery report payload: %w", err)
	}
	return s.outbox.InsertEvent(ctx, &repository.OutboxEvent{
		AggregateID: order.ID.String(),
		EventType:   EventDeliveryReport,
		Payload:     payload,
	})
}

// AttachEvidence stores the customer's receipt photo and treats it as proof
// of delivery: the record (created on the customer's default address if it
// does not exist) moves to Delivered, stamping the delivery date if absent.
func (s *Service) AttachEvidence(ctx context.Context, customerID int64, orderID uuid.UUID, imagePath string) error {
	order, err := s.ownedOrder(ctx, customerID, orderID)
	if err != nil {
		return err
	}

	d, err := s.deliveries.GetDelivery(ctx, order.ID)
	if errors.Is(err, repository.ErrDeliveryNotFound) {
		d, err = s.freshRecord(ctx, order)
	}
	if err != nil {
		return err
	}

	d.EvidenceImage = imagePath
	d.Status = domain.DeliveryStatusDelivered
	if d.DeliveryDate == nil {
		now := time.Now()
		d.DeliveryDate = &now
	}

	event, err := transitionEvent(order.ID, EventOrderDelivered, d.Status)
	if err != nil {
		return err
	}
	return s.deliveries.ApplyTransition(ctx, d, domain.OrderStatusDelivered, event)
}

// Cancel rejects the delivery: record Failed (created if absent), order
// Cancelled. No transition guard blocks this — cancelling after a confirmed
// receipt still wins, which is a deliberate last-writer-wins carry-over.
// Stock is not restored.
func (s *Service) Cancel(ctx context.Context, customerID int64, orderID uuid.UUID) error {
	order, err := s.ownedOrder(ctx, customerID, orderID)
	if err != nil {
		return err
	}

	d, err := s.deliveries.GetDelivery(ctx, order.ID)
	if errors.Is(err, repository.ErrDeliveryNotFound) {
		d, err = s.freshRecord(ctx, order)
	}
	if err != nil {
		return err
	}

	d.Status = domain.DeliveryStatusFailed

	event, err := transitionEvent(order.ID, EventOrderCancelled, d.Status)
	if err != nil {
		return err
	}
	return s.deliveries.ApplyTransition(ctx, d, domain.OrderStatusCancelled, event)
}

func (s *Service) ownedOrder(ctx context.Context, customerID int64, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *Service) freshRecord(ctx context.Context, order *domain.Order) (*domain.Delivery, error) {
	customer, err := s.customers.GetCustomer(ctx, order.CustomerID)
	if err != nil {
		return nil, err
	}
	return &domain.Delivery{
		ID:      uuid.New(),
		OrderID: order.ID,
		Address: customer.Address,
		Status:  domain.DeliveryStatusPending,
	}, nil
}

func transitionEvent(orderID uuid.UUID, eventType string, status domain.DeliveryStatus) (*repository.OutboxEvent, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"order_id":        orderID,
		"delivery_status": status,
		"occurred_at":     time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &repository.OutboxEvent{
		AggregateID: orderID.String(),
		EventType:   eventType,
		Payload:     payload,
	}, nil
}
