package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusInProgress OrderStatus = "InProgress"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

// Order is the immutable snapshot produced at checkout. Subtotal is the
// after-discount amount; every monetary field is persisted as frozen, never
// recomputed.
type Order struct {
	ID            uuid.UUID
	CustomerID    int64
	CartID        uuid.UUID
	PaymentMethod string
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	ShippingCost  decimal.Decimal
	Total         decimal.Decimal
	Status        OrderStatus
	PlacedAt      time.Time
}
