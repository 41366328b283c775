package domain

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "Pending"
	DeliveryStatusInTransit DeliveryStatus = "InTransit"
	DeliveryStatusDelivered DeliveryStatus = "Delivered"
	DeliveryStatusFailed    DeliveryStatus = "Failed"
)

func (s DeliveryStatus) String() string {
	return string(s)
}

// Delivery tracks the shipment of exactly one order. The address may differ
// from the customer's default; EvidenceImage holds the path of a
// customer-uploaded receipt photo, empty when none was attached.
type Delivery struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	Address       string
	ShipDate      *time.Time
	DeliveryDate  *time.Time
	Status        DeliveryStatus
	EvidenceImage string
}
