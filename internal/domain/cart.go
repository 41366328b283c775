package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartStatus string

const (
	CartStatusActive    CartStatus = "Active"
	CartStatusPending   CartStatus = "Pending"
	CartStatusCompleted CartStatus = "Completed"
	CartStatusCancelled CartStatus = "Cancelled"
)

func (s CartStatus) String() string {
	return string(s)
}

// Cart is the single mutable in-progress cart of a customer. Total is a
// cached field written only when checkout completes the cart; while the cart
// is Active, totals are always recomputed from the lines.
type Cart struct {
	ID         uuid.UUID
	CustomerID int64
	Status     CartStatus
	Total      decimal.Decimal
	CreatedAt  time.Time
	Lines      []LineItem
}

// LineItem is one catalog entry plus chosen size and quantity within a cart.
// Subtotal is frozen at quantity x unit price when the line is written;
// later catalog price changes do not touch existing lines.
type LineItem struct {
	ID       uuid.UUID
	CartID   uuid.UUID
	Product  ProductRef
	Size     string // empty when the product has no size concept
	Quantity int
	Subtotal decimal.Decimal
}

// UnitPrice derives the frozen per-unit price from the subtotal. Division is
// guarded so a zero quantity yields zero instead of an error.
func (l LineItem) UnitPrice() decimal.Decimal {
	if l.Quantity <= 0 {
		return decimal.Zero
	}
	return l.Subtotal.Div(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}
