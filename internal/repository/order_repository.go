package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/OsvaldoArellano/kasports/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockDecrement is one product's checkout-time stock deduction.
type StockDecrement struct {
	Ref      domain.ProductRef
	Quantity int
}

// PlacedOrder bundles everything checkout persists in one transaction.
type PlacedOrder struct {
	Order      *domain.Order
	Delivery   *domain.Delivery
	Decrements []StockDecrement
	CartID     uuid.UUID
	CartTotal  decimal.Decimal
	Event      *OutboxEvent
}

// SearchField enumerates the admin order-search predicates. Free-text field
// selection is rejected with ErrUnknownSearchField instead of silently
// matching nothing.
type SearchField string

const (
	SearchByID            SearchField = "id"
	SearchByCustomer      SearchField = "customer"
	SearchByStatus        SearchField = "status"
	SearchByPaymentMethod SearchField = "payment_method"
)

func ParseSearchField(s string) (SearchField, error) {
	switch SearchField(s) {
	case SearchByID, SearchByCustomer, SearchByStatus, SearchByPaymentMethod:
		return SearchField(s), nil
	default:
		return "", ErrUnknownSearchField
	}
}

// OrderStore persists orders. PlaceOrder carries the all-or-nothing
// guarantee: order, delivery record, stock decrements, cart completion and
// the outbox event commit together or not at all.
type OrderStore interface {
	PlaceOrder(ctx context.Context, po *PlacedOrder) error
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error)
	SearchOrders(ctx context.Context, field SearchField, query string) ([]*domain.Order, error)
}

func (r *Repository) PlaceOrder(ctx context.Context, po *PlacedOrder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin checkout transaction: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `INSERT INTO orders (id, customer_id, cart_id, payment_method, subtotal, tax, shipping_cost, total, status, placed_at)
	               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := tx.ExecContext(ctx, orderQuery,
		po.Order.ID,
		po.Order.CustomerID,
		po.Order.CartID,
		po.Order.PaymentMethod,
		po.Order.Subtotal,
		po.Order.Tax,
		po.Order.ShippingCost,
		po.Order.Total,
		po.Order.Status,
		po.Order.PlacedAt,
	); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	deliveryQuery := `INSERT INTO deliveries (id, order_id, address, ship_date, delivery_date, status, evidence_image)
	                  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, deliveryQuery,
		po.Delivery.ID,
		po.Delivery.OrderID,
		po.Delivery.Address,
		po.Delivery.ShipDate,
		po.Delivery.DeliveryDate,
		po.Delivery.Status,
		po.Delivery.EvidenceImage,
	); err != nil {
		return fmt.Errorf("insert delivery record: %w", err)
	}

	// Conditional decrement re-checks stock inside the transaction; a row
	// that no longer has enough stock matches nothing and aborts everything.
	decrementQuery := `UPDATE products SET stock = stock - $3
	                   WHERE kind = $1 AND id = $2 AND stock >= $3`
	for _, dec := range po.Decrements {
		res, err := tx.ExecContext(ctx, decrementQuery, dec.Ref.Kind, dec.Ref.ID, dec.Quantity)
		if err != nil {
			return fmt.Errorf("decrement stock for %s/%d: %w", dec.Ref.Kind, dec.Ref.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrStockConflict
		}
	}

	completeQuery := `UPDATE carts SET status = $2, total = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, completeQuery, po.CartID, domain.CartStatusCompleted, po.CartTotal); err != nil {
		return fmt.Errorf("complete cart: %w", err)
	}

	if po.Event != nil {
		if err := insertEvent(ctx, tx, po.Event); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkout transaction: %w", err)
	}
	return nil
}

func (r *Repository) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT id, customer_id, cart_id, payment_method, subtotal, tax, shipping_cost, total, status, placed_at
	          FROM orders WHERE id = $1`

	var order domain.Order
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.CustomerID,
		&order.CartID,
		&order.PaymentMethod,
		&order.Subtotal,
		&order.Tax,
		&order.ShippingCost,
		&order.Total,
		&order.Status,
		&order.PlacedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return &order, nil
}

func (r *Repository) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	query := `SELECT id, customer_id, cart_id, payment_method, subtotal, tax, shipping_cost, total, status, placed_at
	          FROM orders WHERE customer_id = $1 ORDER BY placed_at DESC`

	return r.queryOrders(ctx, query, customerID)
}

func (r *Repository) SearchOrders(ctx context.Context, field SearchField, query string) ([]*domain.Order, error) {
	base := `SELECT o.id, o.customer_id, o.cart_id, o.payment_method, o.subtotal, o.tax, o.shipping_cost, o.total, o.status, o.placed_at
	         FROM orders o`

	switch field {
	case SearchByID:
		return r.queryOrders(ctx, base+` WHERE o.id::text ILIKE '%' || $1 || '%' ORDER BY o.placed_at DESC`, query)
	case SearchByCustomer:
		return r.queryOrders(ctx, base+` JOIN customers c ON c.id = o.customer_id
		                                 WHERE c.phone ILIKE '%' || $1 || '%' OR c.address ILIKE '%' || $1 || '%'
		                                 ORDER BY o.placed_at DESC`, query)
	case SearchByStatus:
		return r.queryOrders(ctx, base+` WHERE o.status ILIKE '%' || $1 || '%' ORDER BY o.placed_at DESC`, query)
	case SearchByPaymentMethod:
		return r.queryOrders(ctx, base+` WHERE o.payment_method ILIKE '%' || $1 || '%' ORDER BY o.placed_at DESC`, query)
	default:
		return nil, ErrUnknownSearchField
	}
}

func (r *Repository) queryOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.CartID,
			&order.PaymentMethod,
			&order.Subtotal,
			&order.Tax,
			&order.ShippingCost,
			&order.Total,
			&order.Status,
			&order.PlacedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}
