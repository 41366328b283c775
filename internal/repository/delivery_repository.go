package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/OsvaldoArellano/kasports/internal/domain"
	"github.com/google/uuid"
)

// DeliveryStore persists delivery records and applies state-machine
// transitions atomically with the owning order's status and the outbox.
type DeliveryStore interface {
	GetDelivery(ctx context.Context, orderID uuid.UUID) (*domain.Delivery, error)
	ApplyTransition(ctx context.Context, delivery *domain.Delivery, orderStatus domain.OrderStatus, event *OutboxEvent) error
}

func (r *Repository) GetDelivery(ctx context.Context, orderID uuid.UUID) (*domain.Delivery, error) {
	query := `SELECT id, order_id, address, ship_date, delivery_date, status, evidence_image
	          FROM deliveries WHERE order_id = $1`

	var d domain.Delivery
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&d.ID,
		&d.OrderID,
		&d.Address,
		&d.ShipDate,
		&d.DeliveryDate,
		&d.Status,
		&d.EvidenceImage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeliveryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query delivery by order id: %w", err)
	}
	return &d, nil
}

// ApplyTransition upserts the delivery record (nil skips it), moves the
// owning order to orderStatus and enqueues the outbox event, all in one
// transaction.
func (r *Repository) ApplyTransition(ctx context.Context, delivery *domain.Delivery, orderStatus domain.OrderStatus, event *OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition transaction: %w", err)
	}
	defer tx.Rollback()

	var orderID uuid.UUID
	if delivery != nil {
		orderID = delivery.OrderID
		upsert := `INSERT INTO deliveries (id, order_id, address, ship_date, delivery_date, status, evidence_image)
		           VALUES ($1, $2, $3, $4, $5, $6, $7)
		           ON CONFLICT (order_id) DO UPDATE SET
		               address = EXCLUDED.address,
		               ship_date = EXCLUDED.ship_date,
		               delivery_date = EXCLUDED.delivery_date,
		               status = EXCLUDED.status,
		               evidence_image = EXCLUDED.evidence_image`
		if _, err := tx.ExecContext(ctx, upsert,
			delivery.ID,
			delivery.OrderID,
			delivery.Address,
			delivery.ShipDate,
			delivery.DeliveryDate,
			delivery.Status,
			delivery.EvidenceImage,
		); err != nil {
			return fmt.Errorf("upsert delivery record: %w", err)
		}
	} else if event != nil {
		parsed, parseErr := uuid.Parse(event.AggregateID)
		if parseErr != nil {
			return fmt.Errorf("transition event aggregate id: %w", parseErr)
		}
		orderID = parsed
	}

	res, err := tx.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, orderStatus)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}

	if event != nil {
		if err := insertEvent(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition transaction: %w", err)
	}
	return nil
}
