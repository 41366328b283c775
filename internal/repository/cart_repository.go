package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/OsvaldoArellano/kasports/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CartStore persists carts and their lines. A cart owns its lines: deleting
// the cart cascades to them at the schema level.
type CartStore interface {
	GetActiveCart(ctx context.Context, customerID int64) (*domain.Cart, error)
	CreateCart(ctx context.Context, cart *domain.Cart) error
	GetLine(ctx context.Context, lineID uuid.UUID) (*domain.LineItem, error)
	GetCart(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error)
	InsertLine(ctx context.Context, line *domain.LineItem) error
	UpdateLine(ctx context.Context, line *domain.LineItem) error
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
}

func (r *Repository) GetActiveCart(ctx context.Context, customerID int64) (*domain.Cart, error) {
	query := `SELECT id, customer_id, status, total, created_at
	          FROM carts WHERE customer_id = $1 AND status = $2`

	cart, err := r.scanCart(r.db.QueryRowContext(ctx, query, customerID, domain.CartStatusActive))
	if err != nil {
		return nil, err
	}

	if err := r.loadLines(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *Repository) GetCart(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error) {
	query := `SELECT id, customer_id, status, total, created_at
	          FROM carts WHERE id = $1`

	cart, err := r.scanCart(r.db.QueryRowContext(ctx, query, cartID))
	if err != nil {
		return nil, err
	}

	if err := r.loadLines(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *Repository) scanCart(row *sql.Row) (*domain.Cart, error) {
	var cart domain.Cart
	err := row.Scan(&cart.ID, &cart.CustomerID, &cart.Status, &cart.Total, &cart.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}
	return &cart, nil
}

func (r *Repository) loadLines(ctx context.Context, cart *domain.Cart) error {
	query := `SELECT id, cart_id, product_kind, product_id, size, quantity, subtotal
	          FROM cart_lines WHERE cart_id = $1`

	rows, err := r.db.QueryContext(ctx, query, cart.ID)
	if err != nil {
		return fmt.Errorf("query cart lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.LineItem
		if err := rows.Scan(
			&line.ID,
			&line.CartID,
			&line.Product.Kind,
			&line.Product.ID,
			&line.Size,
			&line.Quantity,
			&line.Subtotal,
		); err != nil {
			return fmt.Errorf("scan cart line: %w", err)
		}
		cart.Lines = append(cart.Lines, line)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

func (r *Repository) CreateCart(ctx context.Context, cart *domain.Cart) error {
	query := `INSERT INTO carts (id, customer_id, status, total, created_at)
	          VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		cart.ID,
		cart.CustomerID,
		cart.Status,
		cart.Total,
		cart.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrActiveCartExists
		}
		return fmt.Errorf("insert cart: %w", err)
	}
	return nil
}

func (r *Repository) GetLine(ctx context.Context, lineID uuid.UUID) (*domain.LineItem, error) {
	query := `SELECT id, cart_id, product_kind, product_id, size, quantity, subtotal
	          FROM cart_lines WHERE id = $1`

	var line domain.LineItem
	err := r.db.QueryRowContext(ctx, query, lineID).Scan(
		&line.ID,
		&line.CartID,
		&line.Product.Kind,
		&line.Product.ID,
		&line.Size,
		&line.Quantity,
		&line.Subtotal,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cart line: %w", err)
	}
	return &line, nil
}

func (r *Repository) InsertLine(ctx context.Context, line *domain.LineItem) error {
	query := `INSERT INTO cart_lines (id, cart_id, product_kind, product_id, size, quantity, subtotal)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		line.ID,
		line.CartID,
		line.Product.Kind,
		line.Product.ID,
		line.Size,
		line.Quantity,
		line.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert cart line: %w", err)
	}
	return nil
}

func (r *Repository) UpdateLine(ctx context.Context, line *domain.LineItem) error {
	query := `UPDATE cart_lines SET size = $2, quantity = $3, subtotal = $4 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, line.ID, line.Size, line.Quantity, line.Subtotal)
	if err != nil {
		return fmt.Errorf("update cart line: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (r *Repository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE id = $1`, lineID)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}
