package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/OsvaldoArellano/kasports/internal/domain"
)

// CustomerStore resolves customers for default-address lookup and the
// identity middleware. Customer CRUD lives in the out-of-scope admin screens.
type CustomerStore interface {
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
}

func (r *Repository) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	query := `SELECT id, user_id, phone, address, registered_at
	          FROM customers WHERE id = $1`

	var c domain.Customer
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.UserID,
		&c.Phone,
		&c.Address,
		&c.RegisteredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query customer: %w", err)
	}

	return &c, nil
}
