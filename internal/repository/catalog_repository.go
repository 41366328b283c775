package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/OsvaldoArellano/kasports/internal/domain"
)

// CatalogStore is the narrow catalog lookup contract the core depends on.
// Catalog mutation belongs to the admin screens; checkout decrements stock
// only inside PlaceOrder's transaction.
type CatalogStore interface {
	Lookup(ctx context.Context, ref domain.ProductRef) (*domain.Product, error)
}

func (r *Repository) Lookup(ctx context.Context, ref domain.ProductRef) (*domain.Product, error) {
	if !ref.Kind.Valid() {
		return nil, ErrProductNotFound
	}

	query := `SELECT kind, id, provider_id, model, color, gender, price, stock, sizes
	          FROM products WHERE kind = $1 AND id = $2`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, ref.Kind, ref.ID).Scan(
		&p.Ref.Kind,
		&p.Ref.ID,
		&p.ProviderID,
		&p.Model,
		&p.Color,
		&p.Gender,
		&p.Price,
		&p.Stock,
		&p.Sizes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}

	return &p, nil
}
