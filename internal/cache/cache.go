package cache

import (
	"context"
	"errors"

	"github.com/OsvaldoArellano/kasports/internal/domain"
)

// CartCache is a read-through cache of active carts keyed by customer.
// Cache failures are never user-visible; callers fall back to the database.
type CartCache interface {
	Get(ctx context.Context, customerID int64) (*domain.Cart, error)
	Set(ctx context.Context, customerID int64, cart *domain.Cart) error
	Delete(ctx context.Context, customerID int64) error
}

var ErrCacheMiss = errors.New("cache miss")
