package cache

import (
	"context"
	"errors"
	"time"

	"github.com/OsvaldoArellano/kasports/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// BreakerCache wraps a CartCache with a circuit breaker so a dead Redis
// trips fast instead of stalling every cart read on a timeout. Misses are
// not failures and never count against the breaker.
type BreakerCache struct {
	inner CartCache
	cb    *gobreaker.CircuitBreaker[*domain.Cart]
}

func NewBreakerCache(inner CartCache) *BreakerCache {
	cb := gobreaker.NewCircuitBreaker[*domain.Cart](gobreaker.Settings{
		Name:    "cart-cache",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCacheMiss)
		},
	})
	return &BreakerCache{inner: inner, cb: cb}
}

func (b *BreakerCache) Get(ctx context.Context, customerID int64) (*domain.Cart, error) {
	return b.cb.Execute(func() (*domain.Cart, error) {
		return b.inner.Get(ctx, customerID)
	})
}

func (b *BreakerCache) Set(ctx context.Context, customerID int64, cart *domain.Cart) error {
	_, err := b.cb.Execute(func() (*domain.Cart, error) {
		return nil, b.inner.Set(ctx, customerID, cart)
	})
	return err
}

func (b *BreakerCache) Delete(ctx context.Context, customerID int64) error {
	_, err := b.cb.Execute(func() (*domain.Cart, error) {
		return nil, b.inner.Delete(ctx, customerID)
	})
	return err
}
