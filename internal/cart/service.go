// Package cart mutates the single Active cart of a customer: adding,
// re-quantifying and removing lines under stock and size validation.
package cart

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/OsvaldoArellano/kasports/internal/cache"
	"github.com/OsvaldoArellano/kasports/internal/domain"
	"github.com/OsvaldoArellano/kasports/internal/pricing"
	"github.com/OsvaldoArellano/kasports/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// View is a cart plus its recomputed totals. Totals are always derived from
// the current lines; the cart's cached total field is only written at
// checkout.
type View struct {
	Cart   *domain.Cart
	Totals pricing.Totals
}

type Service struct {
	carts   repository.CartStore
	catalog repository.CatalogStore
	cache   cache.CartCache
	sfg     singleflight.Group // Prevents cache stampede
}

func NewService(carts repository.CartStore, catalog repository.CatalogStore, cartCache cache.CartCache) *Service {
	return &Service{
		carts:   carts,
		catalog: catalog,
		cache:   cartCache,
	}
}

// GetOrCreateActiveCart returns the customer's Active cart, creating one if
// none exists. The partial unique index keeps a concurrent create from
// producing a second Active cart; losing that race falls back to a re-read.
func (s *Service) GetOrCreateActiveCart(ctx context.Context, customerID int64) (*domain.Cart, error) {
	cart, err := s.carts.GetActiveCart(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrCartNotFound) {
		return nil, err
	}

	cart = &domain.Cart{
		ID:         uuid.New(),
		CustomerID: customerID,
		Status:     domain.CartStatusActive,
		Total:      decimal.Zero,
		CreatedAt:  time.Now(),
	}
	errCreate := s.carts.CreateCart(ctx, cart)
	if errors.Is(errCreate, repository.ErrActiveCartExists) {
		return s.carts.GetActiveCart(ctx, customerID)
	}
	if errCreate != nil {
		return nil, errCreate
	}
	return cart, nil
}

// AddItem puts quantity units of the referenced product into the customer's
// active cart. The line's subtotal freezes the product's current price; a
// line for the same (product, size) pair merges quantities instead, capped
// at the available stock.
func (s *Service) AddItem(ctx context.Context, customerID int64, ref domain.ProductRef, size string, quantity int) (*domain.LineItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.Lookup(ctx, ref)
	if err != nil {
		return nil, err
	}
	if product.Stock < 1 {
		return nil, ErrOutOfStock
	}

	if product.RequiresSize() {
		if size == "" {
			return nil, ErrSizeRequired
		}
		if !product.HasSize(size) {
			return nil, ErrInvalidSize
		}
	}

	cart, err := s.GetOrCreateActiveCart(ctx, customerID)
	if err != nil {
		return nil, err
	}

	// The storefront quantity picker is capped at the stock on screen; a
	// stale form clamps instead of failing.
	if quantity > product.Stock {
		quantity = product.Stock
	}

	if existing := findLine(cart, ref, size); existing != nil {
		merged := existing.Quantity + quantity
		if merged > product.Stock {
			return nil, ErrInsufficientStock
		}
		existing.Quantity = merged
		existing.Subtotal = product.Price.Mul(decimal.NewFromInt(int64(merged))).Round(2)
		if err := s.carts.UpdateLine(ctx, existing); err != nil {
			return nil, err
		}
		s.invalidate(customerID)
		return existing, nil
	}

	line := &domain.LineItem{
		ID:       uuid.New(),
		CartID:   cart.ID,
		Product:  ref,
		Size:     size,
		Quantity: quantity,
		Subtotal: product.Price.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
	}
	if err := s.carts.InsertLine(ctx, line); err != nil {
		return nil, err
	}
	s.invalidate(customerID)
	return line, nil
}

// UpdateQuantity sets a line to newQuantity and reprices the subtotal at the
// product's current catalog price. Repricing here is intentional and differs
// from AddItem's add-time freeze.
func (s *Service) UpdateQuantity(ctx context.Context, customerID int64, lineID uuid.UUID, newQuantity int) (*domain.LineItem, error) {
	if newQuantity < 1 {
		return nil, ErrInvalidQuantity
	}

	line, err := s.ownedLine(ctx, customerID, lineID)
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.Lookup(ctx, line.Product)
	if err != nil {
		return nil, err
	}
	if newQuantity > product.Stock {
		return nil, ErrInsufficientStock
	}

	line.Quantity = newQuantity
	line.Subtotal = product.Price.Mul(decimal.NewFromInt(int64(newQuantity))).Round(2)
	if err := s.carts.UpdateLine(ctx, line); err != nil {
		return nil, err
	}

	s.invalidate(customerID)
	return line, nil
}

// RemoveItem deletes a line unconditionally after the ownership check.
func (s *Service) RemoveItem(ctx context.Context, customerID int64, lineID uuid.UUID) error {
	line, err := s.ownedLine(ctx, customerID, lineID)
	if err != nil {
		return err
	}

	if err := s.carts.DeleteLine(ctx, line.ID); err != nil {
		return err
	}

	s.invalidate(customerID)
	return nil
}

// ViewCart returns the active cart with preview totals. Reads go through the
// cache under singleflight; any cache trouble degrades to the repository.
func (s *Service) ViewCart(ctx context.Context, customerID int64) (*View, error) {
	v, err, _ := s.sfg.Do(cacheGroupKey(customerID), func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, customerID)
		if err == nil {
			return cart, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.carts.GetActiveCart(ctx, customerID)
		if errors.Is(errGet, repository.ErrCartNotFound) {
			return &domain.Cart{
				CustomerID: customerID,
				Status:     domain.CartStatusActive,
				Total:      decimal.Zero,
				CreatedAt:  time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), customerID, cart); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	cart := v.(*domain.Cart)
	return &View{Cart: cart, Totals: pricing.Compute(Lines(cart))}, nil
}

// Lines maps cart lines to pricing input using each line's frozen unit
// price, so the preview matches what checkout will charge.
func Lines(cart *domain.Cart) []pricing.Line {
	lines := make([]pricing.Line, len(cart.Lines))
	for i, l := range cart.Lines {
		lines[i] = pricing.Line{UnitPrice: l.UnitPrice(), Quantity: l.Quantity}
	}
	return lines
}

func (s *Service) ownedLine(ctx context.Context, customerID int64, lineID uuid.UUID) (*domain.LineItem, error) {
	line, err := s.carts.GetLine(ctx, lineID)
	if err != nil {
		return nil, err
	}

	owner, err := s.carts.GetCart(ctx, line.CartID)
	if err != nil {
		return nil, err
	}
	if owner.CustomerID != customerID {
		return nil, ErrForbidden
	}
	return line, nil
}

func findLine(cart *domain.Cart, ref domain.ProductRef, size string) *domain.LineItem {
	for i := range cart.Lines {
		if cart.Lines[i].Product == ref && cart.Lines[i].Size == size {
			return &cart.Lines[i]
		}
	}
	return nil
}

func (s *Service) invalidate(customerID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, customerID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}

func cacheGroupKey(customerID int64) string {
	return "cart-" + strconv.FormatInt(customerID, 10)
}
