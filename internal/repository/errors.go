package repository

import "errors"

// Common errors returned by the repositories.
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrLineNotFound     = errors.New("cart line not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrDeliveryNotFound = errors.New("delivery record not found")

	// ErrActiveCartExists signals the partial unique index on active carts
	// rejected a second Active cart for the same customer.
	ErrActiveCartExists = errors.New("customer already has an active cart")

	// ErrStockConflict signals the conditional stock decrement found less
	// stock than requested at commit time. The whole checkout transaction
	// rolls back when it is returned.
	ErrStockConflict = errors.New("insufficient stock at checkout commit")

	ErrUnknownSearchField = errors.New("unknown order search field")
)
