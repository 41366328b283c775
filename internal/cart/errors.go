package cart

import "errors"

var (
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("not enough stock for the requested quantity")
	ErrSizeRequired      = errors.New("a size selection is required for this product")
	ErrInvalidSize       = errors.New("selected size is not offered for this product")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrForbidden         = errors.New("cart line does not belong to this customer")
)
