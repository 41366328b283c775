package domain

import "time"

// Customer is a shopper. UserID points at the identity record owned by the
// out-of-scope auth layer.
type Customer struct {
	ID           int64
	UserID       int64
	Phone        string
	Address      string
	RegisteredAt time.Time
}
