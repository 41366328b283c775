package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ProductKind discriminates the three catalog variants.
type ProductKind string

const (
	KindApparel  ProductKind = "apparel"
	KindFootwear ProductKind = "footwear"
	KindCap      ProductKind = "cap"
)

func (k ProductKind) Valid() bool {
	return k == KindApparel || k == KindFootwear || k == KindCap
}

func (k ProductKind) String() string {
	return string(k)
}

// ProductRef identifies exactly one catalog item. The kind tag replaces the
// legacy schema's three nullable foreign keys, so a reference can never point
// at more than one variant.
type ProductRef struct {
	Kind ProductKind `json:"kind"`
	ID   int64       `json:"id"`
}

// Product is the catalog item shape shared by apparel, footwear and caps.
// Ownership of descriptive attributes belongs to the admin catalog screens;
// the core only reads price, stock and sizes.
type Product struct {
	Ref        ProductRef
	ProviderID int64
	Model      string
	Color      string
	Gender     string
	Price      decimal.Decimal
	Stock      int
	Sizes      string // comma-separated size labels; empty means no size concept
}

// SizeList parses the comma-separated size labels, dropping blanks.
func (p *Product) SizeList() []string {
	if p.Sizes == "" {
		return nil
	}
	parts := strings.Split(p.Sizes, ",")
	sizes := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			sizes = append(sizes, s)
		}
	}
	return sizes
}

// RequiresSize reports whether a customer must pick a size for this product.
func (p *Product) RequiresSize() bool {
	return len(p.SizeList()) > 0
}

// HasSize reports whether size is one of the configured labels.
func (p *Product) HasSize(size string) bool {
	for _, s := range p.SizeList() {
		if s == size {
			return true
		}
	}
	return false
}
