package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog entity with on-hand quantity and current price.
type Product struct {
	ID         int64
	Name       string
	Quantity   int
	Price      decimal.Decimal
	CategoryID *int64
}

// Repository defines persistence operations for products.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	// DecrementQuantity subtracts delta from the stored quantity using a
	// server-side expression, so concurrent decrements never lose updates.
	// It does not check the resulting quantity against zero.
	DecrementQuantity(ctx context.Context, id int64, delta int) error
}
