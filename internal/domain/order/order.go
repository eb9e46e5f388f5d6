package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Order is a customer's purchase record. Orders are created outside this
// service; the reconciliation engine only reads them.
type Order struct {
	ID         int64
	CustomerID int64
	OrderDate  time.Time
	Status     string
}

// OrderItem is a line entry linking one order to one product with a quantity
// and a price snapshot taken at the time of the last add or merge.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// Sentinel errors returned by Repository implementations.
var (
	ErrNotFound     = errors.New("order not found")
	ErrItemNotFound = errors.New("order item not found")
)

// Repository defines persistence operations for orders and their line items.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	// GetItem looks up the single line item for the (order, product) pair.
	GetItem(ctx context.Context, orderID, productID int64) (*OrderItem, error)
	// CreateItem inserts a new line item and fills in its generated ID.
	CreateItem(ctx context.Context, item *OrderItem) error
	UpdateItem(ctx context.Context, item *OrderItem) error
}
