package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/DAA412/tz-aiti-guru/internal/domain/product"
)

// ErrInvalidQuantity guards against non-positive quantities reaching the
// engine. The transport layer validates input first; this is a backstop
// against programming errors in other callers.
var ErrInvalidQuantity = fmt.Errorf("quantity must be greater than 0")

// OrderNotFoundError indicates the target order does not exist.
type OrderNotFoundError struct {
	OrderID int64
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("order %d not found", e.OrderID)
}

// ProductNotFoundError indicates the requested product does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError indicates the requested quantity exceeds the
// product's current on-hand stock.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// AddItemRequest holds the input for adding a product to an order.
type AddItemRequest struct {
	OrderID   int64
	ProductID int64
	Quantity  int
}

// Service implements order-item reconciliation: the merge-or-create decision
// made when a product is added to an order that may already contain it, and
// the follow-up stock adjustment.
type Service struct {
	orders   Repository
	products product.Repository
}

// NewService creates an order Service with the required repositories.
func NewService(orders Repository, products product.Repository) *Service {
	return &Service{
		orders:   orders,
		products: products,
	}
}

// AddItem validates the order, product, and stock, then either merges the
// requested quantity into the existing line item for the (order, product)
// pair or creates a new one. The item's price is refreshed to the product's
// current price on every call.
//
// AddItem does not touch product stock. The caller runs DecrementStock as a
// separate step after AddItem succeeds; the two are deliberately not wrapped
// in one transaction, so two concurrent adds can both pass the stock check
// against the same stale quantity.
func (s *Service) AddItem(ctx context.Context, req AddItemRequest) (*OrderItem, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.orders.GetByID(ctx, req.OrderID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &OrderNotFoundError{OrderID: req.OrderID}
		}
		return nil, errors.Wrap(err, "get order")
	}

	p, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, &ProductNotFoundError{ProductID: req.ProductID}
		}
		return nil, errors.Wrap(err, "get product")
	}

	// Check against raw on-hand stock; quantity already committed to other
	// unfulfilled orders is not subtracted.
	if p.Quantity < req.Quantity {
		return nil, &InsufficientStockError{
			ProductID: req.ProductID,
			Requested: req.Quantity,
			Available: p.Quantity,
		}
	}

	item, err := s.orders.GetItem(ctx, req.OrderID, req.ProductID)
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		item.Price = p.Price
		if err := s.orders.UpdateItem(ctx, item); err != nil {
			return nil, errors.Wrap(err, "update order item")
		}
		return item, nil

	case errors.Is(err, ErrItemNotFound):
		item = &OrderItem{
			OrderID:   req.OrderID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Price:     p.Price,
		}
		if err := s.orders.CreateItem(ctx, item); err != nil {
			return nil, errors.Wrap(err, "create order item")
		}
		return item, nil

	default:
		return nil, errors.Wrap(err, "get order item")
	}
}

// DecrementStock subtracts quantity from the product's on-hand stock. It is
// best-effort: failures are logged and reported as false rather than
// propagated, and the already-committed order item is left intact. It does
// not re-validate against current stock, so it can drive stock negative when
// a concurrent add consumed the stock this call's AddItem validated against.
func (s *Service) DecrementStock(ctx context.Context, productID int64, quantity int) bool {
	if err := s.products.DecrementQuantity(ctx, productID, quantity); err != nil {
		zctx.From(ctx).Error("Stock decrement failed, manual reconciliation required",
			zap.Int64("product_id", productID),
			zap.Int("quantity", quantity),
			zap.Error(err),
		)
		return false
	}
	return true
}
