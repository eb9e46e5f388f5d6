package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DAA412/tz-aiti-guru/internal/domain/order"
)

const (
	getOrderByIDSQL = `SELECT id, customer_id, order_date, status
		FROM orders WHERE id = $1`

	getOrderItemSQL = `SELECT id, order_id, product_id, quantity, price
		FROM order_items WHERE order_id = $1 AND product_id = $2`

	createOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4) RETURNING id`

	updateOrderItemSQL = `UPDATE order_items SET quantity = $2, price = $3
		WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	return &o, nil
}

// GetItem returns the line item for the (order, product) pair. The schema
// enforces at most one such row via a unique constraint.
func (r *OrderRepository) GetItem(ctx context.Context, orderID, productID int64) (*order.OrderItem, error) {
	rows, err := r.pool.Query(ctx, getOrderItemSQL, orderID, productID)
	if err != nil {
		return nil, fmt.Errorf("getting order item (%d, %d): %w", orderID, productID, err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, scanOrderItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrItemNotFound
		}
		return nil, fmt.Errorf("getting order item (%d, %d): %w", orderID, productID, err)
	}
	return &item, nil
}

// CreateItem inserts a new line item and fills in the generated ID.
func (r *OrderRepository) CreateItem(ctx context.Context, item *order.OrderItem) error {
	err := r.pool.QueryRow(ctx, createOrderItemSQL,
		item.OrderID, item.ProductID, item.Quantity, item.Price,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("creating order item (%d, %d): %w", item.OrderID, item.ProductID, err)
	}
	return nil
}

// UpdateItem persists the quantity and price of an existing line item.
func (r *OrderRepository) UpdateItem(ctx context.Context, item *order.OrderItem) error {
	tag, err := r.pool.Exec(ctx, updateOrderItemSQL, item.ID, item.Quantity, item.Price)
	if err != nil {
		return fmt.Errorf("updating order item %d: %w", item.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrItemNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.OrderDate, &o.Status)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.OrderItem, error) {
	var item order.OrderItem
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price)
	return item, err
}
