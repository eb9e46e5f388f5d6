package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DAA412/tz-aiti-guru/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, quantity, price, category_id
		FROM products ORDER BY id`

	getProductByIDSQL = `SELECT id, name, quantity, price, category_id
		FROM products WHERE id = $1`

	// Server-side delta keeps concurrent decrements from losing updates.
	// The result is allowed to go negative; see db/migrations/001_schema.sql.
	decrementQuantitySQL = `UPDATE products SET quantity = quantity - $2
		WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// DecrementQuantity subtracts delta from the product's stored quantity.
func (r *ProductRepository) DecrementQuantity(ctx context.Context, id int64, delta int) error {
	tag, err := r.pool.Exec(ctx, decrementQuantitySQL, id, delta)
	if err != nil {
		return fmt.Errorf("decrementing stock for product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Quantity, &p.Price, &p.CategoryID)
	return p, err
}
