// Command seed-db loads the demo catalog (customers, category tree, products,
// orders) into the database. Rows are inserted with explicit IDs and existing
// rows are left untouched, so the command is safe to re-run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/DAA412/tz-aiti-guru/internal/repository"
)

type catalogJSON struct {
	Customers []struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"customers"`
	Categories []struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		LeftKey  int    `json:"left_key"`
		RightKey int    `json:"right_key"`
		Level    int    `json:"level"`
	} `json:"categories"`
	Products []struct {
		ID         int64           `json:"id"`
		Name       string          `json:"name"`
		Quantity   int             `json:"quantity"`
		Price      decimal.Decimal `json:"price"`
		CategoryID *int64          `json:"category_id"`
	} `json:"products"`
	Orders []struct {
		ID         int64  `json:"id"`
		CustomerID int64  `json:"customer_id"`
		Status     string `json:"status"`
	} `json:"orders"`
}

func main() {
	var (
		databaseURL string
		catalogFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
	slog.Info("seed complete")
}

func run(ctx context.Context, databaseURL, catalogFile string) error {
	raw, err := os.ReadFile(catalogFile)
	if err != nil {
		return fmt.Errorf("reading catalog file: %w", err)
	}

	var catalog catalogJSON
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("parsing catalog file: %w", err)
	}

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("creating pool: %w", err)
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return err
	}

	if err := seed(ctx, pool, catalog); err != nil {
		return err
	}
	return nil
}

func seed(ctx context.Context, pool *pgxpool.Pool, catalog catalogJSON) error {
	for _, c := range catalog.Customers {
		_, err := pool.Exec(ctx,
			`INSERT INTO customers (id, name, address) VALUES ($1, $2, $3)
			 ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Name, c.Address,
		)
		if err != nil {
			return fmt.Errorf("seeding customer %d: %w", c.ID, err)
		}
	}
	slog.Info("customers seeded", "count", len(catalog.Customers))

	for _, c := range catalog.Categories {
		_, err := pool.Exec(ctx,
			`INSERT INTO categories (id, name, left_key, right_key, level)
			 VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Name, c.LeftKey, c.RightKey, c.Level,
		)
		if err != nil {
			return fmt.Errorf("seeding category %d: %w", c.ID, err)
		}
	}
	slog.Info("categories seeded", "count", len(catalog.Categories))

	for _, p := range catalog.Products {
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, name, quantity, price, category_id)
			 VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
			p.ID, p.Name, p.Quantity, p.Price, p.CategoryID,
		)
		if err != nil {
			return fmt.Errorf("seeding product %d: %w", p.ID, err)
		}
	}
	slog.Info("products seeded", "count", len(catalog.Products))

	for _, o := range catalog.Orders {
		_, err := pool.Exec(ctx,
			`INSERT INTO orders (id, customer_id, status) VALUES ($1, $2, $3)
			 ON CONFLICT (id) DO NOTHING`,
			o.ID, o.CustomerID, o.Status,
		)
		if err != nil {
			return fmt.Errorf("seeding order %d: %w", o.ID, err)
		}
	}
	slog.Info("orders seeded", "count", len(catalog.Orders))

	// Bump sequences past the explicit IDs so fresh inserts do not collide.
	for _, table := range []string{"customers", "categories", "products", "orders"} {
		_, err := pool.Exec(ctx, fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT COALESCE(MAX(id), 1) FROM %s))`,
			table, table,
		))
		if err != nil {
			return fmt.Errorf("bumping %s sequence: %w", table, err)
		}
	}
	return nil
}
