package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jmb-server/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const productColumns = `id, name, description, price, image, category, is_active, created_at, updated_at`

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Category,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (db *DB) queryProducts(ctx context.Context, query string, args ...interface{}) ([]models.Product, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

// ListActiveProducts returns the storefront catalog, newest first.
func (db *DB) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	return db.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_active = true ORDER BY created_at DESC`)
}

// ListProducts returns every product including inactive ones, newest first.
func (db *DB) ListProducts(ctx context.Context) ([]models.Product, error) {
	return db.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
}

func (db *DB) GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error) {
	row := db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// GetProductsByIDs loads the products with the given ids, keyed by id.
// Ids with no matching row are absent from the map.
func (db *DB) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}

	products, err := db.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1::uuid[])`, pq.Array(raw))
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// CreateProduct inserts p, assigning its id and timestamps.
func (db *DB) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := db.QueryRowContext(ctx, `
		INSERT INTO products (id, name, description, price, image, category, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Description, p.Price, p.Image, p.Category, p.IsActive,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// UpdateProduct overwrites every editable field of p. Concurrent edits are
// last-write-wins.
func (db *DB) UpdateProduct(ctx context.Context, p *models.Product) error {
	err := db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, image = $5, category = $6,
		    is_active = $7, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Description, p.Price, p.Image, p.Category, p.IsActive,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// DeleteProduct removes the product. Order items keep their own snapshot of
// name and price, so past orders are unaffected.
func (db *DB) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
