package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jmb-server/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const orderColumns = `id, customer_name, customer_email, customer_phone, customer_address, notes,
	total_amount, status, email_sent, email_sent_at, created_at, updated_at`

func scanOrder(row rowScanner) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.CustomerAddress,
		&o.Notes, &o.TotalAmount, &o.Status, &o.EmailSent, &o.EmailSentAt, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// CreateOrder inserts the order and all of its items in one transaction.
// Either everything is stored or nothing is.
func (db *DB) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, customer_name, customer_email, customer_phone, customer_address,
			notes, total_amount, status, email_sent
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		order.ID, order.CustomerName, order.CustomerEmail, order.CustomerPhone, order.CustomerAddress,
		order.Notes, order.TotalAmount, order.Status, order.EmailSent,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO order_items (id, order_id, product_id, product_name, product_price, quantity, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare order items: %w", err)
	}
	defer stmt.Close()

	for i := range items {
		item := &items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = order.ID
		err := stmt.QueryRowContext(ctx,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.ProductPrice, item.Quantity, item.Subtotal,
		).Scan(&item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create order item %q: %w", item.ProductName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	order.Items = items
	db.logger.Info("Order stored",
		zap.String("order_id", order.ID.String()),
		zap.Int("items", len(items)),
		zap.String("total", order.TotalAmount.StringFixed(2)))
	return nil
}

// ListOrders returns every order, newest first, without items.
func (db *DB) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns the order with its items.
func (db *DB) GetOrder(ctx context.Context, id uuid.UUID) (models.Order, error) {
	o, err := scanOrder(db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := db.ListOrderItems(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	o.Items = items
	return o, nil
}

func (db *DB) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, product_price, quantity, subtotal, created_at
		FROM order_items WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductPrice,
			&it.Quantity, &it.Subtotal, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}
	return items, nil
}

// UpdateOrderStatus sets the status and returns the updated order.
func (db *DB) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (models.Order, error) {
	o, err := scanOrder(db.QueryRowContext(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns, id, status))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to update order status: %w", err)
	}
	return o, nil
}

// MarkOrderEmailSent records that the order notification email went out.
func (db *DB) MarkOrderEmailSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := db.ExecContext(ctx,
		`UPDATE orders SET email_sent = true, email_sent_at = $2, updated_at = now() WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark order email sent: %w", err)
	}
	return requireAffected(res)
}
