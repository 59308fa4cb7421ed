package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jmb-server/models"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("record not found")

type DB struct {
	*sql.DB
	logger *zap.Logger
}

// Connect establishes a connection to the PostgreSQL database
func Connect(ctx context.Context, databaseURL string, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(db, logger), nil
}

// New wraps an open *sql.DB.
func New(db *sql.DB, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{DB: db, logger: logger}
}

// InitializeTables creates all tables if they don't exist
func (db *DB) InitializeTables(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`); err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	// Creation order respects foreign keys.
	tables := []interface {
		TableName() string
		CreateTableSQL() string
	}{
		models.AdminUser{},
		models.Product{},
		models.CompletedJob{},
		models.Order{},
		models.OrderItem{},
		models.Feedback{},
		models.PushSubscription{},
		models.ContactSubmission{},
		models.Setting{},
		models.CartSnapshot{},
	}

	for _, table := range tables {
		db.logger.Debug("Creating table", zap.String("table", table.TableName()))
		if _, err := db.ExecContext(ctx, table.CreateTableSQL()); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.TableName(), err)
		}
	}

	if err := db.runMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db.logger.Info("Database schema ready", zap.Int("tables", len(tables)))
	return nil
}

// runMigrations handles schema updates for existing tables
func (db *DB) runMigrations(ctx context.Context) error {
	migrations := []string{
		`ALTER TABLE products ADD COLUMN IF NOT EXISTS category TEXT;`,
		`ALTER TABLE orders ADD COLUMN IF NOT EXISTS email_sent_at TIMESTAMP WITH TIME ZONE;`,
		`ALTER TABLE admin_users ADD COLUMN IF NOT EXISTS last_login_at TIMESTAMP WITH TIME ZONE;`,

		`CREATE INDEX IF NOT EXISTS idx_products_active_created ON products(is_active, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_completed_jobs_sort ON completed_jobs(is_active, sort_order);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_cart_snapshots_updated_at ON cart_snapshots(updated_at);`,

		`INSERT INTO settings (key, value) VALUES ('` + models.SettingContactEmail + `', '` + models.DefaultContactEmail + `')
		 ON CONFLICT (key) DO NOTHING;`,
	}

	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			// Continue with other migrations even if one fails
			db.logger.Warn("Migration failed", zap.Int("migration", i+1), zap.Error(err))
		}
	}

	db.logger.Info("Migrations completed", zap.Int("count", len(migrations)))
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Count returns the number of rows in table matching the optional where clause.
func (db *DB) Count(ctx context.Context, table, where string, args ...interface{}) (int, error) {
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
