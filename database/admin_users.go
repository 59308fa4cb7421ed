package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"jmb-server/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrDuplicateUsername is returned when an admin username is already taken.
var ErrDuplicateUsername = errors.New("username already registered")

const adminColumns = `id, username, password_hash, full_name, avatar, is_active, created_at, last_login_at`

func scanAdmin(row rowScanner) (models.AdminUser, error) {
	var a models.AdminUser
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.FullName, &a.Avatar, &a.IsActive,
		&a.CreatedAt, &a.LastLoginAt)
	return a, err
}

func (db *DB) getAdmin(ctx context.Context, where string, arg interface{}) (models.AdminUser, error) {
	a, err := scanAdmin(db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.AdminUser{}, ErrNotFound
	}
	if err != nil {
		return models.AdminUser{}, fmt.Errorf("failed to get admin user: %w", err)
	}
	return a, nil
}

func (db *DB) GetAdminByUsername(ctx context.Context, username string) (models.AdminUser, error) {
	return db.getAdmin(ctx, `lower(username) = $1`, strings.ToLower(username))
}

func (db *DB) GetAdmin(ctx context.Context, id uuid.UUID) (models.AdminUser, error) {
	return db.getAdmin(ctx, `id = $1`, id)
}

func (db *DB) CreateAdmin(ctx context.Context, a *models.AdminUser) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	err := db.QueryRowContext(ctx, `
		INSERT INTO admin_users (id, username, password_hash, full_name, avatar, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		a.ID, a.Username, a.PasswordHash, a.FullName, a.Avatar, a.IsActive,
	).Scan(&a.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}

func (db *DB) CountAdmins(ctx context.Context) (int, error) {
	return db.Count(ctx, "admin_users", "")
}

func (db *DB) TouchAdminLogin(ctx context.Context, id uuid.UUID) error {
	if _, err := db.ExecContext(ctx, `UPDATE admin_users SET last_login_at = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to record admin login: %w", err)
	}
	return nil
}
