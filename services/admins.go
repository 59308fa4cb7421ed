package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"jmb-server/models"
)

const minPasswordLength = 8

// AdminStore persists back-office accounts.
type AdminStore interface {
	CreateAdmin(ctx context.Context, a *models.AdminUser) error
	CountAdmins(ctx context.Context) (int, error)
}

// CreateAdmin hashes password and stores a new active admin account.
func CreateAdmin(ctx context.Context, store AdminStore, username, password, fullName string) (models.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.AdminUser{}, invalid("username", "Username is required")
	}
	if len(password) < minPasswordLength {
		return models.AdminUser{}, invalid("password", "Password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.AdminUser{}, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := models.AdminUser{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     optionalText(&fullName),
		IsActive:     true,
	}
	if err := store.CreateAdmin(ctx, &admin); err != nil {
		return models.AdminUser{}, err
	}
	return admin, nil
}

// EnsureAdmin creates the first admin account when none exists. It does
// nothing when accounts already exist or no credentials are configured.
func EnsureAdmin(ctx context.Context, store AdminStore, username, password string, logger *zap.Logger) error {
	if username == "" || password == "" {
		return nil
	}

	count, err := store.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin, err := CreateAdmin(ctx, store, username, password, "")
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	logger.Info("Bootstrap admin created", zap.String("username", admin.Username))
	return nil
}
