package database

import (
	"context"
	"fmt"

	"jmb-server/models"

	"github.com/google/uuid"
)

func (db *DB) ListPushSubscriptions(ctx context.Context) ([]models.PushSubscription, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, endpoint, p256dh, auth, created_at FROM push_subscriptions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query push subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []models.PushSubscription{}
	for rows.Next() {
		var s models.PushSubscription
		if err := rows.Scan(&s.ID, &s.Endpoint, &s.P256dh, &s.Auth, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan push subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// SavePushSubscription inserts the subscription or refreshes the keys of an
// existing one with the same endpoint.
func (db *DB) SavePushSubscription(ctx context.Context, s *models.PushSubscription) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	err := db.QueryRowContext(ctx, `
		INSERT INTO push_subscriptions (id, endpoint, p256dh, auth)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (endpoint) DO UPDATE SET p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth
		RETURNING id, created_at`,
		s.ID, s.Endpoint, s.P256dh, s.Auth,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save push subscription: %w", err)
	}
	return nil
}

func (db *DB) DeletePushSubscription(ctx context.Context, id uuid.UUID) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}

func (db *DB) DeletePushSubscriptionByEndpoint(ctx context.Context, endpoint string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE endpoint = $1`, endpoint)
	if err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return requireAffected(res)
}
