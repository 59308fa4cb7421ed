package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jmb-server/cart"

	"github.com/google/uuid"
)

// CartSnapshots persists the cart snapshots of one browser session.
type CartSnapshots struct {
	db        *DB
	sessionID uuid.UUID
}

// CartStorage returns the cart.Storage for sessionID.
func (db *DB) CartStorage(sessionID uuid.UUID) cart.Storage {
	return &CartSnapshots{db: db, sessionID: sessionID}
}

func (s *CartSnapshots) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM cart_snapshots WHERE session_id = $1 AND key = $2`, s.sessionID, key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cart.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart snapshot: %w", err)
	}
	return payload, nil
}

func (s *CartSnapshots) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_snapshots (session_id, key, payload, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session_id, key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		s.sessionID, key, string(data))
	if err != nil {
		return fmt.Errorf("failed to save cart snapshot: %w", err)
	}
	return nil
}

func (s *CartSnapshots) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_snapshots WHERE session_id = $1 AND key = $2`, s.sessionID, key)
	if err != nil {
		return fmt.Errorf("failed to delete cart snapshot: %w", err)
	}
	return nil
}

// PurgeCartSnapshots removes snapshots not touched since before cutoff.
func (db *DB) PurgeCartSnapshots(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM cart_snapshots WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cart snapshots: %w", err)
	}
	return res.RowsAffected()
}
