package database

import (
	"context"
	"fmt"

	"jmb-server/models"

	"github.com/google/uuid"
)

func (db *DB) CreateFeedback(ctx context.Context, f *models.Feedback) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	err := db.QueryRowContext(ctx, `
		INSERT INTO feedback (id, customer_name, customer_email, rating, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		f.ID, f.CustomerName, f.CustomerEmail, f.Rating, f.Message,
	).Scan(&f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

// ListFeedback returns feedback newest first. A limit of zero returns all rows.
func (db *DB) ListFeedback(ctx context.Context, limit int) ([]models.Feedback, error) {
	query := `SELECT id, customer_name, customer_email, rating, message, created_at
		FROM feedback ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	out := []models.Feedback{}
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.ID, &f.CustomerName, &f.CustomerEmail, &f.Rating, &f.Message, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feedback: %w", err)
	}
	return out, nil
}

func (db *DB) DeleteFeedback(ctx context.Context, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, `DELETE FROM feedback WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	return requireAffected(res)
}
