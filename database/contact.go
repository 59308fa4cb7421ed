package database

import (
	"context"
	"fmt"

	"jmb-server/models"

	"github.com/google/uuid"
)

func (db *DB) CreateContactSubmission(ctx context.Context, s *models.ContactSubmission) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	err := db.QueryRowContext(ctx, `
		INSERT INTO contact_submissions (id, name, email, phone, service, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		s.ID, s.Name, s.Email, s.Phone, s.Service, s.Message,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact submission: %w", err)
	}
	return nil
}

func (db *DB) ListContactSubmissions(ctx context.Context) ([]models.ContactSubmission, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, email, phone, service, message, created_at
		FROM contact_submissions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query contact submissions: %w", err)
	}
	defer rows.Close()

	out := []models.ContactSubmission{}
	for rows.Next() {
		var s models.ContactSubmission
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Service, &s.Message, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact submission: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
